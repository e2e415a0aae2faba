package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// stderrLogCap bounds how much tesseract stderr reaches the log.
const stderrLogCap = 8 << 10

// Runner executes external binaries; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, logger *slog.Logger, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec. A canceled context kills the
// process; WaitDelay bounds how long its pipes may linger afterwards.
type ExecRunner struct {
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	logger.Debug("ocr.exec.start", "cmd", name, "args", redactArgs(args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 2 * time.Second
	}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		exitCode := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitCode = ee.ExitCode()
		}
		logger.Error("ocr.exec.failed",
			"cmd", name,
			"exit_code", exitCode,
			"elapsed_ms", elapsed,
			"error", err,
			"stderr", truncate(errb.String(), stderrLogCap),
		)
	} else {
		logger.Debug("ocr.exec.ok",
			"cmd", name,
			"elapsed_ms", elapsed,
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// redactArgs keeps flags and their values but replaces file paths with
// their extension, so staged document names stay out of the log.
func redactArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsRune(a, filepath.Separator) || strings.ContainsRune(a, '/') {
			out[i] = "<file" + filepath.Ext(a) + ">"
			continue
		}
		out[i] = a
	}
	return strings.Join(out, " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
