// Package ocr wraps the tesseract CLI for offline text recognition.
package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// Config tunes the tesseract invocation.
type Config struct {
	Tesseract     string // binary name or absolute path; default "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // 0 leaves tesseract's default
	OEM           int

	// ArtifactCacheDir keeps input files keyed by content hash; empty uses a temp dir per call.
	ArtifactCacheDir string
}

// Recognition is the text and mean engine confidence for one image.
type Recognition struct {
	Text       string
	Confidence float64 // [0,1]
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Recognizer turns image bytes into text.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (Recognition, error)
}

// Extractor runs tesseract through a Runner.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewExtractor fills defaults; a nil runner uses ExecRunner.
func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Available reports whether the tesseract binary can be found.
func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.cfg.Tesseract)
	return err == nil
}

// Recognize writes data to disk, runs the text pass and the TSV confidence
// pass, and returns normalized text.
func (e *Extractor) Recognize(ctx context.Context, data []byte, mimeType string) (Recognition, error) {
	start := time.Now()
	mimeType = constants.NormalizeMIME(mimeType)
	if len(data) == 0 {
		return Recognition{}, fmt.Errorf("ocr: empty input")
	}
	if !constants.IsImageMIME(mimeType) {
		return Recognition{}, fmt.Errorf("ocr: unsupported mime type %q", mimeType)
	}

	path, cleanup, err := e.materialize(data, mimeType)
	if err != nil {
		return Recognition{}, fmt.Errorf("ocr: stage input: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	e.logger.Debug("ocr.recognize.start", "path", path, "mime", mimeType, "bytes", len(data))
	txt, warn, err := e.tesseractText(ctx, path)
	if err != nil {
		return Recognition{Warnings: warn}, err
	}

	conf, w2, err := e.tesseractTSVConfidence(ctx, path)
	if err != nil {
		// text is still usable; report zero engine confidence
		warn = append(warn, err.Error())
	}
	warn = append(warn, w2...)

	rec := Recognition{
		Text:       Normalize(txt),
		Confidence: conf,
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warn,
	}
	e.logger.Debug("ocr.recognize.done",
		"chars", len(rec.Text),
		"confidence", rec.Confidence,
		"elapsed_ms", rec.Duration.Milliseconds(),
	)
	return rec, nil
}

// materialize stores data as {dir}/{sha256}.{ext}. With a cache dir the file
// is reused across calls and cleanup is nil; cached images are document
// scans, so the directory and files are owner-only.
func (e *Extractor) materialize(data []byte, mimeType string) (string, func(), error) {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + "." + constants.ExtFromMIME(mimeType)

	if e.cfg.ArtifactCacheDir != "" {
		if err := os.MkdirAll(e.cfg.ArtifactCacheDir, 0o700); err != nil {
			return "", nil, err
		}
		cached := filepath.Join(e.cfg.ArtifactCacheDir, name)
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			e.logger.Debug("ocr.cache.hit", "path", cached)
			return cached, nil, nil
		}
		tmp := cached + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return "", nil, err
		}
		if err := os.Rename(tmp, cached); err != nil {
			_ = os.Remove(tmp)
			return "", nil, err
		}
		return cached, nil, nil
	}

	dir, err := os.MkdirTemp("", "docextract-ocr-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (e *Extractor) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *Extractor) tesseractText(ctx context.Context, path string) (string, []string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, e.baseArgs(path)...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tesseractTSVConfidence returns the mean word confidence in [0,1].
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float64, []string, error) {
	args := append(e.baseArgs(path), "tsv")
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract tsv: %w", err)
	}
	return MeanTSVConfidence(string(out)), nil, nil
}

// MeanTSVConfidence averages the conf column of tesseract TSV output,
// skipping the header and non-word rows (conf -1).
func MeanTSVConfidence(tsv string) float64 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		c := strings.TrimSpace(cols[10])
		if c == "" || c == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(c, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return document.FromPercent(sum / n)
}
