package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		docType  = flag.String("type", "", "document type hint: w2|paystub|bank_statement|tax_return|id|other")
		provider = flag.String("provider", "", "preferred provider: auto|cloud|local|mock (default from OCR_PREFERRED_PROVIDER)")
		noFall   = flag.Bool("no-fallback", false, "disable provider fallback")
		mock     = flag.Bool("mock", false, "return a canned extraction without calling any provider")
		mimeType = flag.String("mime", "", "MIME type (default from file extension)")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		printError("usage: docextract [flags] <image-file>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *provider != "" {
		cfg.Extraction.PreferredProvider = *provider
	}
	if *noFall {
		cfg.Extraction.EnableFallback = false
	}
	if *mock {
		cfg.Extraction.MockMode = true
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	var hint constants.DocumentType
	if *docType != "" {
		dt, ok := constants.ParseDocumentType(*docType)
		if !ok {
			printError("Error: unknown document type %q\n", *docType)
			os.Exit(2)
		}
		hint = dt
	}

	mt := *mimeType
	if mt == "" {
		var ok bool
		if mt, ok = constants.MIMEFromExt(filepath.Ext(path)); !ok {
			printError("Error: cannot infer MIME type of %s; pass --mime\n", path)
			os.Exit(2)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := pipeline.FromConfig(cfg, logger)
	res := orch.ExtractDocument(ctx, data, mt, hint, pipeline.RequestConfig(cfg.Extraction))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		printError("Error: encode result: %v\n", err)
		os.Exit(1)
	}
	if !res.Success {
		os.Exit(1)
	}
}
