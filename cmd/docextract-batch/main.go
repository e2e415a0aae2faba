package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/pipeline"
	"github.com/joseph-ayodele/docextract/internal/export"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	repo "github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/services/documents"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem  = flag.Bool("inmem", false, "use in-memory SQLite database")
		dbPath = flag.String("db", "", "database DSN or SQLite file (default DB_URL, else ./docextract.db)")
		dir    = flag.String("dir", "", "directory of document images to process (required)")
		app    = flag.String("app", "", "application id to file the documents under (default: directory name)")
		out    = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		hidden = flag.Bool("include-hidden", false, "also ingest hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *app == "" {
		*app = filepath.Base(filepath.Clean(*dir))
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), *app+"-extractions.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dsn := *dbPath
	switch {
	case *inmem:
		dsn = ":memory:"
	case dsn == "" && cfg.Database.DSN != "":
		dsn = cfg.Database.DSN
	case dsn == "":
		dsn = "docextract.db"
	}
	db, err := repo.Open(ctx, repo.Config{
		DSN:             dsn,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	docsRepo := repo.NewDocumentRepository(db, logger)
	orch := pipeline.FromConfig(cfg, logger)
	svc := documents.NewService(docsRepo, orch, logger,
		documents.WithConfig(pipeline.RequestConfig(cfg.Extraction)),
		documents.WithMaxRetries(cfg.Extraction.MaxRetries),
		documents.WithParallelism(cfg.Server.Workers),
	)

	ingestor := ingest.NewFSIngestor(svc, logger)
	_, stats, err := ingestor.IngestDirectory(ctx, *app, *dir, !*hidden)
	if err != nil {
		logger.Error("failed to ingest directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	sum, err := svc.ProcessAllPending(ctx, *app)
	if err != nil {
		logger.Error("failed to process documents", "application_id", *app, "error", err)
		os.Exit(1)
	}

	xlsx, err := export.NewService(docsRepo, logger).ExportApplicationXLSX(ctx, *app)
	if err != nil {
		logger.Error("failed to export results", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write export", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"application_id", *app,
		"ingested", stats.Succeeded,
		"ingest_failed", stats.Failed,
		"processed", sum.Total,
		"completed", sum.Completed,
		"failed", sum.Failed,
		"out", *out,
	)
}
