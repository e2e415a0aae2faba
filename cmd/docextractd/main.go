package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/async"
	"github.com/joseph-ayodele/docextract/internal/core/pipeline"
	"github.com/joseph-ayodele/docextract/internal/ingest"
	repo "github.com/joseph-ayodele/docextract/internal/repository"
	"github.com/joseph-ayodele/docextract/internal/server"
	"github.com/joseph-ayodele/docextract/internal/services/documents"
)

const inboxApplication = "inbox"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.Database.DSN,
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

	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	docsRepo := repo.NewDocumentRepository(db, logger)
	orch := pipeline.FromConfig(cfg, logger)
	svc := documents.NewService(docsRepo, orch, logger,
		documents.WithConfig(pipeline.RequestConfig(cfg.Extraction)),
		documents.WithMaxRetries(cfg.Extraction.MaxRetries),
	)

	queue := async.NewProcessorQueue(svc, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(512),
		async.WithProcessTimeout(3*time.Minute),
	)

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	server.NewDocumentsService(svc, logger).Register(grpcServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}

	go server.NewHealthMonitor(db, healthServer, 15*time.Second, logger).Run(ctx)
	go server.NewPoller(docsRepo, queue, cfg.Server.PollInterval, logger).Run(ctx)
	if cfg.Server.InboxDir != "" {
		if err := watchInbox(ctx, cfg.Server.InboxDir, ingest.NewFSIngestor(svc, logger), queue, logger); err != nil {
			logger.Error("failed to watch inbox", "dir", cfg.Server.InboxDir, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("docextractd listening", "addr", addr, "workers", cfg.Server.Workers)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}

// watchInbox uploads images dropped under dir and queues them. Files in a
// first-level subdirectory are filed under that directory's name as the
// application id.
func watchInbox(ctx context.Context, dir string, ing *ingest.FSIngestor, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		return err
	}
	go func() {
		for range errs {
		}
	}()
	go func() {
		for path := range events {
			app := applicationFor(dir, path)
			res, err := ing.IngestPath(ctx, app, path)
			if err != nil {
				logger.Warn("inbox ingest failed", "path", path, "error", err)
				continue
			}
			if res.Deduplicated {
				continue
			}
			id, err := uuid.Parse(res.DocumentID)
			if err != nil {
				continue
			}
			if err := queue.Enqueue(ctx, async.Job{DocumentID: id, SubmittedAt: time.Now()}); err != nil {
				logger.Warn("inbox enqueue failed", "document_id", id, "error", err)
			}
		}
	}()
	return nil
}

func applicationFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return inboxApplication
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return inboxApplication
	}
	return parts[0]
}
