// Package documents is the invocation layer around the extraction pipeline:
// it loads stored documents, runs them through the orchestrator and
// persists the outcome.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

// Store is the persistence this service needs.
type Store interface {
	Create(ctx context.Context, doc *repository.Document) error
	Get(ctx context.Context, id uuid.UUID) (*repository.Document, error)
	ListPending(ctx context.Context, applicationID string) ([]*repository.Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	SaveResult(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, res document.Result) error
	ClaimRetry(ctx context.Context, id uuid.UUID, maxRetries int) (int, error)
}

// Extractor runs one extraction call; *pipeline.Orchestrator satisfies it.
type Extractor interface {
	ExtractDocument(ctx context.Context, data []byte, mimeType string, hint constants.DocumentType, cfg document.Config) document.Result
}

// Service handles document processing business logic.
type Service struct {
	store      Store
	extractor  Extractor
	logger     *slog.Logger
	cfg        document.Config
	maxRetries int
	parallel   int
}

type Option func(*Service)

// WithConfig sets the provider policy used for every call.
func WithConfig(cfg document.Config) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithMaxRetries caps Retry; values outside [0, constants.MaxRetries] are ignored.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 && n <= constants.MaxRetries {
			s.maxRetries = n
		}
	}
}

// WithParallelism bounds ProcessAllPending fan-out.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// NewService creates a new documents service.
func NewService(store Store, extractor Extractor, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:      store,
		extractor:  extractor,
		logger:     logger,
		cfg:        document.DefaultConfig(),
		maxRetries: constants.MaxRetries,
		parallel:   4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// UploadRequest describes a new document to store as pending.
type UploadRequest struct {
	ApplicationID string
	Filename      string
	MIMEType      string
	DocumentType  constants.DocumentType
	Content       []byte
}

// Upload validates and stores a pending document.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*repository.Document, error) {
	if req.ApplicationID == "" {
		return nil, common.InvalidInput("application_id is required")
	}
	if len(req.Content) == 0 {
		return nil, common.InvalidInput("empty document buffer")
	}
	mt := constants.NormalizeMIME(req.MIMEType)
	if _, ok := constants.AcceptedMIMETypes[mt]; !ok {
		return nil, common.InvalidInput(fmt.Sprintf("unsupported mime type %q", req.MIMEType))
	}
	if req.DocumentType != "" && !req.DocumentType.Valid() {
		return nil, common.InvalidInput(fmt.Sprintf("unknown document type %q", req.DocumentType))
	}
	doc := &repository.Document{
		ApplicationID: req.ApplicationID,
		Filename:      req.Filename,
		MIMEType:      mt,
		DocumentType:  req.DocumentType,
		Content:       req.Content,
		Status:        constants.StatusPending,
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.logger.Info("document uploaded", "document_id", doc.ID, "application_id", doc.ApplicationID, "bytes", len(doc.Content))
	return doc, nil
}

// ProcessOne extracts a pending document and stores the result. A failed
// extraction is not an error: it is persisted with status failed and
// returned.
func (s *Service) ProcessOne(ctx context.Context, id uuid.UUID) (document.Result, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return document.Result{}, err
	}
	if doc.Status != constants.StatusPending {
		return document.Result{}, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("document %s is %s, not pending", id, doc.Status), common.ErrInvalidInput)
	}
	return s.process(ctx, doc)
}

// Retry re-runs a failed document from the top of the pipeline with its
// original hint, counting the attempt against the cap.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (document.Result, error) {
	n, err := s.store.ClaimRetry(ctx, id, s.maxRetries)
	if err != nil {
		if errors.Is(err, common.ErrRetryLimit) {
			s.logger.Warn("retry limit reached", "document_id", id, "max_retries", s.maxRetries)
		}
		return document.Result{}, err
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return document.Result{}, err
	}
	s.logger.Info("retrying document", "document_id", id, "retry_count", n)
	return s.run(ctx, doc)
}

// Summary counts the outcomes of ProcessAllPending.
type Summary struct {
	Total     int
	Completed int
	Failed    int
}

// ProcessAllPending processes every pending document of applicationID
// (all applications when empty) with bounded parallelism. Extraction
// failures are counted; store errors abort the run.
func (s *Service) ProcessAllPending(ctx context.Context, applicationID string) (Summary, error) {
	docs, err := s.store.ListPending(ctx, applicationID)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending: %w", err)
	}
	sum := Summary{Total: len(docs)}
	if len(docs) == 0 {
		return sum, nil
	}
	s.logger.Info("processing pending documents", "application_id", applicationID, "count", len(docs), "parallel", s.parallel)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for _, doc := range docs {
		g.Go(func() error {
			res, err := s.process(gctx, doc)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Success {
				sum.Completed++
			} else {
				sum.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	s.logger.Info("pending documents processed",
		"application_id", applicationID, "total", sum.Total, "completed", sum.Completed, "failed", sum.Failed)
	return sum, nil
}

func (s *Service) process(ctx context.Context, doc *repository.Document) (document.Result, error) {
	if err := s.store.MarkProcessing(ctx, doc.ID); err != nil {
		return document.Result{}, fmt.Errorf("mark processing: %w", err)
	}
	return s.run(ctx, doc)
}

// run extracts a document already claimed as processing.
func (s *Service) run(ctx context.Context, doc *repository.Document) (document.Result, error) {
	ctx = common.WithDocumentID(ctx, doc.ID.String())

	res := s.extractor.ExtractDocument(ctx, doc.Content, doc.MIMEType, doc.DocumentType, s.cfg)

	status := constants.StatusCompleted
	if !res.Success {
		status = constants.StatusFailed
	}
	// Persist even when the caller's context is done so the document does
	// not stay stuck in processing.
	if err := s.store.SaveResult(context.WithoutCancel(ctx), doc.ID, status, res); err != nil {
		return res, fmt.Errorf("save result: %w", err)
	}
	s.logger.Info("document processed",
		"document_id", doc.ID,
		"status", status,
		"provider", res.Provider,
		"document_type", res.DocumentType,
		"overall_confidence", res.OverallConfidence,
		"elapsed_ms", res.ProcessingTimeMs,
	)
	return res, nil
}
