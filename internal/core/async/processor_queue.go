package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Processor runs the extraction of one stored document.
type Processor interface {
	ProcessOne(ctx context.Context, id uuid.UUID) (document.Result, error)
}

type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	flightMu sync.Mutex
	inflight map[uuid.UUID]struct{}
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:     proc,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan Job, 256),
		inflight: make(map[uuid.UUID]struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	defer q.release(job.DocumentID)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}

	res, err := q.proc.ProcessOne(ctx, job.DocumentID)
	switch {
	case err != nil:
		q.logger.Error("processing failed", "worker_id", workerID, "document_id", job.DocumentID, "error", err)
	case !res.Success:
		q.logger.Warn("extraction failed", "worker_id", workerID, "document_id", job.DocumentID,
			"code", res.ErrorCode, "error", res.Error)
	default:
		q.logger.Info("processed document successfully", "worker_id", workerID, "document_id", job.DocumentID,
			"provider", res.Provider, "document_type", res.DocumentType,
			"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
}

func (q *ProcessorQueue) claim(id uuid.UUID, force bool) bool {
	q.flightMu.Lock()
	defer q.flightMu.Unlock()
	if _, ok := q.inflight[id]; ok && !force {
		return false
	}
	q.inflight[id] = struct{}{}
	return true
}

func (q *ProcessorQueue) release(id uuid.UUID) {
	q.flightMu.Lock()
	delete(q.inflight, id)
	q.flightMu.Unlock()
}

// Pending reports how many documents are queued or being processed.
func (q *ProcessorQueue) Pending() int {
	q.flightMu.Lock()
	defer q.flightMu.Unlock()
	return len(q.inflight)
}

// Enqueue schedules job. A document already queued or in flight is skipped
// unless job.Force is set. It blocks while the buffer is full.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document_id", job.DocumentID)
		return ErrQueueClosed
	}
	if !q.claim(job.DocumentID, job.Force) {
		q.logger.Debug("document already queued", "document_id", job.DocumentID)
		return nil
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "document_id", job.DocumentID, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "document_id", job.DocumentID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.release(job.DocumentID)
		return ctx.Err()
	}
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
