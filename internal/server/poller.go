package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docextract/internal/core/async"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

// PendingLister is the slice of the document store the poller reads.
type PendingLister interface {
	ListPending(ctx context.Context, applicationID string) ([]*repository.Document, error)
}

// Poller enqueues every pending document on a fixed interval, so documents
// written by other processes get picked up.
type Poller struct {
	store    PendingLister
	queue    async.Queue
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(store PendingLister, queue async.Queue, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{store: store, queue: queue, interval: interval, logger: logger}
}

// Poll enqueues the current pending set once and returns how many were offered.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	docs, err := p.store.ListPending(ctx, "")
	if err != nil {
		p.logger.Error("poll pending documents failed", "error", err)
		return 0, err
	}
	for _, d := range docs {
		if err := p.queue.Enqueue(ctx, async.Job{DocumentID: d.ID, SubmittedAt: time.Now()}); err != nil {
			return 0, err
		}
	}
	if len(docs) > 0 {
		p.logger.Debug("pending documents offered", "count", len(docs))
	}
	return len(docs), nil
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		if _, err := p.Poll(ctx); err != nil && ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
