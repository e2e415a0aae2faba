package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/docextract/internal/core/async"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

type flakyDB struct{ err error }

func (f *flakyDB) HealthCheck(context.Context, time.Duration, *slog.Logger) error { return f.err }

func TestHealthMonitor(t *testing.T) {
	db := &flakyDB{}
	hs := health.NewServer()
	m := NewHealthMonitor(db, hs, time.Minute, nil)
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, m.Check(ctx))
	resp, err := hs.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	db.err = errors.New("connection refused")
	m.Check(ctx)
	resp, err = hs.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

type listStore struct {
	docs []*repository.Document
	err  error
}

func (l *listStore) ListPending(context.Context, string) ([]*repository.Document, error) {
	return l.docs, l.err
}

type jobSink struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (s *jobSink) Enqueue(_ context.Context, job async.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *jobSink) Shutdown(context.Context) {}

func TestPollerEnqueuesPending(t *testing.T) {
	store := &listStore{docs: []*repository.Document{{ID: uuid.New()}, {ID: uuid.New()}}}
	sink := &jobSink{}
	p := NewPoller(store, sink, time.Minute, nil)

	n, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.jobs, 2)
	assert.Equal(t, store.docs[0].ID, sink.jobs[0].DocumentID)

	store.err = errors.New("db down")
	_, err = p.Poll(context.Background())
	assert.Error(t, err)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	p := NewPoller(&listStore{}, &jobSink{}, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { p.Run(ctx); close(done) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
