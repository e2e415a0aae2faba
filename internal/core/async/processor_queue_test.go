package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen map[uuid.UUID]int
	gate chan struct{}
	fail bool
}

func (p *recordingProcessor) ProcessOne(ctx context.Context, id uuid.UUID) (document.Result, error) {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return document.Result{}, ctx.Err()
		}
	}
	p.mu.Lock()
	p.seen[id]++
	p.mu.Unlock()
	if p.fail {
		return document.Result{}, errors.New("store down")
	}
	return document.Succeeded("mock", document.NewExtraction(constants.W2), 0.9), nil
}

func (p *recordingProcessor) count(id uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[id]
}

func TestQueueProcessesEveryJob(t *testing.T) {
	proc := &recordingProcessor{seen: map[uuid.UUID]int{}}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(4))

	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: ids[i]}))
	}
	q.Shutdown(context.Background())

	for _, id := range ids {
		assert.Equal(t, 1, proc.count(id))
	}
	assert.Zero(t, q.Pending())
}

func TestQueueSkipsInFlightDuplicates(t *testing.T) {
	proc := &recordingProcessor{seen: map[uuid.UUID]int{}, gate: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	id := uuid.New()
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: id}))
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: id}))
	assert.Equal(t, 1, q.Pending())

	close(proc.gate)
	q.Shutdown(context.Background())
	assert.Equal(t, 1, proc.count(id))
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{seen: map[uuid.UUID]int{}, fail: true}, nil)
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: uuid.New()}))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{DocumentID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueProcessTimeout(t *testing.T) {
	proc := &recordingProcessor{seen: map[uuid.UUID]int{}, gate: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithProcessTimeout(20*time.Millisecond))

	id := uuid.New()
	require.NoError(t, q.Enqueue(context.Background(), Job{DocumentID: id}))
	q.Shutdown(context.Background())
	assert.Zero(t, proc.count(id))
}
