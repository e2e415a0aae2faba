package documents

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

type memStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]*repository.Document
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{docs: map[uuid.UUID]*repository.Document{}}
}

func (m *memStore) Create(_ context.Context, doc *repository.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ListPending(_ context.Context, applicationID string) ([]*repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*repository.Document
	for _, d := range m.docs {
		if d.Status == constants.StatusPending && (applicationID == "" || d.ApplicationID == applicationID) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) MarkProcessing(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return common.ErrNotFound
	}
	d.Status = constants.StatusProcessing
	return nil
}

func (m *memStore) SaveResult(_ context.Context, id uuid.UUID, status constants.DocumentStatus, res document.Result) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docs[id]
	d.Status = status
	d.Result = &res
	return nil
}

func (m *memStore) ClaimRetry(_ context.Context, id uuid.UUID, maxRetries int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	switch {
	case !ok:
		return 0, common.ErrNotFound
	case d.Status != constants.StatusFailed:
		return 0, common.ErrInvalidInput
	case d.RetryCount >= maxRetries:
		return 0, common.NewAppError(common.CodeRetryLimit, "retry limit", common.ErrRetryLimit)
	}
	d.RetryCount++
	d.Status = constants.StatusProcessing
	return d.RetryCount, nil
}

func (m *memStore) status(id uuid.UUID) constants.DocumentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id].Status
}

// fakeExtractor succeeds unless the content is "bad".
type fakeExtractor struct {
	calls atomic.Int32

	mu    sync.Mutex
	hints []constants.DocumentType
}

func (f *fakeExtractor) ExtractDocument(_ context.Context, data []byte, _ string, hint constants.DocumentType, _ document.Config) document.Result {
	f.calls.Add(1)
	f.mu.Lock()
	f.hints = append(f.hints, hint)
	f.mu.Unlock()
	if string(data) == "bad" {
		return document.Failed(constants.ProviderLocal, hint, common.CodeAllProvidersFailed, "all providers failed")
	}
	ex := document.NewExtraction(hint)
	return document.Succeeded(constants.ProviderMock, ex, 0.95)
}

func seed(t *testing.T, store *memStore, app, content string, status constants.DocumentStatus) uuid.UUID {
	t.Helper()
	doc := &repository.Document{ApplicationID: app, MIMEType: constants.MIMEPNG, DocumentType: constants.W2, Content: []byte(content), Status: status}
	require.NoError(t, store.Create(context.Background(), doc))
	return doc.ID
}

func TestUploadValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeExtractor{}, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadRequest{ApplicationID: "a", MIMEType: "image/png"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.Upload(ctx, UploadRequest{ApplicationID: "a", MIMEType: "text/plain", Content: []byte("x")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.Upload(ctx, UploadRequest{ApplicationID: "a", MIMEType: "image/png", DocumentType: "passport", Content: []byte("x")})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	doc, err := svc.Upload(ctx, UploadRequest{ApplicationID: "a", Filename: "w2.jpg", MIMEType: "image/jpg", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, constants.MIMEJPEG, doc.MIMEType)
	assert.Equal(t, constants.StatusPending, store.status(doc.ID))
}

func TestProcessOne(t *testing.T) {
	store := newMemStore()
	ex := &fakeExtractor{}
	svc := NewService(store, ex, nil)
	ctx := context.Background()

	ok := seed(t, store, "a", "good", constants.StatusPending)
	res, err := svc.ProcessOne(ctx, ok)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, constants.StatusCompleted, store.status(ok))

	bad := seed(t, store, "a", "bad", constants.StatusPending)
	res, err = svc.ProcessOne(ctx, bad)
	require.NoError(t, err, "a failed extraction is persisted, not returned as an error")
	assert.False(t, res.Success)
	assert.Equal(t, constants.StatusFailed, store.status(bad))

	_, err = svc.ProcessOne(ctx, ok)
	assert.ErrorIs(t, err, common.ErrInvalidInput, "completed documents are not reprocessed")

	_, err = svc.ProcessOne(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, int32(2), ex.calls.Load())
}

func TestProcessOneSaveFailure(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	svc := NewService(store, &fakeExtractor{}, nil)

	id := seed(t, store, "a", "good", constants.StatusPending)
	_, err := svc.ProcessOne(context.Background(), id)
	assert.ErrorContains(t, err, "disk full")
}

func TestRetry(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeExtractor{}, nil, WithMaxRetries(2))
	ctx := context.Background()

	pending := seed(t, store, "a", "bad", constants.StatusPending)
	_, err := svc.Retry(ctx, pending)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	failed := seed(t, store, "a", "bad", constants.StatusFailed)
	for i := 0; i < 2; i++ {
		res, err := svc.Retry(ctx, failed)
		require.NoError(t, err)
		assert.False(t, res.Success)
	}
	_, err = svc.Retry(ctx, failed)
	assert.ErrorIs(t, err, common.ErrRetryLimit)

	var ae *common.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, common.CodeRetryLimit, ae.Code)

	doc, err := store.Get(ctx, failed)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.RetryCount)
}

func TestRetryRecovers(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &fakeExtractor{}, nil)
	id := seed(t, store, "a", "good", constants.StatusFailed)

	res, err := svc.Retry(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, constants.StatusCompleted, store.status(id))
}

func TestRetryRedetectsUnhintedDocument(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, db.Migrate(ctx))

	repo := repository.NewDocumentRepository(db, nil)
	ex := &fakeExtractor{}
	svc := NewService(repo, ex, nil)

	doc, err := svc.Upload(ctx, UploadRequest{ApplicationID: "a", Filename: "scan.png", MIMEType: constants.MIMEPNG, Content: []byte("bad")})
	require.NoError(t, err)

	res, err := svc.ProcessOne(ctx, doc.ID)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, constants.Other, res.DocumentType)

	_, err = svc.Retry(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, []constants.DocumentType{"", ""}, ex.hints, "a retry must run detection again")

	stored, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentType(""), stored.DocumentType)
	assert.Equal(t, constants.Other, stored.ResultType)
	assert.Equal(t, 1, stored.RetryCount)
}

func TestConcurrentRetryHonoursCap(t *testing.T) {
	store := newMemStore()
	ex := &fakeExtractor{}
	svc := NewService(store, ex, nil, WithMaxRetries(3))
	id := seed(t, store, "a", "bad", constants.StatusFailed)
	store.docs[id].RetryCount = 2

	const callers = 8
	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Retry(context.Background(), id); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), ex.calls.Load())
	doc, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.RetryCount)
}

func TestProcessAllPending(t *testing.T) {
	store := newMemStore()
	ex := &fakeExtractor{}
	svc := NewService(store, ex, nil, WithParallelism(2))

	for i := 0; i < 5; i++ {
		seed(t, store, "app-1", "good", constants.StatusPending)
	}
	seed(t, store, "app-1", "bad", constants.StatusPending)
	seed(t, store, "app-1", "good", constants.StatusCompleted)
	seed(t, store, "app-2", "good", constants.StatusPending)

	sum, err := svc.ProcessAllPending(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 6, Completed: 5, Failed: 1}, sum)
	assert.Equal(t, int32(6), ex.calls.Load())

	left, err := store.ListPending(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestResultStruct(t *testing.T) {
	ex := document.NewExtraction(constants.W2)
	ex.W2.WagesTipsCompensation = document.Number(75000, 0.9)
	res := document.Succeeded(constants.ProviderCloud, ex, 0.9)

	s, err := ResultStruct(res)
	require.NoError(t, err)
	m := s.AsMap()
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "cloud", m["provider"])
	fields := m["extraction"].(map[string]any)["fields"].(map[string]any)
	wages := fields["wagesTipsCompensation"].(map[string]any)
	assert.Equal(t, 75000.0, wages["value"])
}
