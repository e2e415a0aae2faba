package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/extract"
)

type fakeProvider struct {
	name      string
	available bool
	fail      error
	soft      bool // return Success=false without an error
	panics    bool
	block     bool
	detect    constants.DocumentType

	calls    atomic.Int32
	mu       sync.Mutex
	lastType constants.DocumentType
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Extract(ctx context.Context, in extract.Input) (document.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastType = in.DocumentType
	f.mu.Unlock()
	switch {
	case f.panics:
		panic("boom")
	case f.block:
		<-ctx.Done()
		return document.Result{}, ctx.Err()
	case f.fail != nil:
		return document.Result{}, f.fail
	case f.soft:
		return document.Failed(f.name, in.DocumentType, common.CodeProviderCallFailed, "unreadable image"), nil
	}
	dt := in.DocumentType
	if dt == "" {
		dt = constants.Other
	}
	ex := document.NewExtraction(dt)
	if ex.W2 != nil {
		ex.W2.WagesTipsCompensation = document.Number(75000, 0.9)
	}
	return document.Succeeded(f.name, ex, ex.MeanConfidence()), nil
}

type detectingProvider struct {
	*fakeProvider
	detectErr error
}

func (d *detectingProvider) DetectType(context.Context, []byte, string) (constants.DocumentType, float64, error) {
	if d.detectErr != nil {
		return constants.Other, 0, d.detectErr
	}
	return d.detect, 0.9, nil
}

var png = []byte("\x89PNG fake")

func cfg(preferred string, fallback bool) document.Config {
	return document.Config{PreferredProvider: preferred, EnableFallback: fallback}
}

func TestRejectsEmptyAndUnsupportedInput(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true}
	o := New(NewRegistry(cloud), nil)

	res := o.ExtractDocument(context.Background(), nil, "image/png", "", document.DefaultConfig())
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeInvalidInput, res.ErrorCode)
	assert.Nil(t, res.Extraction)
	assert.NotEmpty(t, res.RequestID)

	res = o.ExtractDocument(context.Background(), png, "text/html", "", document.DefaultConfig())
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeInvalidInput, res.ErrorCode)
	assert.Equal(t, constants.Other, res.DocumentType)

	res = o.ExtractDocument(context.Background(), nil, "image/png", "", document.Config{MockMode: true})
	assert.False(t, res.Success, "mock mode still rejects an empty buffer")

	assert.Zero(t, cloud.calls.Load())
}

func TestMockModeAlwaysSucceeds(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, fail: errors.New("down")}
	o := New(NewRegistry(cloud), nil)

	for _, data := range [][]byte{png, []byte("garbage"), {0}} {
		for _, mt := range []string{"image/jpg", "application/octet-stream", "image/tiff", ""} {
			res := o.ExtractDocument(context.Background(), data, mt, constants.Paystub, document.Config{MockMode: true})
			require.True(t, res.Success, mt)
			assert.Equal(t, constants.ProviderMock, res.Provider)
			assert.Equal(t, constants.Paystub, res.DocumentType)
			assert.NotNil(t, res.Extraction)
		}
	}
	assert.Zero(t, cloud.calls.Load())
}

func TestFallbackToSecondary(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, fail: errors.New("network down")}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	o := New(NewRegistry(cloud, local), nil)

	res := o.ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderAuto, true))
	require.True(t, res.Success)
	assert.Equal(t, constants.ProviderLocal, res.Provider)
	require.Len(t, res.Attempts, 2)
	assert.False(t, res.Attempts[0].Success)
	assert.Contains(t, res.Attempts[0].Error, "network down")
	assert.True(t, res.Attempts[1].Success)
	assert.Equal(t, "high", res.ConfidenceLevel)
	assert.InDelta(t, 0.9, res.WeightedScore, 1e-9)
}

func TestSoftFailureTriggersFallback(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, soft: true}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderAuto, true))
	require.True(t, res.Success)
	assert.Equal(t, constants.ProviderLocal, res.Provider)
}

func TestNoFallbackWithUnavailablePreferred(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: false}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	o := New(NewRegistry(cloud, local), nil)

	res := o.ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderCloud, false))
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeUnavailableProvider, res.ErrorCode)
	assert.Nil(t, res.Extraction)
	assert.Zero(t, local.calls.Load())
	assert.Zero(t, cloud.calls.Load())
}

func TestUnavailablePreferredFallsBack(t *testing.T) {
	local := &fakeProvider{name: constants.ProviderLocal, available: false}
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderLocal, true))
	require.True(t, res.Success)
	assert.Equal(t, constants.ProviderCloud, res.Provider)
	assert.Zero(t, local.calls.Load())
}

func TestNoFallbackFailureIsTerminal(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, fail: common.ProviderCallFailed("cloud", errors.New("bad reply"))}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderCloud, false))
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeProviderCallFailed, res.ErrorCode)
	assert.Equal(t, constants.ProviderCloud, res.Provider)
	assert.Zero(t, local.calls.Load())
}

func TestAllProvidersFailed(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, fail: errors.New("cloud down")}
	local := &fakeProvider{name: constants.ProviderLocal, available: true, panics: true}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderAuto, true))
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeAllProvidersFailed, res.ErrorCode)
	assert.Contains(t, res.Error, "cloud down")
	assert.Contains(t, res.Error, "panic")
	assert.Len(t, res.Attempts, 2)
	assert.Equal(t, constants.W2, res.DocumentType)
}

func TestNoAvailableProvider(t *testing.T) {
	res := New(NewRegistry(&fakeProvider{name: constants.ProviderCloud}), nil).
		ExtractDocument(context.Background(), png, "image/png", "", document.DefaultConfig())
	assert.False(t, res.Success)
	assert.Equal(t, common.CodeAllProvidersFailed, res.ErrorCode)
}

func TestAutoWithoutFallbackUsesFirstAvailable(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: false}
	local := &fakeProvider{name: constants.ProviderLocal, available: true, fail: errors.New("engine crashed")}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderAuto, false))
	assert.False(t, res.Success)
	assert.Equal(t, constants.ProviderLocal, res.Provider)
	assert.Equal(t, int32(1), local.calls.Load())
}

func TestTimeoutIsFallbackEligible(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, block: true}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	o := New(NewRegistry(cloud, local), nil, WithProviderTimeout(20*time.Millisecond))

	res := o.ExtractDocument(context.Background(), png, "image/png", constants.W2, cfg(constants.ProviderAuto, true))
	require.True(t, res.Success)
	assert.Equal(t, constants.ProviderLocal, res.Provider)
	assert.Contains(t, res.Attempts[0].Error, "deadline")
}

func TestCanceledContextStopsFallback(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, block: true}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	o := New(NewRegistry(cloud, local), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	res := o.ExtractDocument(ctx, png, "image/png", constants.W2, cfg(constants.ProviderAuto, true))
	assert.False(t, res.Success)
	assert.Zero(t, local.calls.Load())
}

func TestTypeDetection(t *testing.T) {
	cloud := &detectingProvider{fakeProvider: &fakeProvider{name: constants.ProviderCloud, available: true, detect: constants.W2}}
	res := New(NewRegistry(cloud), nil).
		ExtractDocument(context.Background(), png, "image/png", "", document.DefaultConfig())
	require.True(t, res.Success)
	assert.True(t, res.TypeDetected)
	assert.Equal(t, constants.W2, res.DocumentType)
	assert.Equal(t, constants.W2, cloud.lastType)

	failing := &detectingProvider{
		fakeProvider: &fakeProvider{name: constants.ProviderCloud, available: true},
		detectErr:    errors.New("no idea"),
	}
	res = New(NewRegistry(failing), nil).
		ExtractDocument(context.Background(), png, "image/png", "", document.DefaultConfig())
	require.True(t, res.Success)
	assert.Equal(t, constants.Other, res.DocumentType)
	assert.True(t, res.TypeDetected)
}

func TestDetectedTypeCarriesIntoFallback(t *testing.T) {
	cloud := &detectingProvider{fakeProvider: &fakeProvider{
		name: constants.ProviderCloud, available: true, detect: constants.Paystub, fail: errors.New("extract failed"),
	}}
	local := &fakeProvider{name: constants.ProviderLocal, available: true}
	res := New(NewRegistry(cloud, local), nil).
		ExtractDocument(context.Background(), png, "image/png", "", document.DefaultConfig())
	require.True(t, res.Success)
	assert.Equal(t, constants.Paystub, local.lastType)
}

func TestPDFReachesProviders(t *testing.T) {
	cloud := &fakeProvider{name: constants.ProviderCloud, available: true, fail: common.InvalidInput("convert to image first")}
	res := New(NewRegistry(cloud), nil).
		ExtractDocument(context.Background(), []byte("%PDF-1.7"), "application/pdf", "", cfg(constants.ProviderCloud, false))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "convert to image first")
	assert.Equal(t, int32(1), cloud.calls.Load())
}

func TestMaxConcurrent(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := &slowProvider{inFlight: &inFlight, peak: &peak}
	o := New(NewRegistry(slow), nil, WithMaxConcurrent(2), WithOrder("slow"))

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := o.ExtractDocument(context.Background(), png, "image/png", constants.W2, document.DefaultConfig())
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

type slowProvider struct {
	inFlight, peak *atomic.Int32
}

func (*slowProvider) Name() string    { return "slow" }
func (*slowProvider) Available() bool { return true }

func (s *slowProvider) Extract(_ context.Context, in extract.Input) (document.Result, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return document.Succeeded("slow", document.NewExtraction(in.DocumentType), 0.5), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&fakeProvider{name: "b"}, nil, &fakeProvider{name: "a"})
	assert.Equal(t, []string{"a", "b"}, r.Names())
	_, ok := r.Get("c")
	assert.False(t, ok)
}
