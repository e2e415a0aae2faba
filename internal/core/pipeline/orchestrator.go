// Package pipeline selects extraction providers, runs them with fallback and
// returns a uniform result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/confidence"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/extract"
)

// DefaultProviderTimeout bounds a single provider attempt.
const DefaultProviderTimeout = 60 * time.Second

// Orchestrator runs extraction requests against a provider registry.
type Orchestrator struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
	sem      *semaphore.Weighted
	order    []string
	mock     extract.Provider
}

type Option func(*Orchestrator)

// WithProviderTimeout bounds each provider attempt; 0 disables the bound.
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithMaxConcurrent caps in-flight extractions; 0 means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.sem = semaphore.NewWeighted(int64(n))
		} else {
			o.sem = nil
		}
	}
}

// WithOrder sets the fallback preference order.
func WithOrder(names ...string) Option {
	return func(o *Orchestrator) {
		if len(names) > 0 {
			o.order = slices.Clone(names)
		}
	}
}

func New(registry *Registry, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	o := &Orchestrator{
		registry: registry,
		logger:   logger,
		timeout:  DefaultProviderTimeout,
		order:    slices.Clone(constants.DefaultProviderOrder),
	}
	for _, opt := range opts {
		opt(o)
	}
	if p, ok := registry.Get(constants.ProviderMock); ok {
		o.mock = p
	} else {
		o.mock = extract.NewMock()
	}
	return o
}

// run is the per-call state threaded through ExtractDocument.
type run struct {
	start        time.Time
	requestID    string
	docType      constants.DocumentType
	typeDetected bool
	attempts     []document.Attempt
}

// ExtractDocument validates the input, resolves the document type and runs
// the provider chain selected by cfg. It never panics and always returns a
// well-formed result.
func (o *Orchestrator) ExtractDocument(ctx context.Context, data []byte, mimeType string, hint constants.DocumentType, cfg document.Config) document.Result {
	ctx, rid := common.EnsureRequestID(ctx)
	r := &run{start: time.Now(), requestID: rid, docType: hint}

	o.logger.Info("pipeline.extract.start",
		"req_id", rid,
		"document_id", common.DocumentIDFromContext(ctx),
		"bytes", len(data),
		"mime", mimeType,
		"hint", string(hint),
		"preferred", cfg.PreferredProvider,
		"fallback", cfg.EnableFallback,
		"mock", cfg.MockMode,
	)

	if len(data) == 0 {
		return o.finish(r, document.Failed("", hint, common.CodeInvalidInput, "empty document buffer"))
	}
	mt := constants.NormalizeMIME(mimeType)
	// mock mode only rejects an empty buffer
	if _, ok := constants.AcceptedMIMETypes[mt]; !ok && !cfg.MockMode {
		return o.finish(r, document.Failed("", hint, common.CodeInvalidInput,
			fmt.Sprintf("unsupported mime type %q", mimeType)))
	}
	if hint != "" && !hint.Valid() {
		r.docType = constants.Other
	}

	if o.sem != nil {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return o.finish(r, document.Failed("", hint, common.CodeProviderCallFailed, err.Error()))
		}
		defer o.sem.Release(1)
	}

	in := extract.Input{Data: data, MIMEType: mt}

	if cfg.MockMode {
		in.DocumentType = r.docType
		res, err := o.attempt(ctx, r, o.mock, in)
		if err != nil {
			return o.finish(r, failure(o.mock.Name(), r.docType, err))
		}
		return o.finish(r, res)
	}

	chain, res, ok := o.chain(cfg)
	if !ok {
		res.DocumentType = orOther(r.docType)
		return o.finish(r, res)
	}

	if r.docType == "" {
		o.detect(ctx, r, chain[0], data, mt)
	}
	in.DocumentType = r.docType

	var failures []string
	for i, p := range chain {
		if ctx.Err() != nil {
			failures = append(failures, "canceled: "+ctx.Err().Error())
			break
		}
		res, err := o.attempt(ctx, r, p, in)
		if err == nil {
			return o.finish(r, res)
		}
		failures = append(failures, p.Name()+": "+err.Error())
		if !cfg.EnableFallback {
			return o.finish(r, failure(p.Name(), r.docType, err))
		}
		if i+1 < len(chain) {
			o.logger.Warn("pipeline.extract.fallback",
				"req_id", rid, "from", p.Name(), "to", chain[i+1].Name(), "error", err)
		}
	}

	provider := ""
	if n := len(r.attempts); n > 0 {
		provider = r.attempts[n-1].Provider
	}
	return o.finish(r, document.Failed(provider, r.docType, common.CodeAllProvidersFailed,
		"all providers failed: "+strings.Join(failures, "; ")))
}

// chain resolves the ordered, available providers for cfg. When no chain can
// be built it returns the terminal failure instead.
func (o *Orchestrator) chain(cfg document.Config) ([]extract.Provider, document.Result, bool) {
	preferred := strings.TrimSpace(cfg.PreferredProvider)
	if preferred == "" {
		preferred = constants.ProviderAuto
	}

	var names []string
	if preferred != constants.ProviderAuto {
		p, ok := o.registry.Get(preferred)
		if !ok || !p.Available() {
			if !cfg.EnableFallback {
				err := common.UnavailableProvider(preferred)
				return nil, document.Failed(preferred, "", err.Code, err.Error()), false
			}
			o.logger.Warn("pipeline.extract.preferred_unavailable", "provider", preferred)
		} else {
			names = append(names, preferred)
		}
		if cfg.EnableFallback {
			for _, n := range o.order {
				if n != preferred {
					names = append(names, n)
				}
			}
		}
	} else {
		names = o.order
	}

	var chain []extract.Provider
	for _, n := range names {
		p, ok := o.registry.Get(n)
		if !ok || !p.Available() {
			continue
		}
		chain = append(chain, p)
		if preferred == constants.ProviderAuto && !cfg.EnableFallback {
			break
		}
	}
	if len(chain) == 0 {
		return nil, document.Failed("", "", common.CodeAllProvidersFailed,
			"all providers failed: no available provider"), false
	}
	return chain, document.Result{}, true
}

// detect runs the best-effort type detection of the first provider in the
// chain, when it supports it. Failures resolve to other.
func (o *Orchestrator) detect(ctx context.Context, r *run, first extract.Provider, data []byte, mt string) {
	td, ok := first.(extract.TypeDetector)
	if !ok || mt == constants.MIMEPDF {
		return
	}
	r.typeDetected = true
	dctx, cancel := o.withTimeout(ctx)
	defer cancel()

	dt, conf, err := safeDetect(dctx, td, data, mt)
	if err != nil {
		o.logger.Warn("pipeline.detect.failed", "req_id", r.requestID, "provider", first.Name(), "error", err)
		r.docType = constants.Other
		return
	}
	o.logger.Debug("pipeline.detect.ok", "req_id", r.requestID, "document_type", dt, "confidence", conf)
	r.docType = dt
}

func safeDetect(ctx context.Context, td extract.TypeDetector, data []byte, mt string) (dt constants.DocumentType, conf float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			dt, conf, err = constants.Other, 0, fmt.Errorf("type detection panicked: %v", rec)
		}
	}()
	return td.DetectType(ctx, data, mt)
}

type outcome struct {
	res document.Result
	err error
}

// attempt runs one provider under the per-attempt timeout, recovering
// panics and treating Success=false as a failure.
func (o *Orchestrator) attempt(ctx context.Context, r *run, p extract.Provider, in extract.Input) (document.Result, error) {
	start := time.Now()
	actx, cancel := o.withTimeout(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: common.ProviderCallFailed(p.Name(), fmt.Errorf("panic: %v", rec))}
			}
		}()
		res, err := p.Extract(actx, in)
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-actx.Done():
		out = outcome{err: common.ProviderCallFailed(p.Name(), actx.Err())}
	}

	if out.err == nil && !out.res.Success {
		code := out.res.ErrorCode
		if code == "" {
			code = common.CodeProviderCallFailed
		}
		out.err = common.NewAppError(code, out.res.Error, common.ErrProviderCallFailed)
	}
	if out.err == nil && out.res.Extraction == nil {
		out.err = common.ProviderCallFailed(p.Name(), errors.New("provider returned no extraction"))
	}

	a := document.Attempt{Provider: p.Name(), Success: out.err == nil, DurationMs: time.Since(start).Milliseconds()}
	if out.err != nil {
		a.Error = out.err.Error()
		o.logger.Warn("pipeline.attempt.failed",
			"req_id", r.requestID, "provider", p.Name(), "error", out.err, "elapsed_ms", a.DurationMs)
	} else {
		o.logger.Debug("pipeline.attempt.ok", "req_id", r.requestID, "provider", p.Name(), "elapsed_ms", a.DurationMs)
	}
	r.attempts = append(r.attempts, a)
	if out.err != nil {
		return document.Result{}, out.err
	}
	out.res.Provider = p.Name()
	return out.res, nil
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) finish(r *run, res document.Result) document.Result {
	res.ProcessingTimeMs = time.Since(r.start).Milliseconds()
	res.RequestID = r.requestID
	res.TypeDetected = r.typeDetected
	res.Attempts = r.attempts
	if res.Success && res.Extraction != nil {
		res.WeightedScore = confidence.ForExtraction(res.Extraction)
		res.ConfidenceLevel = confidence.Level(res.OverallConfidence)
	}

	if res.Success {
		o.logger.Info("pipeline.extract.ok",
			"req_id", r.requestID,
			"provider", res.Provider,
			"document_type", res.DocumentType,
			"overall_confidence", res.OverallConfidence,
			"attempts", len(res.Attempts),
			"elapsed_ms", res.ProcessingTimeMs,
		)
	} else {
		o.logger.Error("pipeline.extract.failed",
			"req_id", r.requestID,
			"provider", res.Provider,
			"code", res.ErrorCode,
			"error", res.Error,
			"attempts", len(res.Attempts),
			"elapsed_ms", res.ProcessingTimeMs,
		)
	}
	return res
}

// failure converts a provider error into a failed result, keeping the
// AppError code when there is one.
func failure(provider string, dt constants.DocumentType, err error) document.Result {
	code := common.CodeProviderCallFailed
	var ae *common.AppError
	if errors.As(err, &ae) {
		code = ae.Code
	}
	return document.Failed(provider, dt, code, err.Error())
}

func orOther(dt constants.DocumentType) constants.DocumentType {
	if dt == "" {
		return constants.Other
	}
	return dt
}
