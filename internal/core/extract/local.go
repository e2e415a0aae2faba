package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/fields"
	"github.com/joseph-ayodele/docextract/internal/core/ocr"
)

const (
	minReadableChars    = 10
	minEngineConfidence = 0.30

	localBaseConfidence = 0.60
	localConfidenceStep = 0.10
	localHighEngine     = 0.80
	localLowEngine      = 0.50
	// LocalConfidenceCap keeps offline results below what the cloud path reports.
	LocalConfidenceCap = 0.75
	// alternativePenalty scales fields matched by a later pattern.
	alternativePenalty = 0.9
	// LocalEmptyConfidence is reported when recognition found no fields.
	LocalEmptyConfidence = 0.30
)

// Local extracts fields from offline OCR text with per-type pattern tables.
type Local struct {
	rec    ocr.Recognizer
	logger *slog.Logger
}

func NewLocal(rec ocr.Recognizer, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{rec: rec, logger: logger}
}

func (l *Local) Name() string { return constants.ProviderLocal }

// Available is true when a recognizer is wired and, if it can tell, its
// engine is installed.
func (l *Local) Available() bool {
	if l.rec == nil {
		return false
	}
	if a, ok := l.rec.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

func (l *Local) Extract(ctx context.Context, in Input) (document.Result, error) {
	start := time.Now()
	mt, err := checkImageMIME(l.Name(), in.MIMEType)
	if err != nil {
		return document.Result{}, err
	}
	if l.rec == nil {
		return document.Result{}, common.UnavailableProvider(l.Name())
	}

	rec, err := l.rec.Recognize(ctx, in.Data, mt)
	if err != nil {
		return document.Result{}, common.ProviderCallFailed(l.Name(), err)
	}

	text := strings.TrimSpace(rec.Text)
	if len([]rune(text)) < minReadableChars || rec.Confidence < minEngineConfidence {
		l.logger.Warn("extract.local.unreadable",
			"req_id", common.RequestIDFromContext(ctx),
			"chars", len(text),
			"engine_confidence", rec.Confidence,
		)
		res := document.Failed(l.Name(), in.DocumentType, common.CodeProviderCallFailed,
			fmt.Sprintf("unreadable image: %d characters recognized at %.0f%% engine confidence", len(text), rec.Confidence*100))
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		return res, nil
	}

	dt := in.DocumentType
	if dt == "" {
		dt = ClassifyText(text)
	}
	ex := ExtractText(dt, text, FieldBudget(rec.Confidence))

	overall := ex.MeanConfidence()
	if ex.SetCount() == 0 {
		overall = LocalEmptyConfidence
	}
	res := document.Succeeded(l.Name(), ex, overall)
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	l.logger.Info("extract.local.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"document_type", dt,
		"fields", ex.SetCount(),
		"engine_confidence", rec.Confidence,
		"overall_confidence", overall,
		"elapsed_ms", res.ProcessingTimeMs,
	)
	return res, nil
}

// FieldBudget maps engine confidence onto the per-field confidence of the
// offline path.
func FieldBudget(engine float64) float64 {
	c := localBaseConfidence
	switch {
	case engine >= localHighEngine:
		c += localConfidenceStep
	case engine < localLowEngine:
		c -= localConfidenceStep
	}
	if c > LocalConfidenceCap {
		c = LocalConfidenceCap
	}
	return c
}

// ExtractText applies the pattern table of docType to recognized text.
// The other type yields the generic variant with bounded amount and date
// captures.
func ExtractText(docType constants.DocumentType, text string, budget float64) *document.Extraction {
	ex := document.NewExtraction(docType)
	table, ok := patternTables[ex.Type]
	if !ok {
		extractGeneric(ex, text, budget)
		return ex
	}
	for _, fp := range table {
		kind := kindOf(fp.Name, "")
		for i, p := range fp.Patterns {
			m := p.FindStringSubmatch(text)
			if m == nil || len(m) < 2 {
				continue
			}
			conf := budget
			if i > 0 {
				conf *= alternativePenalty
			}
			raw := m[1]
			if kind == KindAddress {
				raw = strings.ReplaceAll(raw, "\n", ", ")
			}
			f := normalizeField(kind, raw, conf)
			if !f.IsSet() {
				continue
			}
			ex.SetField(fp.Name, f)
			break
		}
	}
	return ex
}

func extractGeneric(ex *document.Extraction, text string, budget float64) {
	ex.Generic.RawText = fields.RedactNumbers(text)
	for i, m := range reGenericAmount.FindAllString(text, maxGenericAmounts) {
		if f := normalizeField(KindCurrency, m, budget); f.IsSet() {
			ex.SetField(fmt.Sprintf("amount%d", i+1), f)
		}
	}
	for i, m := range reGenericDate.FindAllString(text, maxGenericDates) {
		if f := normalizeField(KindDate, m, budget); f.IsSet() {
			ex.SetField(fmt.Sprintf("date%d", i+1), f)
		}
	}
}
