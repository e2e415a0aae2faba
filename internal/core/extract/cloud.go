package extract

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/fields"
	"github.com/joseph-ayodele/docextract/internal/core/llm"
)

// Cloud extracts fields with a vision model.
type Cloud struct {
	client llm.VisionClient
	logger *slog.Logger
}

var (
	_ Provider     = (*Cloud)(nil)
	_ TypeDetector = (*Cloud)(nil)
)

func NewCloud(client llm.VisionClient, logger *slog.Logger) *Cloud {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloud{client: client, logger: logger}
}

func (c *Cloud) Name() string { return constants.ProviderCloud }

func (c *Cloud) Available() bool { return c.client != nil && c.client.Available() }

// DetectType asks the model for the document type. Unrecognized labels map
// to other without an error.
func (c *Cloud) DetectType(ctx context.Context, data []byte, mimeType string) (constants.DocumentType, float64, error) {
	mt, err := checkImageMIME(c.Name(), mimeType)
	if err != nil {
		return constants.Other, 0, err
	}
	if c.client == nil {
		return constants.Other, 0, common.UnavailableProvider(c.Name())
	}
	system, user := llm.DetectionPrompt()
	reply, err := c.client.Complete(ctx, llm.VisionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		ImageDataURL: llm.DataURL(data, mt),
		MaxTokens:    100,
	})
	if err != nil {
		return constants.Other, 0, common.ProviderCallFailed(c.Name(), err)
	}
	if verr := llm.ValidateJSONAgainstSchema(llm.DetectionSchema(), []byte(llm.StripCodeFences(reply))); verr != nil {
		c.logger.Warn("extract.cloud.detect_schema_violation",
			"req_id", common.RequestIDFromContext(ctx), "error", verr)
	}
	det, err := llm.DecodeDetection(reply)
	if err != nil {
		return constants.Other, 0, common.ProviderCallFailed(c.Name(), err)
	}
	if !det.Known {
		c.logger.Warn("extract.cloud.detect_unknown_label",
			"req_id", common.RequestIDFromContext(ctx), "label", det.Label)
	}
	return det.Type, det.Confidence, nil
}

func (c *Cloud) Extract(ctx context.Context, in Input) (document.Result, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	mt, err := checkImageMIME(c.Name(), in.MIMEType)
	if err != nil {
		return document.Result{}, err
	}
	if !c.Available() {
		return document.Result{}, common.UnavailableProvider(c.Name())
	}

	dt := in.DocumentType
	if dt == "" {
		detected, _, derr := c.DetectType(ctx, in.Data, mt)
		if derr != nil {
			c.logger.Warn("extract.cloud.detect_failed", "req_id", rid, "error", derr)
		}
		dt = detected
	}

	system, user := llm.ExtractionPrompt(dt)
	reply, err := c.client.Complete(ctx, llm.VisionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		ImageDataURL: llm.DataURL(in.Data, mt),
	})
	if err != nil {
		return document.Result{}, common.ProviderCallFailed(c.Name(), err)
	}

	if verr := llm.ValidateJSONAgainstSchema(llm.ResponseSchema(dt), []byte(llm.StripCodeFences(reply))); verr != nil {
		c.logger.Warn("extract.cloud.schema_violation", "req_id", rid, "document_type", dt, "error", verr)
	}
	decoded, _, err := llm.DecodeExtraction(reply, dt)
	if err != nil {
		c.logger.Error("extract.cloud.unparseable", "req_id", rid, "reply_len", len(reply), "error", err)
		return document.Result{}, common.ProviderCallFailed(c.Name(), err)
	}
	if len(decoded.Dropped) > 0 {
		c.logger.Warn("extract.cloud.fields_dropped", "req_id", rid, "dropped", decoded.Dropped)
	}

	ex := toExtraction(dt, decoded)
	overall := ex.MeanConfidence()
	res := document.Succeeded(c.Name(), ex, overall)
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	c.logger.Info("extract.cloud.ok",
		"req_id", rid,
		"document_type", dt,
		"fields", ex.SetCount(),
		"overall_confidence", overall,
		"elapsed_ms", res.ProcessingTimeMs,
	)
	return res, nil
}

// toExtraction normalizes decoded model values into the variant of dt,
// masking sensitive numbers on the way.
func toExtraction(dt constants.DocumentType, d llm.Decoded) *document.Extraction {
	ex := document.NewExtraction(dt)
	names := make([]string, 0, len(d.Fields))
	for n := range d.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		rv := d.Fields[name]
		f := normalizeField(kindOf(name, rv.Value), rv.Value, rv.Confidence)
		if !f.IsSet() {
			continue
		}
		ex.SetField(name, f)
	}
	if ex.Generic != nil {
		ex.Generic.RawText = fields.RedactNumbers(d.RawText)
	}
	return ex
}
