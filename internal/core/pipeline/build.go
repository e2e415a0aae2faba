package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
	"github.com/joseph-ayodele/docextract/internal/core/extract"
	"github.com/joseph-ayodele/docextract/internal/core/llm/openai"
	"github.com/joseph-ayodele/docextract/internal/core/ocr"
)

// FromConfig wires the cloud, local and mock providers from cfg into an
// orchestrator. Providers without credentials or an engine are registered
// anyway and report themselves unavailable.
func FromConfig(cfg *common.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	vision := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		RPM:         cfg.LLM.RPM,
	}, logger)
	recognizer := ocr.NewExtractor(ocr.Config{
		Tesseract:        cfg.OCR.Tesseract,
		TesseractLang:    cfg.OCR.TesseractLang,
		TessdataDir:      cfg.OCR.TessdataDir,
		PSM:              cfg.OCR.PSM,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
	}, nil, logger)

	registry := NewRegistry(
		extract.NewCloud(vision, logger),
		extract.NewLocal(recognizer, logger),
		extract.NewMock(),
	)
	logger.Info("providers registered", "names", registry.Names(),
		"cloud_available", vision.Available(), "local_available", recognizer.Available())

	return New(registry, logger,
		WithProviderTimeout(cfg.Extraction.ProviderTimeout),
		WithMaxConcurrent(cfg.Extraction.MaxConcurrent),
	)
}

// RequestConfig is the per-call policy derived from the environment defaults.
func RequestConfig(cfg common.ExtractionConfig) document.Config {
	return document.Config{
		PreferredProvider: cfg.PreferredProvider,
		EnableFallback:    cfg.EnableFallback,
		MockMode:          cfg.MockMode,
	}
}
