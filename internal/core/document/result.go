package document

import (
	"github.com/joseph-ayodele/docextract/constants"
)

// Config is the per-call provider policy. It is a value: callers build one
// per request and nothing in the pipeline keeps it.
type Config struct {
	PreferredProvider string `json:"preferredProvider"`
	EnableFallback    bool   `json:"enableFallback"`
	MockMode          bool   `json:"mockMode"`
}

// DefaultConfig is auto selection with fallback.
func DefaultConfig() Config {
	return Config{PreferredProvider: constants.ProviderAuto, EnableFallback: true}
}

// Attempt records one provider call made while resolving a request.
type Attempt struct {
	Provider   string `json:"provider"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Result is the uniform outcome of an extraction call. Success=false implies
// Extraction=nil and Error set; Success=true implies Extraction!=nil.
type Result struct {
	Success           bool                   `json:"success"`
	Provider          string                 `json:"provider"`
	DocumentType      constants.DocumentType `json:"documentType"`
	Extraction        *Extraction            `json:"extraction"`
	OverallConfidence float64                `json:"overallConfidence"`
	WeightedScore     float64                `json:"weightedScore,omitempty"`
	ConfidenceLevel   string                 `json:"confidenceLevel,omitempty"`
	ProcessingTimeMs  int64                  `json:"processingTimeMs"`
	Error             string                 `json:"error,omitempty"`
	ErrorCode         string                 `json:"errorCode,omitempty"`
	TypeDetected      bool                   `json:"typeDetected,omitempty"`
	RequestID         string                 `json:"requestId,omitempty"`
	Attempts          []Attempt              `json:"attempts,omitempty"`
}

// Succeeded builds a successful result around ex.
func Succeeded(provider string, ex *Extraction, overall float64) Result {
	return Result{
		Success:           true,
		Provider:          provider,
		DocumentType:      ex.Type,
		Extraction:        ex,
		OverallConfidence: ClampConfidence(overall),
	}
}

// Failed builds a failed result; the extraction is always nil.
func Failed(provider string, docType constants.DocumentType, code, message string) Result {
	if docType == "" {
		docType = constants.Other
	}
	return Result{
		Success:      false,
		Provider:     provider,
		DocumentType: docType,
		Error:        message,
		ErrorCode:    code,
	}
}
