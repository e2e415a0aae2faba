// Package extract implements the providers that turn document images into
// typed extractions.
package extract

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// Input is one document handed to a provider.
type Input struct {
	Data     []byte
	MIMEType string
	// DocumentType is the resolved type; empty lets the provider decide.
	DocumentType constants.DocumentType
}

// Provider is a pluggable extraction backend.
//
// Extract returns an error for provider-level failures (transport, engine,
// unparseable reply). A Result with Success=false and a nil error is a
// handled failure such as an unreadable image.
type Provider interface {
	Name() string
	Available() bool
	Extract(ctx context.Context, in Input) (document.Result, error)
}

// TypeDetector is implemented by providers that can classify a document
// before extraction.
type TypeDetector interface {
	DetectType(ctx context.Context, data []byte, mimeType string) (constants.DocumentType, float64, error)
}

// checkImageMIME normalizes mimeType against the image allow-list. PDF gets
// a remediation message.
func checkImageMIME(provider, mimeType string) (string, error) {
	mt := constants.NormalizeMIME(mimeType)
	if mt == constants.MIMEPDF {
		return "", common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("%s provider does not accept PDF documents: convert to image first", provider),
			common.ErrInvalidInput)
	}
	if !constants.IsImageMIME(mt) {
		return "", common.InvalidInput(fmt.Sprintf("unsupported mime type %q", mimeType))
	}
	return mt, nil
}
