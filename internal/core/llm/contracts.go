// Package llm holds the prompts, response schemas and decoding used to turn a
// vision model reply into typed document fields.
package llm

import (
	"context"
	"encoding/base64"

	"github.com/joseph-ayodele/docextract/constants"
)

// VisionRequest is a single image question to a vision model.
type VisionRequest struct {
	SystemPrompt string
	UserPrompt   string
	ImageDataURL string // data:<mime>;base64,...
	MaxTokens    int    // 0 leaves the model default
}

// VisionClient is what the cloud provider depends on.
type VisionClient interface {
	// Complete returns the raw text content of the model reply.
	Complete(ctx context.Context, req VisionRequest) (string, error)
	// Available reports whether calls can currently be attempted.
	Available() bool
}

// DataURL encodes image bytes for inline transport.
func DataURL(data []byte, mimeType string) string {
	return "data:" + constants.NormalizeMIME(mimeType) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
