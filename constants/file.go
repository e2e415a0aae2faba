package constants

import "strings"

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"
	MIMEGIF  = "image/gif"
	MIMEPDF  = "application/pdf"
)

// ImageMIMETypes holds the image formats every provider accepts.
var ImageMIMETypes = map[string]struct{}{
	MIMEPNG:  {},
	MIMEJPEG: {},
	MIMEWebP: {},
	MIMEGIF:  {},
}

// AcceptedMIMETypes is the orchestrator boundary allow-list. PDF is let through
// so the cloud provider can answer with its conversion hint.
var AcceptedMIMETypes = map[string]struct{}{
	MIMEPNG:  {},
	MIMEJPEG: {},
	MIMEWebP: {},
	MIMEGIF:  {},
	MIMEPDF:  {},
}

// NormalizeMIME lowercases, strips parameters and resolves the jpg alias.
func NormalizeMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return MIMEJPEG
	}
	return mt
}

// IsImageMIME reports whether mimeType (after normalization) is a supported image.
func IsImageMIME(mimeType string) bool {
	_, ok := ImageMIMETypes[NormalizeMIME(mimeType)]
	return ok
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEFromExt resolves a file extension to one of the accepted MIME types.
func MIMEFromExt(ext string) (string, bool) {
	switch NormalizeExt(ext) {
	case "png":
		return MIMEPNG, true
	case "jpg", "jpeg":
		return MIMEJPEG, true
	case "webp":
		return MIMEWebP, true
	case "gif":
		return MIMEGIF, true
	case "pdf":
		return MIMEPDF, true
	}
	return "", false
}

// ExtFromMIME returns the file extension (without dot) tesseract expects for mimeType.
func ExtFromMIME(mimeType string) string {
	switch NormalizeMIME(mimeType) {
	case MIMEPNG:
		return "png"
	case MIMEJPEG:
		return "jpg"
	case MIMEWebP:
		return "webp"
	case MIMEGIF:
		return "gif"
	case MIMEPDF:
		return "pdf"
	}
	return "bin"
}
