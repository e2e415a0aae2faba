package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// DefaultBareConfidence applies to fields the model returned without a confidence.
const DefaultBareConfidence = 0.8

// ErrUnparseable is returned when a reply holds no JSON object at all.
var ErrUnparseable = errors.New("model reply is not a JSON object")

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\n?(.*?)\\s*```$")

// RawValue is one field as the model reported it, before domain normalization.
type RawValue struct {
	Value      any     // string or float64
	Confidence float64 // [0,1]
}

// Decoded is the forgiving view of an extraction reply.
type Decoded struct {
	Fields  map[string]RawValue
	RawText string
	Dropped []string // keys ignored, with the reason in parentheses
}

// Detection is the classification reply.
type Detection struct {
	Type       constants.DocumentType
	Label      string
	Confidence float64
	Known      bool
}

// StripCodeFences removes a surrounding Markdown fence and any prose around
// the outermost JSON object.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func decodeObject(reply string) (map[string]any, []byte, error) {
	clean := StripCodeFences(reply)
	var m map[string]any
	if err := json.Unmarshal([]byte(clean), &m); err != nil || m == nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return m, []byte(clean), nil
}

// DecodeExtraction parses a reply for docType. Unknown keys, nulls and
// malformed entries are dropped; only an unparseable reply is an error.
func DecodeExtraction(reply string, docType constants.DocumentType) (Decoded, []byte, error) {
	m, clean, err := decodeObject(reply)
	if err != nil {
		return Decoded{}, nil, err
	}
	out := Decoded{Fields: make(map[string]RawValue)}

	names := document.FieldNames(docType)
	generic := len(names) == 0
	if generic {
		if rt, ok := m["rawText"].(string); ok {
			out.RawText = strings.TrimSpace(rt)
		}
	}
	if inner, ok := m["fields"].(map[string]any); ok {
		m = inner
	} else if generic {
		delete(m, "rawText")
	}
	delete(m, "documentType")

	canonical := make(map[string]string, len(names))
	for _, n := range names {
		canonical[keyOf(n)] = n
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.TrimSpace(k)
		if !generic {
			c, ok := canonical[keyOf(k)]
			if !ok {
				out.Dropped = append(out.Dropped, k+"(unknown)")
				continue
			}
			name = c
		}
		if name == "" {
			continue
		}
		rv, ok := rawValue(m[k])
		if !ok {
			out.Dropped = append(out.Dropped, k+"(empty)")
			continue
		}
		out.Fields[name] = rv
	}
	return out, clean, nil
}

// DecodeDetection parses a classification reply. Unknown labels map to other.
func DecodeDetection(reply string) (Detection, error) {
	m, _, err := decodeObject(reply)
	if err != nil {
		return Detection{Type: constants.Other}, err
	}
	label, _ := m["documentType"].(string)
	if label == "" {
		label, _ = m["type"].(string)
	}
	dt, known := constants.ParseDocumentType(label)
	d := Detection{Type: dt, Label: label, Known: known}
	if c, ok := m["confidence"].(float64); ok {
		d.Confidence = modelConfidence(c)
	}
	return d, nil
}

func rawValue(v any) (RawValue, bool) {
	switch t := v.(type) {
	case map[string]any:
		inner, ok := scalar(t["value"])
		if !ok {
			return RawValue{}, false
		}
		conf := DefaultBareConfidence
		if c, ok := t["confidence"].(float64); ok {
			conf = modelConfidence(c)
		}
		if conf == 0 {
			return RawValue{}, false
		}
		return RawValue{Value: inner, Confidence: conf}, true
	default:
		s, ok := scalar(t)
		if !ok {
			return RawValue{}, false
		}
		return RawValue{Value: s, Confidence: DefaultBareConfidence}, true
	}
}

func scalar(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		switch strings.ToLower(s) {
		case "", "null", "n/a", "na", "none", "unknown":
			return nil, false
		}
		return s, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, false
		}
		return t, true
	}
	return nil, false
}

// modelConfidence reads a 0-100 score; values already in [0,1] are kept.
func modelConfidence(c float64) float64 {
	if c > 1 {
		return document.FromPercent(c)
	}
	return document.ClampConfidence(c)
}

func keyOf(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s)))
}
