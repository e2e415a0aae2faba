// Package document holds the types every provider produces: confidence-scored
// fields, the per-type extraction variants and the uniform Result.
package document

import (
	"encoding/json"
	"math"
)

// Field is one extracted value with a confidence in [0,1]. Value is nil, a
// string or a float64; it is nil exactly when Confidence is zero.
type Field struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
	RawText    string  `json:"rawText,omitempty"`
}

// Empty is the unset field.
func Empty() Field { return Field{} }

// Text builds a string field; blank values yield Empty.
func Text(v string, confidence float64) Field {
	if v == "" {
		return Empty()
	}
	return newField(v, confidence)
}

// Number builds a numeric field.
func Number(v float64, confidence float64) Field {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Empty()
	}
	return newField(v, confidence)
}

func newField(v any, confidence float64) Field {
	c := ClampConfidence(confidence)
	if c == 0 {
		return Empty()
	}
	return Field{Value: v, Confidence: c}
}

// WithRaw attaches the matched source text.
func (f Field) WithRaw(raw string) Field {
	if f.IsSet() {
		f.RawText = raw
	}
	return f
}

// IsSet reports whether the field carries a value.
func (f Field) IsSet() bool {
	return f.Value != nil && f.Confidence > 0
}

// String returns the value as text, or "" when unset or numeric.
func (f Field) String() string {
	s, _ := f.Value.(string)
	return s
}

// Float returns the numeric value.
func (f Field) Float() (float64, bool) {
	v, ok := f.Value.(float64)
	return v, ok
}

// UnmarshalJSON keeps the value/confidence invariant for decoded fields.
func (f *Field) UnmarshalJSON(b []byte) error {
	var raw struct {
		Value      any     `json:"value"`
		Confidence float64 `json:"confidence"`
		RawText    string  `json:"rawText"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.Value.(type) {
	case string:
		*f = Text(v, raw.Confidence)
	case float64:
		*f = Number(v, raw.Confidence)
	default:
		*f = Empty()
	}
	*f = f.WithRaw(raw.RawText)
	return nil
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// FromPercent converts a 0–100 confidence read from an external engine.
func FromPercent(p float64) float64 {
	return ClampConfidence(p / 100)
}
