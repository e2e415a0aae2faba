// Package confidence aggregates per-field confidences into a document score.
package confidence

import (
	"github.com/joseph-ayodele/docextract/internal/core/document"
)

// Weights assigns an importance to each field name; names not listed use Default.
type Weights struct {
	Default float64
	ByField map[string]float64
}

func (w Weights) weight(name string) float64 {
	if v, ok := w.ByField[name]; ok {
		return v
	}
	return w.Default
}

// Calculate returns the weight-normalized mean of the clamped field
// confidences, or 0 for empty input (or when every weight is zero).
func Calculate(fieldConfidences map[string]float64, w Weights) float64 {
	if len(fieldConfidences) == 0 {
		return 0
	}
	var sum, total float64
	for name, c := range fieldConfidences {
		wt := w.weight(name)
		if wt <= 0 {
			continue
		}
		sum += document.ClampConfidence(c) * wt
		total += wt
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// ForExtraction scores the set fields of ex with the weight table of its type.
func ForExtraction(ex *document.Extraction) float64 {
	if ex == nil {
		return 0
	}
	scores := make(map[string]float64)
	for name, f := range ex.Fields() {
		if f.IsSet() {
			scores[name] = f.Confidence
		}
	}
	return Calculate(scores, WeightsFor(ex.Type))
}

// Level buckets a score for display.
func Level(score float64) string {
	switch {
	case score >= 0.85:
		return "high"
	case score >= 0.60:
		return "medium"
	default:
		return "low"
	}
}
