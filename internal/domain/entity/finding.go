package entity

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Finding is one resource flagged by an analysis run.
type Finding struct {
	ResourceID       string          `json:"resource_id"`
	ResourceType     string          `json:"resource_type"`
	Details          json.RawMessage `json:"details"`
	EstimatedSavings float64         `json:"estimated_savings"`
	Timestamp        string          `json:"timestamp,omitempty"`
}

// DetailPair is a single key/value entry of Finding.Details.
type DetailPair struct {
	Key   string
	Value string
}

// DetailPairs lists the details in the order the backend authored them.
// Nested objects and arrays are rendered as compact JSON.
func (f Finding) DetailPairs() []DetailPair {
	if len(f.Details) == 0 {
		return nil
	}
	var pairs []DetailPair
	gjson.ParseBytes(f.Details).ForEach(func(key, value gjson.Result) bool {
		v := value.String()
		if value.IsObject() || value.IsArray() {
			v = compactJSON(value.Raw)
		}
		pairs = append(pairs, DetailPair{Key: key.String(), Value: v})
		return true
	})
	return pairs
}

// DetailsJSON returns the details as compact JSON, "{}" when absent.
func (f Finding) DetailsJSON() string {
	if len(f.Details) == 0 || string(f.Details) == "null" {
		return "{}"
	}
	return compactJSON(string(f.Details))
}

func compactJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}

// AnalysisResult is the outcome of POST /analyze/{technique}, enriched with the
// technique it was requested for and, after an optimization, its results.
type AnalysisResult struct {
	Technique           Technique           `json:"technique"`
	Count               int                 `json:"count"`
	TotalMonthlySavings float64             `json:"total_monthly_savings"`
	Findings            []Finding           `json:"findings"`
	OptimizationResults *OptimizationResult `json:"optimization_results,omitempty"`
}

// ResourceIDs returns the ids of all findings, in order.
func (r *AnalysisResult) ResourceIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		ids = append(ids, f.ResourceID)
	}
	return ids
}

// HasFindings reports whether there is anything to select or export.
func (r *AnalysisResult) HasFindings() bool {
	return r != nil && len(r.Findings) > 0
}
