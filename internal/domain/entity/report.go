package entity

import "time"

// FindingsReport is the exported view of an analysis.
// Field order is the key order of the JSON export.
type FindingsReport struct {
	Technique           string    `json:"technique"`
	Findings            []Finding `json:"findings"`
	TotalMonthlySavings float64   `json:"total_monthly_savings"`
	ExportedAt          string    `json:"exported_at"`

	TechniqueID string `json:"-"`
	Region      string `json:"-"`
}

// ExportTimeLayout is RFC 3339 with milliseconds, always rendered in UTC.
const ExportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NewFindingsReport snapshots an analysis for export.
func NewFindingsReport(result *AnalysisResult, region string, now time.Time) FindingsReport {
	findings := make([]Finding, len(result.Findings))
	copy(findings, result.Findings)
	return FindingsReport{
		Technique:           result.Technique.Name,
		Findings:            findings,
		TotalMonthlySavings: result.TotalMonthlySavings,
		ExportedAt:          now.UTC().Format(ExportTimeLayout),
		TechniqueID:         result.Technique.ID,
		Region:              region,
	}
}
