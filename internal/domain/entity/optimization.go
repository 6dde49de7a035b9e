package entity

// Status values reported per resource by the optimize endpoint.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// OptimizeRequest is the body of POST /optimize/{technique}.
type OptimizeRequest struct {
	ResourceIDs []string `json:"resource_ids"`
	DryRun      bool     `json:"dry_run"`
	Region      string   `json:"region"`
}

// OptimizationSummary counts the per-resource outcomes.
type OptimizationSummary struct {
	Total   int `json:"total,omitempty"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ResourceOutcome is the result of optimizing a single resource.
type ResourceOutcome struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Succeeded reports whether the backend marked the resource as done.
func (o ResourceOutcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Text returns the message, falling back to the error.
func (o ResourceOutcome) Text() string {
	if o.Message != "" {
		return o.Message
	}
	return o.Error
}

// OptimizationResult is the outcome of POST /optimize/{technique}.
type OptimizationResult struct {
	Technique string              `json:"technique,omitempty"`
	DryRun    bool                `json:"dry_run"`
	Summary   OptimizationSummary `json:"summary"`
	Results   []ResourceOutcome   `json:"results"`
}
