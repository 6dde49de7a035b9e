package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pterm/pterm"
)

// DefaultBaseURL is where the optimizer API listens by default.
const DefaultBaseURL = "http://localhost:5000/api"

const (
	defaultTimeout  = 5 * time.Minute
	maxBodySize     = 32 << 20
	requestIDHeader = "X-Request-ID"
)

// OptimizerRepositoryImpl implements OptimizerRepository over HTTP/JSON.
type OptimizerRepositoryImpl struct {
	baseURL string
	client  *http.Client
	logger  *pterm.Logger
}

// Option configures the repository.
type Option func(*OptimizerRepositoryImpl)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *OptimizerRepositoryImpl) { r.client = c }
}

// WithTimeout bounds every call, analysis scans included.
func WithTimeout(d time.Duration) Option {
	return func(r *OptimizerRepositoryImpl) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *pterm.Logger) Option {
	return func(r *OptimizerRepositoryImpl) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewOptimizerRepository creates a client for the API at baseURL.
func NewOptimizerRepository(baseURL string, opts ...Option) repository.OptimizerRepository {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = defaultTimeout
	r := &OptimizerRepositoryImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// response is a raw answer of the API.
type response struct {
	status    int
	body      []byte
	requestID string
}

// send performs one request. Transport failures come back as *APIError with
// the fallback message.
func (r *OptimizerRepositoryImpl) send(ctx context.Context, op, method, path string, payload interface{}, fallback string) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &APIError{Op: op, Message: fallback, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, &APIError{Op: op, Message: fallback, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("request failed", r.logger.Args("op", op, "path", path, "request_id", requestID, "error", err))
		return nil, &APIError{Op: op, Message: fallback, RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: fallback, RequestID: requestID, Err: err}
	}

	r.logger.Debug("api call", r.logger.Args(
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond),
	))

	return &response{status: resp.StatusCode, body: data, requestID: requestID}, nil
}

// call sends a request and decodes a successful answer into out.
func (r *OptimizerRepositoryImpl) call(ctx context.Context, op, method, path string, payload, out interface{}, fallback string) (*response, error) {
	resp, err := r.send(ctx, op, method, path, payload, fallback)
	if err != nil {
		return nil, err
	}
	if resp.status >= http.StatusBadRequest {
		return resp, &APIError{Op: op, StatusCode: resp.status, Message: errorMessage(resp.body, fallback), RequestID: resp.requestID}
	}
	if out != nil {
		if err := json.Unmarshal(resp.body, out); err != nil {
			msg := errorMessage(resp.body, fallback)
			return resp, &APIError{Op: op, StatusCode: resp.status, Message: msg, RequestID: resp.requestID, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return resp, nil
}

// CheckCredentials asks whether the API holds valid saved credentials.
// "No credentials saved" (404) is an answer, not an error.
func (r *OptimizerRepositoryImpl) CheckCredentials(ctx context.Context) (*entity.CredentialStatus, error) {
	resp, err := r.send(ctx, "check credentials", http.MethodGet, "/credentials/check", nil, msgCheckFailed)
	if err != nil {
		return nil, err
	}

	var status entity.CredentialStatus
	if resp.status >= http.StatusBadRequest && resp.status != http.StatusNotFound {
		return nil, &APIError{Op: "check credentials", StatusCode: resp.status, Message: errorMessage(resp.body, msgCheckFailed), RequestID: resp.requestID}
	}
	if err := json.Unmarshal(resp.body, &status); err != nil {
		return nil, &APIError{Op: "check credentials", StatusCode: resp.status, Message: msgCheckFailed, RequestID: resp.requestID, Err: err}
	}
	if resp.status == http.StatusNotFound {
		status.Valid = false
	}
	return &status, nil
}

// ValidateCredentials submits the keys; the API validates and keeps them.
func (r *OptimizerRepositoryImpl) ValidateCredentials(ctx context.Context, input entity.CredentialInput) (*entity.Credentials, error) {
	var creds entity.Credentials
	resp, err := r.call(ctx, "validate credentials", http.MethodPost, "/credentials/validate", input, &creds, msgValidateFailed)
	if err != nil {
		return nil, err
	}
	if !creds.Valid {
		return nil, &APIError{Op: "validate credentials", StatusCode: resp.status, Message: errorMessage(resp.body, msgValidateFailed), RequestID: resp.requestID}
	}
	creds.Region = input.Region
	return &creds, nil
}

// ClearCredentials makes the API forget the saved credentials.
func (r *OptimizerRepositoryImpl) ClearCredentials(ctx context.Context) error {
	_, err := r.call(ctx, "clear credentials", http.MethodPost, "/credentials/clear", nil, nil, msgClearFailed)
	return err
}

// ListTechniques fetches the catalog, in the order the API lists it.
func (r *OptimizerRepositoryImpl) ListTechniques(ctx context.Context) ([]entity.Technique, error) {
	var techniques []entity.Technique
	if _, err := r.call(ctx, "list techniques", http.MethodGet, "/techniques", nil, &techniques, msgTechniquesFailed); err != nil {
		return nil, err
	}
	return techniques, nil
}

type analyzeRequest struct {
	Region string `json:"region"`
}

type analyzeResponse struct {
	Count               int              `json:"count"`
	TotalMonthlySavings float64          `json:"total_monthly_savings"`
	Findings            []entity.Finding `json:"findings"`
}

// Analyze runs a technique's scan on the API side.
func (r *OptimizerRepositoryImpl) Analyze(ctx context.Context, techniqueID, region string) (*entity.AnalysisResult, error) {
	op := "analyze " + techniqueID
	path := "/analyze/" + url.PathEscape(techniqueID)

	resp, err := r.send(ctx, op, http.MethodPost, path, analyzeRequest{Region: region}, msgAnalyzeFailed)
	if err != nil {
		return nil, err
	}
	if msg := embeddedError(resp.body, "findings"); msg != "" && resp.status < http.StatusBadRequest {
		return nil, &APIError{Op: op, StatusCode: resp.status, Message: msg, RequestID: resp.requestID}
	}

	var out analyzeResponse
	if err := decodeResponse(op, resp, &out, msgAnalyzeFailed); err != nil {
		return nil, err
	}
	if out.Findings == nil {
		out.Findings = []entity.Finding{}
	}
	return &entity.AnalysisResult{
		Technique:           entity.Technique{ID: techniqueID},
		Count:               out.Count,
		TotalMonthlySavings: out.TotalMonthlySavings,
		Findings:            out.Findings,
	}, nil
}

// Optimize executes (or previews, when req.DryRun) the optimization of the
// given resources.
func (r *OptimizerRepositoryImpl) Optimize(ctx context.Context, techniqueID string, req entity.OptimizeRequest) (*entity.OptimizationResult, error) {
	op := "optimize " + techniqueID
	path := "/optimize/" + url.PathEscape(techniqueID)
	if req.ResourceIDs == nil {
		req.ResourceIDs = []string{}
	}

	resp, err := r.send(ctx, op, http.MethodPost, path, req, msgOptimizeFailed)
	if err != nil {
		return nil, err
	}
	if msg := embeddedError(resp.body, "results"); msg != "" && resp.status < http.StatusBadRequest {
		return nil, &APIError{Op: op, StatusCode: resp.status, Message: msg, RequestID: resp.requestID}
	}

	var out entity.OptimizationResult
	if err := decodeResponse(op, resp, &out, msgOptimizeFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the API.
func (r *OptimizerRepositoryImpl) Health(ctx context.Context) error {
	_, err := r.call(ctx, "health", http.MethodGet, "/health", nil, nil, msgHealthFailed)
	return err
}

func decodeResponse(op string, resp *response, out interface{}, fallback string) error {
	if resp.status >= http.StatusBadRequest {
		return &APIError{Op: op, StatusCode: resp.status, Message: errorMessage(resp.body, fallback), RequestID: resp.requestID}
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.status, Message: errorMessage(resp.body, fallback), RequestID: resp.requestID, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
