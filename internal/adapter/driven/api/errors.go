package api

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Messages used when the API sends no "error" field.
const (
	msgCheckFailed      = "Failed to check credentials"
	msgValidateFailed   = "Failed to validate credentials"
	msgClearFailed      = "Failed to clear credentials"
	msgTechniquesFailed = "Failed to fetch techniques"
	msgAnalyzeFailed    = "Failed to analyze resources"
	msgOptimizeFailed   = "Failed to optimize resources"
	msgHealthFailed     = "Cost optimizer API is not reachable"
)

// APIError is a failed call to the optimizer API. Message is meant for the
// user: the API's own "error" text when it sent one, a generic text otherwise.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	RequestID  string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Detail includes operation, status and cause, for logs.
func (e *APIError) Detail() string {
	s := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.StatusCode != 0 {
		s += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		s += fmt.Sprintf(": %v", e.Err)
	}
	return s
}

// errorMessage extracts the "error" field of a JSON body.
func errorMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return msg
	}
	return fallback
}

// embeddedError finds an {"error": ...} object where a list was expected,
// which the API sends when a scan fails after the request was accepted.
func embeddedError(body []byte, field string) string {
	v := gjson.GetBytes(body, field)
	if !v.IsObject() {
		return ""
	}
	return v.Get("error").String()
}
