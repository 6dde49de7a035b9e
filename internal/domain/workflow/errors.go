package workflow

import "errors"

var (
	ErrEmptySelection  = errors.New("please select resources to optimize")
	ErrNoFindings      = errors.New("no findings to act on")
	ErrNoAnalysis      = errors.New("no analysis loaded")
	ErrNotLoggedIn     = errors.New("no valid AWS credentials, please log in first")
	ErrCallPending     = errors.New("a request of this kind is already in progress")
	ErrStaleResult     = errors.New("result discarded: the session moved on")
	ErrInvalidState    = errors.New("action not allowed in the current state")
	ErrUnknownResource = errors.New("resource is not part of the current findings")
)
