package types

import "errors"

var (
	ErrNoProfilesFound       = errors.New("no AWS profiles found. Please configure AWS CLI first")
	ErrProfileNotFound       = errors.New("profile not found in AWS configuration")
	ErrMissingKeys           = errors.New("access key and secret key are required")
	ErrUnknownTechnique      = errors.New("unknown technique")
	ErrUnsupportedReportType = errors.New("unsupported report type")
	ErrNothingSelected       = errors.New("pass --ids or --all to choose resources")
	ErrConfirmationRequired  = errors.New("live optimization needs --confirm with the technique name")
)
