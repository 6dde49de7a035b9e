package repository

import (
	"context"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
)

// OptimizerRepository defines the interface for the cost optimizer HTTP API.
type OptimizerRepository interface {
	// Credential Operations
	CheckCredentials(ctx context.Context) (*entity.CredentialStatus, error)
	ValidateCredentials(ctx context.Context, input entity.CredentialInput) (*entity.Credentials, error)
	ClearCredentials(ctx context.Context) error

	// Catalog Operations
	ListTechniques(ctx context.Context) ([]entity.Technique, error)

	// Analysis & Optimization
	Analyze(ctx context.Context, techniqueID, region string) (*entity.AnalysisResult, error)
	Optimize(ctx context.Context, techniqueID string, req entity.OptimizeRequest) (*entity.OptimizationResult, error)

	// Health
	Health(ctx context.Context) error
}
