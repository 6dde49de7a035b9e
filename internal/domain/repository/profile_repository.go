package repository

import (
	"context"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
)

// ProfileRepository reads credentials from the local AWS configuration so
// they can be submitted without typing them.
type ProfileRepository interface {
	GetAWSProfiles() []string
	LoadCredentials(ctx context.Context, profile string) (entity.CredentialInput, error)
}
