package repository

import (
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration files.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
	// FindConfigFile returns the first default config file that exists, or "".
	FindConfigFile() string
}
