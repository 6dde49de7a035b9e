package aws

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
)

var profileRegex = regexp.MustCompile(`(?m)^\s*\[([^]]+)\]`)

// ProfileRepositoryImpl lê perfis e chaves da configuração local da AWS CLI.
type ProfileRepositoryImpl struct {
	cfgCache map[string]aws.Config
	mu       sync.Mutex
}

// NewProfileRepository cria uma nova implementação do ProfileRepository.
func NewProfileRepository() repository.ProfileRepository {
	return &ProfileRepositoryImpl{
		cfgCache: make(map[string]aws.Config),
	}
}

func (r *ProfileRepositoryImpl) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[profile]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	r.cfgCache[profile] = cfg
	return cfg, nil
}

// GetAWSProfiles lista os perfis dos arquivos credentials e config, ordenados.
// AWS_SHARED_CREDENTIALS_FILE e AWS_CONFIG_FILE são respeitadas.
func (r *ProfileRepositoryImpl) GetAWSProfiles() []string {
	profiles := make(map[string]bool)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		for _, match := range profileRegex.FindAllStringSubmatch(string(content), -1) {
			name := strings.TrimSpace(match[1])
			if isConfig {
				// Seções como [sso-session x] ou [services y] não são perfis
				if strings.HasPrefix(name, "profile ") {
					name = strings.TrimSpace(strings.TrimPrefix(name, "profile "))
				} else if name != "default" {
					continue
				}
			}
			profiles[name] = true
		}
	}

	parseFile(credentialsFile(), false)
	parseFile(configFile(), true)

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}

// LoadCredentials resolve as chaves e a região de um perfil pela cadeia do SDK,
// o que inclui credential_process, SSO e assume-role.
func (r *ProfileRepositoryImpl) LoadCredentials(ctx context.Context, profile string) (entity.CredentialInput, error) {
	if profile == "" {
		profile = "default"
	}

	available := r.GetAWSProfiles()
	if len(available) == 0 {
		return entity.CredentialInput{}, types.ErrNoProfilesFound
	}
	if !slices.Contains(available, profile) {
		return entity.CredentialInput{}, fmt.Errorf("%s: %w", profile, types.ErrProfileNotFound)
	}

	cfg, err := r.getAWSConfig(ctx, profile)
	if err != nil {
		return entity.CredentialInput{}, err
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return entity.CredentialInput{}, fmt.Errorf("failed to retrieve credentials for profile %s: %w", profile, err)
	}

	return entity.CredentialInput{
		AccessKey: creds.AccessKeyID,
		SecretKey: creds.SecretAccessKey,
		Region:    cfg.Region,
	}, nil
}

func credentialsFile() string {
	if p := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); p != "" {
		return p
	}
	return config.DefaultSharedCredentialsFilename()
}

func configFile() string {
	if p := os.Getenv("AWS_CONFIG_FILE"); p != "" {
		return p
	}
	return config.DefaultSharedConfigFilename()
}
