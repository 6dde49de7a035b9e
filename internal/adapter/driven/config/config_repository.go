package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile aponta para um arquivo de configuração quando --config-file não é usado.
const EnvConfigFile = "AWS_OPTIMIZER_CONFIG"

var defaultNames = []string{"aws-optimizer.toml", "aws-optimizer.yaml", "aws-optimizer.yml", "aws-optimizer.json"}

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	searchDirs []string
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
// Sem diretórios, procura no diretório atual e em ~/.config/aws-optimizer.
func NewConfigRepository(searchDirs ...string) repository.ConfigRepository {
	if len(searchDirs) == 0 {
		searchDirs = []string{"."}
		if home, err := os.UserHomeDir(); err == nil {
			searchDirs = append(searchDirs, filepath.Join(home, ".config", "aws-optimizer"))
		}
	}
	return &ConfigRepositoryImpl{searchDirs: searchDirs}
}

// FindConfigFile resolve o arquivo padrão: a variável de ambiente primeiro,
// depois os nomes conhecidos em cada diretório de busca.
func (r *ConfigRepositoryImpl) FindConfigFile() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	for _, dir := range r.searchDirs {
		for _, name := range defaultNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config types.Config
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".toml":
		err = toml.Unmarshal(fileData, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(fileData, &config)
	case ".json":
		err = json.Unmarshal(fileData, &config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing %s file: %w", formatName(filePath), err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return &config, nil
}

func formatName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "TOML"
	case ".json":
		return "JSON"
	default:
		return "YAML"
	}
}

// validate normaliza os tipos de relatório e rejeita valores sem sentido.
func validate(c *types.Config) error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	for i, t := range c.ReportType {
		t = strings.ToLower(strings.TrimSpace(t))
		if !slices.Contains(types.SupportedReportTypes, t) {
			return fmt.Errorf("%w: %q", types.ErrUnsupportedReportType, t)
		}
		c.ReportType[i] = t
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}
