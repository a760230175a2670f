package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct{}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{}
}

// decoders mapeia a extensão do arquivo para o formato.
var decoders = map[string]struct {
	name      string
	unmarshal func([]byte, interface{}) error
}{
	".toml": {"TOML", toml.Unmarshal},
	".yaml": {"YAML", yaml.Unmarshal},
	".yml":  {"YAML", yaml.Unmarshal},
	".json": {"JSON", json.Unmarshal},
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
// ${VAR} references are expanded from the environment before parsing and
// fields the file leaves unset keep their defaults.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	decoder, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

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

	cfg := Default()
	if err := decoder.unmarshal([]byte(os.ExpandEnv(string(fileData))), cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s file: %w", decoder.name, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return cfg, nil
}

// Validate checks the values the client cannot run without.
func Validate(cfg *types.Config) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", cfg.APIURL)
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	switch cfg.TokenStore.Driver {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("token_store.driver must be file or sqlite, got %q", cfg.TokenStore.Driver)
	}
	return nil
}
