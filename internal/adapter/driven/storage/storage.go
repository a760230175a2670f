package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// TokenKey is the single key the session token is stored under.
const TokenKey = "token"

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// DefaultPath returns the store location under the user config directory.
func DefaultPath(driver string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "storage.json"
	if driver == DriverSQLite {
		name = "storage.db"
	}
	return filepath.Join(dir, "metrics-dashboard", name)
}

// NewTokenRepository cria o TokenRepository configurado.
func NewTokenRepository(cfg types.TokenStoreConfig) (repository.TokenRepository, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFile
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath(driver)
	}

	switch driver {
	case DriverFile:
		return NewFileStore(path), nil
	case DriverSQLite:
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported token store driver: %s", driver)
	}
}
