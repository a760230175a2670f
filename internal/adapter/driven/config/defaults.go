package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultTimeoutSeconds = 30
	DefaultPageSize       = 50
	DefaultLocale         = "pt-BR"
	DefaultCurrency       = "BRL"
)

// Default returns the configuration used when no file is given.
func Default() *types.Config {
	return &types.Config{
		APIURL:         DefaultAPIURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		PageSize:       DefaultPageSize,
		Locale:         DefaultLocale,
		Currency:       DefaultCurrency,
		ReportType:     []string{"csv"},
		TokenStore:     types.TokenStoreConfig{Driver: "file"},
	}
}

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides cfg with METRICS_* and OTEL_* environment variables.
func ApplyEnv(cfg *types.Config) {
	if v := os.Getenv("METRICS_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := envInt("METRICS_TIMEOUT_SECONDS"); v > 0 {
		cfg.TimeoutSeconds = v
	}
	if v := envInt("METRICS_PAGE_SIZE"); v > 0 {
		cfg.PageSize = v
	}
	if v := os.Getenv("METRICS_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("METRICS_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("METRICS_TOKEN_STORE"); v != "" {
		cfg.TokenStore.Driver = v
	}
	if v := os.Getenv("METRICS_TOKEN_PATH"); v != "" {
		cfg.TokenStore.Path = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		cfg.Telemetry.Insecure = strings.EqualFold(v, "true")
	}
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}
