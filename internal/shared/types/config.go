package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIURL         string           `json:"api_url" yaml:"api_url" toml:"api_url"`
	TimeoutSeconds int              `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	PageSize       int              `json:"page_size" yaml:"page_size" toml:"page_size"`
	Locale         string           `json:"locale" yaml:"locale" toml:"locale"`
	Currency       string           `json:"currency" yaml:"currency" toml:"currency"`
	ReportType     []string         `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir            string           `json:"dir" yaml:"dir" toml:"dir"`
	TokenStore     TokenStoreConfig `json:"token_store" yaml:"token_store" toml:"token_store"`
	Telemetry      TelemetryConfig  `json:"telemetry" yaml:"telemetry" toml:"telemetry"`
}

// TokenStoreConfig selects where the session token is persisted.
type TokenStoreConfig struct {
	Driver string `json:"driver" yaml:"driver" toml:"driver"` // "file" or "sqlite"
	Path   string `json:"path" yaml:"path" toml:"path"`
}

// TelemetryConfig configures optional OTLP trace export.
type TelemetryConfig struct {
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	Insecure     bool   `json:"insecure" yaml:"insecure" toml:"insecure"`
}
