// Package config defines typed settings and their defaults.
package config

// Config is the root of the configuration file.
type Config struct {
	Strategy  string          `mapstructure:"strategy"`
	Strict    bool            `mapstructure:"strict"`
	RulesFile string          `mapstructure:"rules_file"`
	Search    SearchConfig    `mapstructure:"search"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Server    ServerConfig    `mapstructure:"server"`
	Output    OutputConfig    `mapstructure:"output"`
	History   HistoryConfig   `mapstructure:"history"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`
	// MaxUploadBytes caps the multipart body size.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	// ResultPrefix is the storage key prefix for result workbooks.
	ResultPrefix string `mapstructure:"result_prefix"`
	// Store is a local directory or s3://bucket/prefix.
	Store string `mapstructure:"store"`
}

// OutputConfig controls exported artifacts.
type OutputConfig struct {
	// Dir is a local directory or s3://bucket/prefix.
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

// HistoryConfig locates the run ledger.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// URL is s3://bucket/key or empty for the local ledger.
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Defaults.
const (
	DefaultStrategy   = "volume"
	DefaultAddr       = ":8080"
	DefaultOutputDir  = "cargoload-out"
	DefaultStoreDir   = "cargoload-results"
	DefaultUploadSize = 32 << 20
)

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Strategy:  DefaultStrategy,
		Search:    DefaultSearchConfig(),
		Optimizer: DefaultOptimizerConfig(),
		Server:    DefaultServerConfig(),
		Output:    DefaultOutputConfig(),
		History:   HistoryConfig{Enabled: true},
	}
}

// DefaultServerConfig returns default server values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           DefaultAddr,
		MaxUploadBytes: DefaultUploadSize,
		ResultPrefix:   "results",
		Store:          DefaultStoreDir,
	}
}

// DefaultOutputConfig returns default export values.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:     DefaultOutputDir,
		Formats: []string{"table"},
	}
}
