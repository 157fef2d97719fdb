package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
)

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Storage Defaults
	DefaultSQLiteDBPath = "database/history.db"

	// Summarizer Defaults
	DefaultSummarizerModel       = "gemini-2.0-flash-exp"
	DefaultSummarizerBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultSummarizerTimeoutSecs = 60
	DefaultSummarizerMaxChars    = 30000

	// Server Defaults
	DefaultServerListenAddr          = ":8080"
	DefaultServerReadTimeoutSecs     = 30
	DefaultServerShutdownTimeoutSecs = 10
)

// GlobalConfig aggregates all configuration sections.
type GlobalConfig struct {
	LogConfig        LogConfig        `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	StorageConfig    StorageConfig    `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	SummarizerConfig SummarizerConfig `json:"summarizer_config,omitempty" yaml:"summarizer_config,omitempty"`
	ServerConfig     ServerConfig     `json:"server_config,omitempty" yaml:"server_config,omitempty"`
}

// LogConfig defines configuration for logging.
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty"`
}

// StorageConfig defines where the history store keeps its data.
type StorageConfig struct {
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
}

// SummarizerConfig defines the AI summarization collaborator settings.
// APIKey falls back to the GEMINI_API_KEY environment variable when empty.
type SummarizerConfig struct {
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	TimeoutSecs  int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
	MaxDiffChars int    `json:"max_diff_chars,omitempty" yaml:"max_diff_chars,omitempty" validate:"omitempty,min=1"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	ListenAddr          string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	ReadTimeoutSecs     int    `json:"read_timeout_secs,omitempty" yaml:"read_timeout_secs,omitempty" validate:"omitempty,min=1"`
	ShutdownTimeoutSecs int    `json:"shutdown_timeout_secs,omitempty" yaml:"shutdown_timeout_secs,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}

func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SQLiteDBPath: DefaultSQLiteDBPath,
	}
}

func NewDefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		APIKey:       os.Getenv("GEMINI_API_KEY"),
		Model:        DefaultSummarizerModel,
		BaseURL:      DefaultSummarizerBaseURL,
		TimeoutSecs:  DefaultSummarizerTimeoutSecs,
		MaxDiffChars: DefaultSummarizerMaxChars,
	}
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:          DefaultServerListenAddr,
		ReadTimeoutSecs:     DefaultServerReadTimeoutSecs,
		ShutdownTimeoutSecs: DefaultServerShutdownTimeoutSecs,
	}
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:        NewDefaultLogConfig(),
		StorageConfig:    NewDefaultStorageConfig(),
		SummarizerConfig: NewDefaultSummarizerConfig(),
		ServerConfig:     NewDefaultServerConfig(),
	}
}

// LoadGlobalConfig loads configuration from a file or default locations.
// Supports both JSON and YAML formats; YAML is preferred when the extension
// is .yaml or .yml. A missing config file is not an error: defaults apply.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file "+filePath)
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}
