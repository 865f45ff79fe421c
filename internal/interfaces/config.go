package interfaces

import "time"

// Config represents the application configuration
type Config struct {
	ConfigDir   string        `toml:"config_dir" yaml:"config_dir" json:"config_dir"`
	ToolPath    string        `toml:"tool_path" yaml:"tool_path" json:"tool_path"`
	ToolTimeout time.Duration `toml:"tool_timeout" yaml:"tool_timeout" json:"tool_timeout"`
	LogLevel    string        `toml:"log_level" yaml:"log_level" json:"log_level"`
	Output      string        `toml:"output" yaml:"output" json:"output"`
	Editor      string        `toml:"editor" yaml:"editor" json:"editor"`
}

// ConfigManager handles configuration loading and resolution
type ConfigManager interface {
	// Load loads configuration from the specified path
	Load(path string) (*Config, error)

	// Resolve applies precedence rules (flags > env > config > defaults)
	Resolve() (*Config, error)

	// Validate validates the configuration values
	Validate(config *Config) error
}
