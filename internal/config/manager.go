package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/interfaces"
	"fabric-desk/internal/logging"
)

// EnvConfigDir overrides the tool configuration directory when it names an
// existing directory.
const EnvConfigDir = "FABRIC_CONFIG_DIR"

// Output formats accepted by the output key.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// Manager implements the ConfigManager interface
type Manager struct {
	v     *viper.Viper
	flags map[string]interface{} // Store flag values for precedence
}

var _ interfaces.ConfigManager = (*Manager)(nil)

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("FABRICDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	return &Manager{
		v:     v,
		flags: make(map[string]interface{}),
	}
}

// SetConfigPath sets the configuration file path
func (m *Manager) SetConfigPath(path string) {
	if path != "" {
		m.v.SetConfigFile(expandPath(path))
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_dir", "~/.config/fabric")
	v.SetDefault("tool_path", "")
	v.SetDefault("tool_timeout", "0s")
	v.SetDefault("log_level", "warn")
	v.SetDefault("output", OutputTable)
	v.SetDefault("editor", "")
}

// DefaultConfigPath returns ~/.config/fabricdesk/config.toml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fabricdesk", "config.toml"), nil
}

// Load loads configuration from the specified path. A missing file is not an
// error; defaults and environment apply.
func (m *Manager) Load(path string) (*interfaces.Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	path = expandPath(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m.getConfigFromViper(), nil
	}

	m.SetConfigPath(path)
	if err := m.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return m.getConfigFromViper(), nil
}

// SetFlag sets a flag value for precedence resolution
func (m *Manager) SetFlag(key string, value interface{}) {
	m.flags[key] = value
}

// Resolve applies precedence rules (flags > env > config > defaults)
func (m *Manager) Resolve() (*interfaces.Config, error) {
	config := m.getConfigFromViper()
	m.applyFlagOverrides(config)
	return config, nil
}

func (m *Manager) stringFlag(key string) (string, bool) {
	val, exists := m.flags[key]
	if !exists || val == nil {
		return "", false
	}
	str, ok := val.(string)
	return str, ok && str != ""
}

func (m *Manager) applyFlagOverrides(config *interfaces.Config) {
	if str, ok := m.stringFlag("config_dir"); ok {
		config.ConfigDir = expandPath(str)
	}
	if str, ok := m.stringFlag("tool_path"); ok {
		config.ToolPath = expandPath(str)
	}
	if str, ok := m.stringFlag("log_level"); ok {
		config.LogLevel = str
	}
	if str, ok := m.stringFlag("output"); ok {
		config.Output = str
	}
	if str, ok := m.stringFlag("editor"); ok {
		config.Editor = str
	}
	if val, exists := m.flags["tool_timeout"]; exists {
		if d, ok := val.(time.Duration); ok && d > 0 {
			config.ToolTimeout = d
		}
	}
}

// Validate validates the configuration values
func (m *Manager) Validate(config *interfaces.Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}

	switch config.Output {
	case OutputTable, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("invalid output: %s (must be 'table', 'yaml' or 'json')", config.Output)
	}

	if config.ToolTimeout < 0 {
		return fmt.Errorf("invalid tool_timeout: %s (must not be negative)", config.ToolTimeout)
	}

	return nil
}

// getConfigFromViper converts viper configuration to Config struct
// This handles env > config > defaults precedence (flags are applied separately)
func (m *Manager) getConfigFromViper() *interfaces.Config {
	return &interfaces.Config{
		ConfigDir:   expandPath(m.v.GetString("config_dir")),
		ToolPath:    expandPath(m.v.GetString("tool_path")),
		ToolTimeout: m.v.GetDuration("tool_timeout"),
		LogLevel:    m.v.GetString("log_level"),
		Output:      m.v.GetString("output"),
		Editor:      m.v.GetString("editor"),
	}
}

// ResolveToolConfigDir picks the tool configuration directory: the
// FABRIC_CONFIG_DIR override when it exists, then configured, then
// ~/.config/fabric. The chosen directory is created if missing.
func ResolveToolConfigDir(configured string) (string, error) {
	return resolveToolConfigDir(configured, os.LookupEnv, os.UserHomeDir)
}

func resolveToolConfigDir(configured string, lookupEnv func(string) (string, bool), homeDir func() (string, error)) (string, error) {
	if dir, ok := lookupEnv(EnvConfigDir); ok && dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	dir := configured
	if dir == "" {
		dir = "~/.config/fabric"
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := homeDir()
		if err == nil && home == "" {
			err = errors.New("empty home directory")
		}
		if err != nil {
			return "", apperr.IO("could not determine home directory", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.IO(fmt.Sprintf("could not create config directory %s", dir), err)
	}
	return dir, nil
}

// expandPath expands ~ to user home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path // Return original path if we can't get home dir
	}

	return filepath.Join(homeDir, path[2:])
}
