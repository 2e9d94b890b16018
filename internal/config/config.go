package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Credentials never appear
// here; they live in the OS keychain.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig holds durable store configuration
type DataConfig struct {
	Dir string `mapstructure:"dir"` // Directory for the bolt database
}

// ManifestConfig holds public-instance manifest configuration
type ManifestConfig struct {
	URL     string `mapstructure:"url"`     // Manifest endpoint
	Country string `mapstructure:"country"` // Country of public instances; empty disables them
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultManifestURL is the instance directory consulted when a public
// instances country is configured.
const DefaultManifestURL = "https://instances.tubularapp.dev/manifest.json"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: defaultDataPath(),
		},
		Manifest: ManifestConfig{
			URL:     DefaultManifestURL,
			Country: "",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "tubular")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tubular")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tubular", "tubular.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tubular", "tubular.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tubular")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tubular")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("TUBULAR")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names
	viper.Set("data.dir", cfg.Data.Dir)
	viper.Set("manifest.url", cfg.Manifest.URL)
	viper.Set("manifest.country", cfg.Manifest.Country)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
