// Package config provides YAML-based configuration for the photo diary server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadSize is the per-file upload limit (25 MiB).
const DefaultMaxUploadSize int64 = 25 << 20

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Upload   UploadConfig   `yaml:"upload"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int    `yaml:"port" validate:"min=1,max=65535"`
	BindAddress          string `yaml:"bind_address"`
	ReadTimeout          int    `yaml:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeout         int    `yaml:"write_timeout_seconds" validate:"gte=0"`
	IdleTimeout          int    `yaml:"idle_timeout_seconds" validate:"gte=0"`
	EnableCORS           bool   `yaml:"enable_cors"`
	AllowOrigins         string `yaml:"allow_origins"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `yaml:"data_directory" validate:"required"`
	UploadsDirectory string `yaml:"uploads_directory" validate:"required"`
	RecordsFile      string `yaml:"records_file" validate:"required"`
	StaticDirectory  string `yaml:"static_directory"`
}

// UploadConfig controls the upload routes.
type UploadConfig struct {
	// Enabled registers the upload routes at all.
	Enabled       bool  `yaml:"enabled"`
	MaxUploadSize int64 `yaml:"max_upload_size" validate:"gt=0"`
	// PublicRequiresAuth guards POST /upload with the admin secret. Setting it
	// false restores the legacy open upload route.
	PublicRequiresAuth bool `yaml:"public_requires_auth"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AdminSecret string `yaml:"admin_secret"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=auto json text"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 3000,
			BindAddress:          "0.0.0.0",
			ReadTimeout:          30,
			WriteTimeout:         60,
			IdleTimeout:          120,
			EnableCORS:           true,
			AllowOrigins:         "*",
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			RecordsFile:      "photos.json",
		},
		Upload: UploadConfig{
			Enabled:            true,
			MaxUploadSize:      DefaultMaxUploadSize,
			PublicRequiresAuth: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is created
// with defaults. Variables from a .env file in the working directory are
// loaded before environment overrides are applied.
func LoadConfig(configPath string) (*AppConfig, error) {
	return load(configPath, true)
}

// ReadConfig is LoadConfig without side effects: a missing file yields the
// defaults and nothing is written.
func ReadConfig(configPath string) (*AppConfig, error) {
	return load(configPath, false)
}

func load(configPath string, writeDefaults bool) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if writeDefaults {
			if err := config.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to a YAML file.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Photo diary server configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		c.Server.BindAddress = addr
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if uploadsDir := os.Getenv("UPLOADS_DIR"); uploadsDir != "" {
		c.Storage.UploadsDirectory = uploadsDir
	}

	// ADMIN_TOKEN is the older name
	if secret := os.Getenv("ADMIN_TOKEN"); secret != "" {
		c.Security.AdminSecret = secret
	}
	if secret := os.Getenv("ADMIN_SECRET"); secret != "" {
		c.Security.AdminSecret = secret
	}

	if v := os.Getenv("PUBLIC_UPLOAD_REQUIRES_AUTH"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Upload.PublicRequiresAuth = b
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(configDir, c.Storage.UploadsDirectory)
	}
	if c.Storage.StaticDirectory != "" && !filepath.IsAbs(c.Storage.StaticDirectory) {
		c.Storage.StaticDirectory = filepath.Join(configDir, c.Storage.StaticDirectory)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetRecordsPath returns the path of the JSON records file. A relative
// records_file is placed in the data directory.
func (c *AppConfig) GetRecordsPath() string {
	if filepath.IsAbs(c.Storage.RecordsFile) {
		return c.Storage.RecordsFile
	}
	return filepath.Join(c.Storage.DataDirectory, c.Storage.RecordsFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetAllowOrigins splits the comma separated origin list, defaulting to "*".
func (c *AppConfig) GetAllowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
