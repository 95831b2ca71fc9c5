package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEdition is the edition fetched when none is given
	DefaultEdition = "deutschland_full"

	// DefaultIssue selects the current day's issue
	DefaultIssue = "today"

	// DefaultChunkSize is the read size used when copying an issue to disk
	DefaultChunkSize = 64 * 1024

	// DefaultAliasName is the link kept pointing at the newest issue
	DefaultAliasName = "current.pdf"
)

// Config holds all configuration options for the e-paper downloader
type Config struct {
	// Portal account
	Portal PortalConfig `yaml:"portal" json:"portal"`

	// Where issues end up
	Output OutputConfig `yaml:"output" json:"output"`

	// What to fetch and how
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PortalConfig holds the subscriber account used to log in.
// The password is never read from or written to a config file.
type PortalConfig struct {
	Username   string `yaml:"username" json:"username"`
	Password   string `yaml:"-" json:"-"`
	UseKeyring bool   `yaml:"use_keyring" json:"use_keyring"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	AliasName string `yaml:"alias_name" json:"alias_name"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Edition   string        `yaml:"edition" json:"edition"`
	Issue     string        `yaml:"issue" json:"issue"`
	ChunkSize int           `yaml:"chunk_size" json:"chunk_size"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Directory: ".",
			AliasName: DefaultAliasName,
		},
		Download: DownloadConfig{
			Edition:   DefaultEdition,
			Issue:     DefaultIssue,
			ChunkSize: DefaultChunkSize,
			Timeout:   60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// HasCredentials reports whether both username and password are set
func (c *Config) HasCredentials() bool {
	return c.Portal.Username != "" && c.Portal.Password != ""
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("SZEPAPER_USERNAME"); username != "" {
		c.Portal.Username = username
	}
	if password := os.Getenv("SZEPAPER_PASSWORD"); password != "" {
		c.Portal.Password = password
	}
	if useKeyring := os.Getenv("SZEPAPER_KEYRING"); useKeyring != "" {
		c.Portal.UseKeyring = strings.ToLower(useKeyring) == "true"
	}

	if dir := os.Getenv("SZEPAPER_DIRECTORY"); dir != "" {
		c.Output.Directory = dir
	}
	if edition := os.Getenv("SZEPAPER_EDITION"); edition != "" {
		c.Download.Edition = edition
	}
	if issue := os.Getenv("SZEPAPER_ISSUE"); issue != "" {
		c.Download.Issue = issue
	}

	if chunk := os.Getenv("SZEPAPER_CHUNK_SIZE"); chunk != "" {
		val, err := strconv.Atoi(chunk)
		if err != nil {
			return fmt.Errorf("invalid SZEPAPER_CHUNK_SIZE %q: %w", chunk, err)
		}
		c.Download.ChunkSize = val
	}
	if timeout := os.Getenv("SZEPAPER_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SZEPAPER_TIMEOUT %q: %w", timeout, err)
		}
		c.Download.Timeout = val
	}

	if logLevel := os.Getenv("SZEPAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".szepaper.yaml",
		".szepaper.yml",
		filepath.Join(home, ".config", "szepaper", "config.yaml"),
		filepath.Join(home, ".config", "szepaper", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// Missing credentials are not an error here; the command line decides what to do.
func (c *Config) Validate() error {
	var errs []error

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.AliasName == "" {
		errs = append(errs, errors.New("alias name is required"))
	} else if strings.ContainsRune(c.Output.AliasName, os.PathSeparator) || strings.Contains(c.Output.AliasName, "/") {
		errs = append(errs, errors.New("alias name must not contain a path separator"))
	}

	if c.Download.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk size must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.Edition == "" {
		errs = append(errs, errors.New("edition is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in flags are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Portal.Username = username
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Portal.Password = password
	}
	if useKeyring, ok := flags["keyring"].(bool); ok {
		c.Portal.UseKeyring = useKeyring
	}
	if dir, ok := flags["directory"].(string); ok && dir != "" {
		c.Output.Directory = dir
	}
	if edition, ok := flags["edition"].(string); ok && edition != "" {
		c.Download.Edition = edition
	}
	if issue, ok := flags["issue"].(string); ok && issue != "" {
		c.Download.Issue = issue
	}
	if chunk, ok := flags["chunk-size"].(int); ok {
		c.Download.ChunkSize = chunk
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok {
		c.Download.Timeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".szepaper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
