package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Download.Edition != "deutschland_full" {
		t.Errorf("Expected default edition to be deutschland_full, got %s", config.Download.Edition)
	}

	if config.Download.Issue != "today" {
		t.Errorf("Expected default issue to be today, got %s", config.Download.Issue)
	}

	if config.Download.ChunkSize != 64*1024 {
		t.Errorf("Expected default chunk size to be 65536, got %d", config.Download.ChunkSize)
	}

	if config.Output.Directory != "." {
		t.Errorf("Expected default directory to be ., got %s", config.Output.Directory)
	}

	if config.Output.AliasName != "current.pdf" {
		t.Errorf("Expected default alias to be current.pdf, got %s", config.Output.AliasName)
	}

	if config.HasCredentials() {
		t.Error("Expected default config to carry no credentials")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SZEPAPER_USERNAME", "reader")
	t.Setenv("SZEPAPER_PASSWORD", "secret")
	t.Setenv("SZEPAPER_DIRECTORY", "/tmp/sz")
	t.Setenv("SZEPAPER_EDITION", "bayern_base")
	t.Setenv("SZEPAPER_ISSUE", "2012-04-14")
	t.Setenv("SZEPAPER_CHUNK_SIZE", "8192")
	t.Setenv("SZEPAPER_TIMEOUT", "15s")
	t.Setenv("SZEPAPER_KEYRING", "TRUE")
	t.Setenv("SZEPAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "reader", config.Portal.Username)
	assert.Equal(t, "secret", config.Portal.Password)
	assert.True(t, config.Portal.UseKeyring)
	assert.Equal(t, "/tmp/sz", config.Output.Directory)
	assert.Equal(t, "bayern_base", config.Download.Edition)
	assert.Equal(t, "2012-04-14", config.Download.Issue)
	assert.Equal(t, 8192, config.Download.ChunkSize)
	assert.Equal(t, 15*time.Second, config.Download.Timeout)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.True(t, config.HasCredentials())
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Run("chunk size", func(t *testing.T) {
		t.Setenv("SZEPAPER_CHUNK_SIZE", "lots")
		assert.Error(t, DefaultConfig().LoadFromEnv())
	})

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("SZEPAPER_TIMEOUT", "soon")
		assert.Error(t, DefaultConfig().LoadFromEnv())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantError bool
	}{
		{
			name:      "defaults are valid",
			modify:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing credentials are not a config error",
			modify:    func(c *Config) { c.Portal = PortalConfig{} },
			wantError: false,
		},
		{
			name:      "zero chunk size",
			modify:    func(c *Config) { c.Download.ChunkSize = 0 },
			wantError: true,
		},
		{
			name:      "negative timeout",
			modify:    func(c *Config) { c.Download.Timeout = -time.Second },
			wantError: true,
		},
		{
			name:      "empty directory",
			modify:    func(c *Config) { c.Output.Directory = "" },
			wantError: true,
		},
		{
			name:      "alias with separator",
			modify:    func(c *Config) { c.Output.AliasName = "sub/current.pdf" },
			wantError: true,
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "chatty" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	config.MergeCommandLineFlags(map[string]interface{}{
		"username":   "flag-user",
		"password":   "flag-pass",
		"directory":  "/flag/dir",
		"edition":    "stadt_full",
		"issue":      "2012-04-14",
		"chunk-size": 4096,
		"timeout":    5 * time.Second,
		"log-level":  "info",
		"keyring":    true,
	})

	assert.Equal(t, "flag-user", config.Portal.Username)
	assert.Equal(t, "flag-pass", config.Portal.Password)
	assert.True(t, config.Portal.UseKeyring)
	assert.Equal(t, "/flag/dir", config.Output.Directory)
	assert.Equal(t, "stadt_full", config.Download.Edition)
	assert.Equal(t, "2012-04-14", config.Download.Issue)
	assert.Equal(t, 4096, config.Download.ChunkSize)
	assert.Equal(t, 5*time.Second, config.Download.Timeout)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `portal:
  username: yaml-user
output:
  directory: /srv/sz
download:
  edition: bayern_full
  chunk_size: 32768
logging:
  level: info
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(configPath))

	assert.Equal(t, "yaml-user", config.Portal.Username)
	assert.Empty(t, config.Portal.Password)
	assert.Equal(t, "/srv/sz", config.Output.Directory)
	assert.Equal(t, "bayern_full", config.Download.Edition)
	assert.Equal(t, 32768, config.Download.ChunkSize)
	assert.Equal(t, "current.pdf", config.Output.AliasName)
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("download:\n  edition: bayern_base\noutput:\n  directory: /from/file\n"), 0600))

	t.Setenv("SZEPAPER_EDITION", "stadt_base")

	config, err := Load(configPath, map[string]interface{}{"directory": "/from/flag"})
	require.NoError(t, err)

	assert.Equal(t, "stadt_base", config.Download.Edition)
	assert.Equal(t, "/from/flag", config.Output.Directory)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
