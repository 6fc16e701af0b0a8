package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "empty", cfg.Enrichment.FillPolicy)
	assert.Equal(t, 8*time.Second, cfg.Enrichment.Timeout)
	assert.Equal(t, []string{"https://es.wikipedia.org", "https://en.wikipedia.org"}, cfg.Enrichment.WikipediaHosts)
	assert.False(t, cfg.Storage.S3Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: redis
  redis_url: redis://cache:6379/1
enrichment:
  fill_policy: heuristic
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Database.Driver)
	assert.Equal(t, "redis://cache:6379/1", cfg.Database.RedisURL)
	assert.Equal(t, "heuristic", cfg.Enrichment.FillPolicy)
	assert.Equal(t, 3*time.Second, cfg.Enrichment.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_BUCKET_IMAGES", "portraits")
	t.Setenv("CLOUDFRONT_DOMAIN", "https://cdn.example.com")
	t.Setenv("ENRICH_FILL_POLICY", "heuristic")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.Storage.S3Enabled)
	assert.Equal(t, "portraits", cfg.Storage.Bucket)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.CDNDomain)
	assert.Equal(t, "heuristic", cfg.Enrichment.FillPolicy)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid port"},
		{"bad mode", func(c *Config) { c.Server.Mode = "verbose" }, "invalid server mode"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mongo" }, "invalid database driver"},
		{"empty sqlite path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"bad fill policy", func(c *Config) { c.Enrichment.FillPolicy = "always" }, "invalid fill policy"},
		{"s3 without bucket", func(c *Config) {
			c.Storage.S3Enabled = true
			c.Storage.Bucket = ""
		}, "storage bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
