package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HOST", "PORT",
	"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_VERSION",
	"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME",
	"PROMPT_PATH", "RELAY_TOKEN_SECRET", "RATE_LIMIT_PER_MINUTE",
	"ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		envVars        map[string]string
		wantConfigured bool
		check          func(t *testing.T, cfg *Config)
	}{
		{
			name: "all upstream variables set",
			envVars: map[string]string{
				"AZURE_OPENAI_API_KEY":         "secret-key",
				"AZURE_OPENAI_ENDPOINT":        "https://example.openai.azure.com",
				"AZURE_OPENAI_DEPLOYMENT_NAME": "gpt-4o",
				"AZURE_OPENAI_API_VERSION":     "2024-06-01",
				"PORT":                         "9000",
			},
			wantConfigured: true,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "2024-06-01", cfg.APIVersion)
				assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
			},
		},
		{
			name:           "defaults",
			envVars:        map[string]string{},
			wantConfigured: false,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
				assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
				assert.Equal(t, DefaultPromptPath, cfg.PromptPath)
				assert.Equal(t, 30, cfg.RateLimitPerMinute)
				assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
				assert.Empty(t, cfg.TokenSecret)
			},
		},
		{
			name: "missing endpoint",
			envVars: map[string]string{
				"AZURE_OPENAI_API_KEY":         "secret-key",
				"AZURE_OPENAI_DEPLOYMENT_NAME": "gpt-4o",
			},
			wantConfigured: false,
		},
		{
			name: "origins and rate limit",
			envVars: map[string]string{
				"ALLOWED_ORIGINS":       "http://a.test, http://b.test,",
				"RATE_LIMIT_PER_MINUTE": "0",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
				assert.Equal(t, 0, cfg.RateLimitPerMinute)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := Load()
			assert.Equal(t, tt.wantConfigured, cfg.UpstreamConfigured())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadEnvFileFromParent(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	child := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(child, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("AZURE_OPENAI_DEPLOYMENT_NAME=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(child))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	LoadEnvFile()

	assert.Equal(t, "from-dotenv", os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"))
}
