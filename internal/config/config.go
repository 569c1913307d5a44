// Package config loads the relay configuration from the process environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codecounselor/pkg/utils"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const (
	// DefaultAPIVersion is used when AZURE_OPENAI_API_VERSION is unset.
	DefaultAPIVersion = "2024-02-15-preview"
	// DefaultPromptPath is the prompt resource read at startup.
	DefaultPromptPath = ".github/prompts/CompassionateTherapist.prompt.md"
	// UpstreamTimeout bounds every call to the completion provider.
	UpstreamTimeout = 30 * time.Second
)

// Config contains configuration for the relay service and its upstream
// Azure OpenAI deployment.
type Config struct {
	// Listener
	Host string
	Port string

	// Azure OpenAI
	APIKey         string
	APIVersion     string
	Endpoint       string
	DeploymentName string

	// PromptPath is the location of the therapist prompt resource
	PromptPath string

	// TokenSecret enables bearer-token auth on the relay when non-empty
	TokenSecret string
	// RateLimitPerMinute is the per-client limit on /chat; 0 disables it
	RateLimitPerMinute int
	// AllowedOrigins feeds the CORS middleware
	AllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8000"),
		APIKey:             os.Getenv("AZURE_OPENAI_API_KEY"),
		APIVersion:         getEnv("AZURE_OPENAI_API_VERSION", DefaultAPIVersion),
		Endpoint:           os.Getenv("AZURE_OPENAI_ENDPOINT"),
		DeploymentName:     os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"),
		PromptPath:         getEnv("PROMPT_PATH", DefaultPromptPath),
		TokenSecret:        os.Getenv("RELAY_TOKEN_SECRET"),
		RateLimitPerMinute: utils.GetEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:     allowedOrigins(),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

// UpstreamConfigured reports whether credential, endpoint and deployment are
// all present.
func (c *Config) UpstreamConfigured() bool {
	return c.APIKey != "" && c.Endpoint != "" && c.DeploymentName != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func allowedOrigins() []string {
	origins := utils.SplitList(getEnv("ALLOWED_ORIGINS", "*"))
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvFile loads environment variables from a .env file if present.
// It attempts to load from the current directory and parent directories
// up to the root directory. Existing variables are overridden so that the
// file is authoritative during development.
func LoadEnvFile() {
	// Try current directory first
	if err := godotenv.Overload(); err == nil {
		log.Info("Loaded environment variables from .env file in current directory")
		return
	}

	workDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not determine current directory: %v", err)
		return
	}

	for dir := filepath.Dir(workDir); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Overload(envPath); err == nil {
			log.Infof("Loaded environment variables from %s", envPath)
			return
		}
	}

	log.Info("No .env file found. Using existing environment variables.")
}
