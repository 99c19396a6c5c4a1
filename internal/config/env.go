package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// AIEnv holds collaborator credentials read from the environment.
type AIEnv struct {
	APIKey      string `env:"STUDYQUEST_AI_API_KEY"`
	AzureAPIKey string `env:"AZURE_OPENAI_API_KEY"`
	Endpoint    string `env:"AZURE_COGNITIVE_SERVICE_ENDPOINT"`
	Deployment  string `env:"AZURE_DEPLOYMENT_NAME" envDefault:"gpt-4o"`
	BaseURL     string `env:"STUDYQUEST_AI_BASE_URL"`
	DebugLog    string `env:"STUDYQUEST_DEBUG"`
}

// Key returns the first configured API key.
func (e AIEnv) Key() string {
	if k := strings.TrimSpace(e.APIKey); k != "" {
		return k
	}
	return strings.TrimSpace(e.AzureAPIKey)
}

// LoadAIEnv parses collaborator settings from environment variables.
func LoadAIEnv() (AIEnv, error) {
	var cfg AIEnv
	if err := env.Parse(&cfg); err != nil {
		return AIEnv{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}
