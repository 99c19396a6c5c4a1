// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Game    GameConfig    `toml:"game"`
	AI      AIFileConfig  `toml:"ai"`
	Content ContentConfig `toml:"content"`
}

// SessionConfig maps quiz session settings.
type SessionConfig struct {
	FeedbackMs     *int `toml:"feedback-ms"`
	GameFeedbackMs *int `toml:"game-feedback-ms"`
	Questions      *int `toml:"questions"`
}

// GameConfig maps exploration-mode settings.
type GameConfig struct {
	Speed               *float64 `toml:"speed"`
	InteractionDistance *float64 `toml:"interaction-distance"`
	SpawnInterval       *float64 `toml:"spawn-interval"`
	WorldWidth          *float64 `toml:"world-width"`
	TickMs              *int     `toml:"tick-ms"`
}

// AIFileConfig maps question-generation settings. Credentials live in the environment.
type AIFileConfig struct {
	Provider   *string `toml:"provider"`
	Model      *string `toml:"model"`
	BaseURL    *string `toml:"base-url"`
	APIVersion *string `toml:"api-version"`
	MaxTokens  *int    `toml:"max-tokens"`
	TimeoutMs  *int    `toml:"timeout-ms"`
	Offline    *bool   `toml:"offline"`
}

// ContentConfig maps static content settings.
type ContentConfig struct {
	QuizDir *string `toml:"quiz-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
