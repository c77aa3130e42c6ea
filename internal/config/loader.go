package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the leaderboard section.
const (
	EnvDBPath              = "SNAKE_DB_PATH"
	EnvLeaderboardURL      = "SNAKE_LEADERBOARD_URL"
	EnvLeaderboardDisabled = "SNAKE_LEADERBOARD_DISABLED"
)

// Load loads the snake configuration.
// Search order: customPath -> ~/.snake/config.yaml -> ./configs/snake.yaml -> embedded default
func Load(customPath string) (SnakeConfig, error) {
	cfg := DefaultSnakeConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg.normalized(), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg.normalized(), nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/snake.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg.normalized(), nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultSnakeYAML, &cfg); err != nil {
		return DefaultSnakeConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg.normalized(), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snake", filename)
}

// normalized replaces unusable values with defaults so a partial YAML file
// never produces a broken board.
func (c SnakeConfig) normalized() SnakeConfig {
	def := DefaultSnakeConfig()
	if c.Board.Size < 4 {
		c.Board.Size = def.Board.Size
	}
	if c.Snake.InitialLength < 1 {
		c.Snake.InitialLength = def.Snake.InitialLength
	}
	if c.Snake.StartX < 0 || c.Snake.StartX >= c.Board.Size {
		c.Snake.StartX = c.Board.Size / 2
	}
	if c.Snake.StartY < 0 || c.Snake.StartY >= c.Board.Size {
		c.Snake.StartY = c.Board.Size / 2
	}
	if c.Speed.Initial < 1 {
		c.Speed.Initial = def.Speed.Initial
	}
	if c.Apple.RespawnDelayMs < 0 {
		c.Apple.RespawnDelayMs = 0
	}
	if c.Apple.MaxAttempts < 1 {
		c.Apple.MaxAttempts = def.Apple.MaxAttempts
	}
	if c.Leaderboard.TopN < 1 {
		c.Leaderboard.TopN = def.Leaderboard.TopN
	}
	if c.Leaderboard.BoardN < 1 {
		c.Leaderboard.BoardN = def.Leaderboard.BoardN
	}
	if c.Leaderboard.RankToleranceMs < 0 {
		c.Leaderboard.RankToleranceMs = 0
	}
	return c
}

// ApplyPreset modifies the config based on a difficulty preset.
// An empty preset leaves the config untouched.
func ApplyPreset(cfg *SnakeConfig, preset DifficultyPreset) error {
	if preset == "" {
		return nil
	}
	speed := InitialSpeedForPreset(preset)
	if speed == 0 {
		return fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", preset)
	}
	cfg.Speed.Initial = speed
	return nil
}

// LoadEnv reads a dotenv file into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides leaderboard settings from environment variables.
func ApplyEnv(cfg *SnakeConfig, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvDBPath)); v != "" {
		cfg.Leaderboard.DBPath = v
	}
	if v := strings.TrimSpace(getenv(EnvLeaderboardURL)); v != "" {
		cfg.Leaderboard.RemoteURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLeaderboardDisabled)); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil && disabled {
			cfg.Leaderboard.Enabled = false
		}
	}
}
