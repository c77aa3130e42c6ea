package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultSnakeConfig returns the hardcoded default configuration.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Board: BoardConfig{
			Size: 20,
		},
		Snake: SnakeBody{
			InitialLength: 2,
			StartX:        10,
			StartY:        10,
		},
		Speed: SpeedConfig{
			Initial:    9,
			Thresholds: []int{2, 5, 10, 20},
		},
		Apple: AppleConfig{
			RespawnDelayMs: 80,
			MaxAttempts:    800,
		},
		Leaderboard: LeaderboardConfig{
			Enabled:         true,
			DBPath:          "~/.snake/scores.db",
			TopN:            5,
			BoardN:          10,
			RankToleranceMs: 1000,
			RequireIndex:    true,
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultSnakeYAML
}
