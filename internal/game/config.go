package game

import (
	"time"

	"github.com/vovakirdan/snake-leaderboard/internal/config"
	"github.com/vovakirdan/snake-leaderboard/internal/core"
)

// Config holds the engine's rules.
type Config struct {
	BoardSize       int
	InitialLength   int
	Start           core.Point
	InitialSpeed    int
	SpeedThresholds []int
	AppleDelay      time.Duration
	AppleAttempts   int
}

// DefaultConfig returns the classic 20×20 rules.
func DefaultConfig() Config {
	return ConfigFrom(config.DefaultSnakeConfig())
}

// ConfigFrom converts the YAML configuration into engine rules.
func ConfigFrom(c config.SnakeConfig) Config {
	thresholds := make([]int, len(c.Speed.Thresholds))
	copy(thresholds, c.Speed.Thresholds)
	return Config{
		BoardSize:       c.Board.Size,
		InitialLength:   c.Snake.InitialLength,
		Start:           core.Point{X: c.Snake.StartX, Y: c.Snake.StartY},
		InitialSpeed:    c.Speed.Initial,
		SpeedThresholds: thresholds,
		AppleDelay:      time.Duration(c.Apple.RespawnDelayMs) * time.Millisecond,
		AppleAttempts:   c.Apple.MaxAttempts,
	}
}

func (c Config) isThreshold(score int) bool {
	for _, t := range c.SpeedThresholds {
		if t == score {
			return true
		}
	}
	return false
}
