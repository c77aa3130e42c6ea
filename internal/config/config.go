// Package config provides YAML-based configuration loading for the snake
// game and its leaderboard, with embedded defaults, difficulty presets and
// environment overrides.
package config

// SnakeConfig contains all configuration for the game and leaderboard.
type SnakeConfig struct {
	Board       BoardConfig       `yaml:"board"`
	Snake       SnakeBody         `yaml:"snake"`
	Speed       SpeedConfig       `yaml:"speed"`
	Apple       AppleConfig       `yaml:"apple"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// BoardConfig defines the square playfield.
type BoardConfig struct {
	Size int `yaml:"size"`
}

// SnakeBody defines the snake's starting state.
type SnakeBody struct {
	InitialLength int `yaml:"initial_length"`
	StartX        int `yaml:"start_x"`
	StartY        int `yaml:"start_y"`
}

// SpeedConfig defines the step rate and its progression.
type SpeedConfig struct {
	Initial    int   `yaml:"initial"`    // Ticks per second at score 0
	Thresholds []int `yaml:"thresholds"` // Scores at which speed increases by 1
}

// AppleConfig defines apple relocation behavior.
type AppleConfig struct {
	RespawnDelayMs int `yaml:"respawn_delay_ms"` // Delay between eating and the next apple
	MaxAttempts    int `yaml:"max_attempts"`     // Rejection-sampling attempts before scanning
}

// LeaderboardConfig defines where scores are persisted.
type LeaderboardConfig struct {
	Enabled         bool   `yaml:"enabled"`
	DBPath          string `yaml:"db_path"`    // SQLite path; "mem://" keeps scores in memory
	RemoteURL       string `yaml:"remote_url"` // HTTP leaderboard API; wins over DBPath
	TopN            int    `yaml:"top_n"`      // Rows shown after saving a score
	BoardN          int    `yaml:"board_n"`    // Rows shown in the leaderboard-only view
	RankToleranceMs int    `yaml:"rank_tolerance_ms"`
	RequireIndex    bool   `yaml:"require_index"` // Create the rank index on open
}

// DifficultyPreset represents a named starting speed.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// InitialSpeedForPreset returns speed.initial for a difficulty preset.
// Unknown presets return 0, meaning "keep the configured value".
func InitialSpeedForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 6
	case DifficultyNormal:
		return 9
	case DifficultyHard:
		return 12
	default:
		return 0
	}
}
