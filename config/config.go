package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/timer"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Game    GameConfig    `mapstructure:"game"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	HTTPAddress    string   `mapstructure:"http_address"`
	RPCAddress     string   `mapstructure:"rpc_address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type TimerConfig struct {
	// Resolution is how often the timer manager polls for due callbacks.
	Resolution time.Duration `mapstructure:"resolution"`
	// DefaultMinutes and DefaultSeconds seed the standalone countdown.
	DefaultMinutes int `mapstructure:"default_minutes"`
	DefaultSeconds int `mapstructure:"default_seconds"`
}

type GameConfig struct {
	Words         []string `mapstructure:"words"`
	WordsFile     string   `mapstructure:"words_file"`
	RoundSeconds  int      `mapstructure:"round_seconds"`
	Mask          string   `mapstructure:"mask"`
	DefaultPlayer string   `mapstructure:"default_player"`
	StrokeWidth   float64  `mapstructure:"stroke_width"`
	Background    string   `mapstructure:"background"`
	Palette       []string `mapstructure:"palette"`
	CanvasWidth   float64  `mapstructure:"canvas_width"`
	CanvasHeight  float64  `mapstructure:"canvas_height"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File switches output to a rolling file when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("timer.resolution", 100*time.Millisecond)
	v.SetDefault("timer.default_minutes", 5)
	v.SetDefault("timer.default_seconds", 0)
	v.SetDefault("game.words", game.DefaultWords)
	v.SetDefault("game.words_file", "")
	v.SetDefault("game.round_seconds", timer.RoundSeconds)
	v.SetDefault("game.mask", game.DefaultMask)
	v.SetDefault("game.default_player", game.DefaultPlayer)
	v.SetDefault("game.stroke_width", canvas.DefaultStrokeWidth)
	v.SetDefault("game.background", canvas.DefaultBackground)
	v.SetDefault("game.palette", canvas.DefaultPalette)
	v.SetDefault("game.canvas_width", game.DefaultCanvasWidth)
	v.SetDefault("game.canvas_height", game.DefaultCanvasHeight)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("metrics.namespace", "drawguess")
}

// LoadConfig reads config.yaml from path on top of the defaults. A missing
// file or .env is fine; DRAWGUESS_* environment variables override both.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DRAWGUESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no game could start with.
func (c *Config) Validate() error {
	if c.Timer.Resolution <= 0 {
		return fmt.Errorf("timer.resolution must be positive: %s", c.Timer.Resolution)
	}
	if c.Game.RoundSeconds < 0 {
		return fmt.Errorf("game.round_seconds must not be negative: %d", c.Game.RoundSeconds)
	}
	if err := canvas.ValidatePalette(c.Game.Palette); err != nil {
		return fmt.Errorf("game.palette: %w", err)
	}
	if _, err := canvas.ParseHex(c.Game.Background); err != nil {
		return fmt.Errorf("game.background: %w", err)
	}
	if c.Game.WordsFile == "" && len(game.CleanWords(c.Game.Words)) == 0 {
		return fmt.Errorf("game.words: %w", game.ErrEmptyWordList)
	}
	return nil
}

// WordList resolves the configured words, preferring the word pack file.
func (c *Config) WordList() ([]string, error) {
	if c.Game.WordsFile != "" {
		return game.LoadWordPack(c.Game.WordsFile)
	}
	words := game.CleanWords(c.Game.Words)
	if len(words) == 0 {
		return nil, game.ErrEmptyWordList
	}
	return words, nil
}

// StandaloneDuration is the clamped starting value of the standalone timer.
func (c *Config) StandaloneDuration() timer.Duration {
	return timer.ClampDuration(c.Timer.DefaultMinutes, c.Timer.DefaultSeconds)
}
