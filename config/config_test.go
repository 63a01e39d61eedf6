package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/game"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("unexpected http address %q", cfg.Server.HTTPAddress)
	}
	if cfg.Game.RoundSeconds != 60 {
		t.Errorf("expected 60s rounds, got %d", cfg.Game.RoundSeconds)
	}
	if len(cfg.Game.Palette) != len(canvas.DefaultPalette) {
		t.Errorf("expected default palette, got %v", cfg.Game.Palette)
	}
	if cfg.Game.DefaultPlayer != game.DefaultPlayer {
		t.Errorf("unexpected default player %q", cfg.Game.DefaultPlayer)
	}
	if cfg.Timer.Resolution != 100*time.Millisecond {
		t.Errorf("unexpected resolution %v", cfg.Timer.Resolution)
	}
	if d := cfg.StandaloneDuration(); d.Minutes != 5 || d.Seconds != 0 {
		t.Errorf("unexpected standalone default %+v", d)
	}
	words, err := cfg.WordList()
	if err != nil || len(words) != len(game.DefaultWords) {
		t.Errorf("expected built-in words, got %d (%v)", len(words), err)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_address: ":9000"
game:
  round_seconds: 0
  words: ["sushi", "panda"]
timer:
  resolution: 250ms
  default_minutes: 120
  default_seconds: 7
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DRAWGUESS_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.HTTPAddress != ":9000" {
		t.Errorf("file value not applied: %q", cfg.Server.HTTPAddress)
	}
	if cfg.Game.RoundSeconds != 0 {
		t.Errorf("expected round timer disabled, got %d", cfg.Game.RoundSeconds)
	}
	if cfg.Timer.Resolution != 250*time.Millisecond {
		t.Errorf("unexpected resolution %v", cfg.Timer.Resolution)
	}
	if d := cfg.StandaloneDuration(); d.Minutes != 99 || d.Seconds != 7 {
		t.Errorf("standalone default should clamp to 99:07, got %+v", d)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("env override not applied: %q", cfg.Log.Level)
	}
	words, _ := cfg.WordList()
	if len(words) != 2 || words[0] != "sushi" {
		t.Errorf("unexpected words %v", words)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	bad := *cfg
	bad.Game.RoundSeconds = -1
	if err := bad.Validate(); err == nil {
		t.Error("negative round duration should fail")
	}

	bad = *cfg
	bad.Game.Palette = []string{"#zzzzzz"}
	if err := bad.Validate(); err == nil {
		t.Error("bad palette should fail")
	}

	bad = *cfg
	bad.Game.Words = []string{" "}
	if err := bad.Validate(); err == nil {
		t.Error("empty word list should fail")
	}
}
