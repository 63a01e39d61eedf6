// models/models.go
package models

import (
	"time"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/timer"
)

// TimerView is the browser-facing copy of a countdown.
type TimerView struct {
	Display   string `json:"display"`
	Remaining int    `json:"remaining"`
	Running   bool   `json:"running"`
	Phase     string `json:"phase"`
	Notice    string `json:"notice,omitempty"`
	// ButtonLabel is the text for the start/pause toggle.
	ButtonLabel string `json:"button_label"`
}

func NewTimerView(v timer.View) TimerView {
	label := "start"
	if v.Running {
		label = "pause"
	}
	return TimerView{
		Display:     v.Display,
		Remaining:   v.Remaining,
		Running:     v.Running,
		Phase:       v.Phase.String(),
		Notice:      v.Notice.String(),
		ButtonLabel: label,
	}
}

// GuessView is one row of the guess history.
type GuessView struct {
	Guess   string    `json:"guess"`
	Player  string    `json:"player"`
	Time    string    `json:"time"`
	At      time.Time `json:"at"`
	Correct bool      `json:"correct"`
	Tag     string    `json:"tag"`
}

// BrushView mirrors the drawing tool controls.
type BrushView struct {
	Color      string   `json:"color"`
	Selected   int      `json:"selected"`
	Width      float64  `json:"width"`
	WidthLabel string   `json:"width_label"`
	Erasing    bool     `json:"erasing"`
	Palette    []string `json:"palette"`
	Background string   `json:"background"`
	Mode       string   `json:"mode"`
}

// WordView is what the word region shows. The secret is never included
// while hidden.
type WordView struct {
	Display     string `json:"display"`
	Hidden      bool   `json:"hidden"`
	ToggleLabel string `json:"toggle_label"`
}

// GameView is a full snapshot of one draw-and-guess session.
type GameView struct {
	Word    WordView    `json:"word"`
	Brush   BrushView   `json:"brush"`
	Round   *TimerView  `json:"round,omitempty"`
	Guesses []GuessView `json:"guesses"`
	Status  string      `json:"status"`
}

// SessionView pairs the game with the standalone countdown.
type SessionView struct {
	SessionID string    `json:"session_id"`
	Game      GameView  `json:"game"`
	Timer     TimerView `json:"timer"`
	Duration  Duration  `json:"duration"`
}

// TimerUpdate is pushed on every scheduler-driven tick.
type TimerUpdate struct {
	Kind   string    `json:"kind"`
	Timer  TimerView `json:"timer"`
	Status string    `json:"status,omitempty"`
}

const (
	TimerKindRound      = "round"
	TimerKindStandalone = "standalone"
)

// RenderPayload carries render instructions for the browser canvas.
type RenderPayload struct {
	Ops []canvas.Op `json:"ops"`
}
