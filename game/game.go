package game

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/timer"
)

const (
	StatusNewWord   = "New word drawn. Start drawing!"
	StatusCorrect   = "Correct, well done!"
	StatusWrong     = "Not it. Try another clue."
	StatusRoundOver = "Time's up! Reveal the answer."

	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

// Options configures a Game. RoundSeconds of zero leaves out the round timer.
type Options struct {
	Words         []string
	Mask          string
	DefaultPlayer string
	RoundSeconds  int

	Canvas       canvas.Options
	CanvasWidth  float64
	CanvasHeight float64
	Renderer     canvas.Renderer

	Rand      *rand.Rand
	Clock     clockwork.Clock
	Scheduler timer.Scheduler
}

// Game is one draw-and-guess session: the secret word, the drawing surface,
// the guess history and an optional round timer. Methods are safe to call
// from the connection goroutine while round ticks arrive from the scheduler.
type Game struct {
	mu      sync.Mutex
	words   *WordManager
	surface *canvas.Surface
	guesses *GuessLog
	round   *timer.Countdown
	status  string

	onRoundTick func(models.TimerUpdate)
}

// New builds a game and draws the first word.
func New(opts Options) (*Game, error) {
	words := opts.Words
	if len(words) == 0 {
		words = DefaultWords
	}
	wm, err := NewWordManager(words, opts.Mask, opts.Rand)
	if err != nil {
		return nil, err
	}
	if opts.RoundSeconds < 0 {
		return nil, fmt.Errorf("round duration must not be negative: %d", opts.RoundSeconds)
	}
	if opts.RoundSeconds > 0 && opts.Scheduler == nil {
		return nil, fmt.Errorf("round timer needs a scheduler")
	}

	g := &Game{
		words:   wm,
		surface: canvas.NewSurface(opts.Canvas, opts.Renderer),
		guesses: NewGuessLog(opts.Clock, opts.DefaultPlayer),
	}
	if opts.RoundSeconds > 0 {
		g.round = timer.NewCountdown(models.TimerKindRound, opts.Scheduler, timer.FixedDuration(opts.RoundSeconds))
		g.round.OnTick(g.handleRoundTick)
	}

	width, height := opts.CanvasWidth, opts.CanvasHeight
	if width <= 0 || height <= 0 {
		width, height = DefaultCanvasWidth, DefaultCanvasHeight
	}
	g.surface.Resize(width, height, 1)
	g.DrawNewWord()
	return g, nil
}

// OnRoundTick registers the listener for round timer ticks.
func (g *Game) OnRoundTick(fn func(models.TimerUpdate)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onRoundTick = fn
}

// HasRoundTimer reports whether the round timer feature is enabled.
func (g *Game) HasRoundTimer() bool {
	return g.round != nil
}

// --- word ---

// DrawNewWord starts a new round: fresh hidden word and a reset round timer.
func (g *Game) DrawNewWord() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.words.DrawNewWord()
	g.status = StatusNewWord
	if g.round != nil {
		g.round.Reset()
	}
	return g.viewLocked()
}

func (g *Game) ToggleWord() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.words.ToggleVisibility()
	return g.viewLocked()
}

func (g *Game) RevealWord() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.words.Reveal()
	return g.viewLocked()
}

// SecretWord is for server-side inspection only; views never carry it while
// hidden.
func (g *Game) SecretWord() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.words.Word()
}

// --- drawing ---

func (g *Game) PointerDown(p canvas.Point) []canvas.Op {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surface.PointerDown(p)
}

func (g *Game) PointerMove(p canvas.Point) []canvas.Op {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surface.PointerMove(p)
}

func (g *Game) PointerUp() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.surface.PointerUp()
}

func (g *Game) PointerLeave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.surface.PointerLeave()
}

func (g *Game) ClearCanvas() []canvas.Op {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surface.Clear()
}

func (g *Game) Resize(width, height, pixelRatio float64) []canvas.Op {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surface.Resize(width, height, pixelRatio)
}

func (g *Game) SelectColor(index int) (models.GameView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := g.surface.SelectColor(index)
	return g.viewLocked(), ok
}

func (g *Game) SetStrokeWidth(width float64) models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.surface.SetStrokeWidth(width)
	return g.viewLocked()
}

func (g *Game) ToggleEraser() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.surface.ToggleEraser()
	return g.viewLocked()
}

// --- guesses ---

// SubmitGuess logs a guess against the secret word. ok is false when the
// guess was blank and nothing changed.
func (g *Game) SubmitGuess(guess, player string) (entry GuessEntry, ok bool, view models.GameView) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok = g.guesses.Submit(guess, player, g.words.Word())
	if ok {
		if entry.Correct {
			g.status = StatusCorrect
		} else {
			g.status = StatusWrong
		}
	}
	return entry, ok, g.viewLocked()
}

func (g *Game) ClearGuesses() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.guesses.ClearAll()
	return g.viewLocked()
}

func (g *Game) Guesses() []GuessEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.guesses.Entries()
}

// --- round timer ---
// Without a round timer these return the unchanged view.

func (g *Game) StartRound() models.GameView {
	return g.roundOp((*timer.Countdown).Start)
}

func (g *Game) PauseRound() models.GameView {
	return g.roundOp((*timer.Countdown).Pause)
}

func (g *Game) ToggleRound() models.GameView {
	return g.roundOp((*timer.Countdown).Toggle)
}

func (g *Game) ResetRound() models.GameView {
	return g.roundOp((*timer.Countdown).Reset)
}

// Close releases the round timer handle.
func (g *Game) Close() {
	if g.round != nil {
		g.round.Stop()
	}
}

func (g *Game) View() models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Game) Status() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) roundOp(op func(*timer.Countdown) timer.View) models.GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.round != nil {
		op(g.round)
	}
	return g.viewLocked()
}

// handleRoundTick runs on the scheduler goroutine with the countdown lock
// already released.
func (g *Game) handleRoundTick(v timer.View) {
	g.mu.Lock()
	// A new word may have reset the round after v was taken.
	current := g.round.View()
	if v.Phase == timer.PhaseExpired && current.Phase == timer.PhaseExpired && current.Notice == timer.NoticeExpired {
		g.status = StatusRoundOver
	}
	update := models.TimerUpdate{
		Kind:   models.TimerKindRound,
		Timer:  models.NewTimerView(current),
		Status: g.status,
	}
	listener := g.onRoundTick
	g.mu.Unlock()

	if listener != nil {
		listener(update)
	}
}

func (g *Game) viewLocked() models.GameView {
	view := models.GameView{
		Word: models.WordView{
			Display:     g.words.Display(),
			Hidden:      g.words.Hidden(),
			ToggleLabel: g.words.ToggleLabel(),
		},
		Brush: models.BrushView{
			Color:      g.surface.Color(),
			Selected:   g.surface.Selected(),
			Width:      g.surface.StrokeWidth(),
			WidthLabel: fmt.Sprintf("%gpx", g.surface.StrokeWidth()),
			Erasing:    g.surface.Erasing(),
			Palette:    g.surface.Palette(),
			Background: g.surface.Background(),
			Mode:       g.surface.Mode().String(),
		},
		Guesses: make([]models.GuessView, 0, g.guesses.Len()),
		Status:  g.status,
	}
	if g.round != nil {
		rv := models.NewTimerView(g.round.View())
		view.Round = &rv
	}
	for _, e := range g.guesses.Entries() {
		view.Guesses = append(view.Guesses, guessView(e))
	}
	return view
}

func guessView(e GuessEntry) models.GuessView {
	tag := "missed"
	if e.Correct {
		tag = "correct"
	}
	return models.GuessView{
		Guess:   e.Guess,
		Player:  e.Player,
		Time:    e.Clock(),
		At:      e.At,
		Correct: e.Correct,
		Tag:     tag,
	}
}
