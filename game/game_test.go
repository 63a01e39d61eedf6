package game

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/drawguess/canvas"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/timer"
)

type fakeScheduler struct {
	nextID int64
	tasks  map[int64]func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{tasks: make(map[int64]func())}
}

func (s *fakeScheduler) AddTimer(delay, interval time.Duration, callback func()) int64 {
	s.nextID++
	s.tasks[s.nextID] = callback
	return s.nextID
}

func (s *fakeScheduler) RemoveTimer(id int64) {
	delete(s.tasks, id)
}

func (s *fakeScheduler) fire() {
	var callbacks []func()
	for _, cb := range s.tasks {
		callbacks = append(callbacks, cb)
	}
	for _, cb := range callbacks {
		cb()
	}
}

func newTestGame(t *testing.T, words []string, roundSeconds int) (*Game, *fakeScheduler, *clockwork.FakeClock) {
	t.Helper()
	scheduler := newFakeScheduler()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 21, 7, 9, 0, time.Local))
	g, err := New(Options{
		Words:        words,
		RoundSeconds: roundSeconds,
		Rand:         rand.New(rand.NewSource(7)),
		Clock:        clock,
		Scheduler:    scheduler,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, scheduler, clock
}

func TestWordManager_DrawHidesWord(t *testing.T) {
	m, err := NewWordManager([]string{"sushi", " ", "volcano"}, "", rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewWordManager: %v", err)
	}
	m.Reveal()
	word := m.DrawNewWord()
	if word != "sushi" && word != "volcano" {
		t.Fatalf("unexpected word %q", word)
	}
	if !m.Hidden() || m.Display() != DefaultMask {
		t.Errorf("a new word must start hidden, display %q", m.Display())
	}
	if m.ToggleLabel() != "show word" {
		t.Errorf("unexpected toggle label %q", m.ToggleLabel())
	}

	m.ToggleVisibility()
	if m.Display() != word {
		t.Errorf("expected %q after toggle, got %q", word, m.Display())
	}
	m.Reveal()
	m.Reveal()
	if m.Hidden() || m.Word() != word {
		t.Error("reveal must be idempotent and keep the word")
	}
}

func TestWordManager_EmptyList(t *testing.T) {
	if _, err := NewWordManager([]string{"", "  "}, "", nil); err != ErrEmptyWordList {
		t.Errorf("expected ErrEmptyWordList, got %v", err)
	}
}

func TestLoadWordPack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.yaml")
	if err := os.WriteFile(path, []byte("words:\n  - sunflower\n  - ' volcano '\n  - ''\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	words, err := LoadWordPack(path)
	if err != nil {
		t.Fatalf("LoadWordPack: %v", err)
	}
	if len(words) != 2 || words[0] != "sunflower" || words[1] != "volcano" {
		t.Errorf("unexpected words %v", words)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("words: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWordPack(empty); err == nil {
		t.Error("expected an error for an empty pack")
	}
}

func TestGame_GuessIsCaseInsensitive(t *testing.T) {
	g, _, _ := newTestGame(t, []string{"sushi"}, 0)

	for _, guess := range []string{"SUSHI", "Sushi "} {
		entry, ok, view := g.SubmitGuess(guess, "")
		if !ok || !entry.Correct {
			t.Errorf("guess %q should be correct, got %+v", guess, entry)
		}
		if view.Status != StatusCorrect {
			t.Errorf("unexpected status %q", view.Status)
		}
		if entry.Player != DefaultPlayer {
			t.Errorf("blank player should default to %q, got %q", DefaultPlayer, entry.Player)
		}
	}
}

func TestGame_WrongGuessPrepended(t *testing.T) {
	g, _, clock := newTestGame(t, []string{"大熊猫"}, 0)

	g.SubmitGuess("bamboo", "Sam")
	clock.Advance(time.Second)
	entry, ok, view := g.SubmitGuess("panda", "Alex")

	if !ok || entry.Correct {
		t.Fatalf("expected an incorrect entry, got %+v", entry)
	}
	if view.Status != StatusWrong {
		t.Errorf("unexpected status %q", view.Status)
	}
	if len(view.Guesses) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(view.Guesses))
	}
	head := view.Guesses[0]
	if head.Guess != "panda" || head.Player != "Alex" || head.Correct || head.Tag != "missed" {
		t.Errorf("newest entry should be first, got %+v", head)
	}
	if head.Time != "21:07:10" {
		t.Errorf("expected 24-hour timestamp 21:07:10, got %q", head.Time)
	}
}

func TestGame_BlankGuessIgnored(t *testing.T) {
	g, _, _ := newTestGame(t, []string{"sushi"}, 0)
	g.SubmitGuess("ramen", "")
	before := g.View()

	_, ok, view := g.SubmitGuess("   ", "Alex")
	if ok {
		t.Error("blank guess must not be accepted")
	}
	if len(view.Guesses) != 1 {
		t.Errorf("history length changed: %d", len(view.Guesses))
	}
	if view.Status != before.Status {
		t.Errorf("status changed on a blank guess: %q", view.Status)
	}
}

func TestGame_ClearGuesses(t *testing.T) {
	g, _, _ := newTestGame(t, []string{"sushi"}, 0)
	for _, guess := range []string{"a", "b", "c"} {
		g.SubmitGuess(guess, "")
	}
	if view := g.ClearGuesses(); len(view.Guesses) != 0 {
		t.Errorf("expected empty history, got %d", len(view.Guesses))
	}
	if view := g.ClearGuesses(); len(view.Guesses) != 0 {
		t.Errorf("clearing an empty history should stay empty")
	}
}

func TestGame_NewWordResetsRound(t *testing.T) {
	g, scheduler, _ := newTestGame(t, []string{"sushi"}, timer.RoundSeconds)

	g.StartRound()
	for i := 0; i < 5; i++ {
		scheduler.fire()
	}
	g.RevealWord()

	view := g.DrawNewWord()
	if view.Round == nil {
		t.Fatal("round timer expected")
	}
	if view.Round.Running || view.Round.Display != "01:00" {
		t.Errorf("new word should reset the round timer, got %+v", view.Round)
	}
	if !view.Word.Hidden || view.Word.Display != DefaultMask {
		t.Errorf("new word should be hidden, got %+v", view.Word)
	}
	if view.Status != StatusNewWord {
		t.Errorf("unexpected status %q", view.Status)
	}
	if len(scheduler.tasks) != 0 {
		t.Error("reset must release the round callback")
	}
}

func TestGame_RoundExpiryUpdatesStatus(t *testing.T) {
	g, scheduler, _ := newTestGame(t, []string{"sushi"}, 3)

	var updates []models.TimerUpdate
	g.OnRoundTick(func(u models.TimerUpdate) { updates = append(updates, u) })

	g.ToggleRound()
	for i := 0; i < 4; i++ {
		scheduler.fire()
	}

	if len(updates) != 3 {
		t.Fatalf("expected 3 tick updates, got %d", len(updates))
	}
	last := updates[len(updates)-1]
	if last.Timer.Display != "00:00" || last.Timer.Running || last.Status != StatusRoundOver {
		t.Errorf("unexpected final update %+v", last)
	}
	if g.Status() != StatusRoundOver {
		t.Errorf("game status should announce the end of the round, got %q", g.Status())
	}
}

func TestGame_LateExpiryAfterNewWord(t *testing.T) {
	g, scheduler, _ := newTestGame(t, []string{"sushi"}, 1)

	var updates []models.TimerUpdate
	g.OnRoundTick(func(u models.TimerUpdate) { updates = append(updates, u) })

	expired := timer.View{Phase: timer.PhaseExpired, Notice: timer.NoticeExpired, Display: "00:00"}
	g.StartRound()
	g.DrawNewWord()
	if len(scheduler.tasks) != 0 {
		t.Fatal("setup: new word should release the round callback")
	}

	// An expiry view captured before the new word lands afterwards.
	g.handleRoundTick(expired)

	if g.Status() != StatusNewWord {
		t.Errorf("late expiry overwrote the status: %q", g.Status())
	}
	if len(updates) != 1 || updates[0].Timer.Display != "00:01" || updates[0].Status != StatusNewWord {
		t.Errorf("update should carry the reset round, got %+v", updates)
	}
}

func TestGame_WithoutRoundTimer(t *testing.T) {
	g, scheduler, _ := newTestGame(t, []string{"sushi"}, 0)
	if g.HasRoundTimer() {
		t.Fatal("round timer should be disabled")
	}
	view := g.StartRound()
	if view.Round != nil {
		t.Error("view should omit the round timer")
	}
	if len(scheduler.tasks) != 0 {
		t.Error("nothing should be scheduled")
	}
}

func TestGame_DrawingControls(t *testing.T) {
	g, _, _ := newTestGame(t, []string{"sushi"}, 0)

	view := g.ToggleEraser()
	if !view.Brush.Erasing {
		t.Fatal("eraser should be on")
	}
	ops := g.PointerDown(canvas.Point{X: 4, Y: 4})
	if ops[0].Color != canvas.DefaultBackground {
		t.Errorf("eraser should paint background, got %q", ops[0].Color)
	}
	g.PointerLeave()

	view, ok := g.SelectColor(2)
	if !ok || view.Brush.Erasing || view.Brush.Color != canvas.DefaultPalette[2] {
		t.Errorf("swatch selection failed: %+v", view.Brush)
	}
	view = g.SetStrokeWidth(12)
	if view.Brush.WidthLabel != "12px" {
		t.Errorf("unexpected width label %q", view.Brush.WidthLabel)
	}
	if ops := g.PointerMove(canvas.Point{X: 9, Y: 9}); ops != nil {
		t.Error("moves after leave must not draw")
	}
}
