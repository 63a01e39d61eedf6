package game

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultPlayer = "teammate"
	ClockLayout   = "15:04:05"
)

// GuessEntry is immutable once logged.
type GuessEntry struct {
	Guess   string
	Player  string
	At      time.Time
	Correct bool
}

// Clock renders the submission time on a 24-hour clock.
func (e GuessEntry) Clock() string {
	return e.At.Format(ClockLayout)
}

// GuessLog keeps guesses newest first.
type GuessLog struct {
	clock         clockwork.Clock
	location      *time.Location
	defaultPlayer string
	entries       []GuessEntry
}

func NewGuessLog(clock clockwork.Clock, defaultPlayer string) *GuessLog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if strings.TrimSpace(defaultPlayer) == "" {
		defaultPlayer = DefaultPlayer
	}
	return &GuessLog{clock: clock, location: time.Local, defaultPlayer: defaultPlayer}
}

// Submit logs a guess against secret. A blank guess is dropped and ok is
// false.
func (l *GuessLog) Submit(guess, player, secret string) (entry GuessEntry, ok bool) {
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return GuessEntry{}, false
	}
	player = strings.TrimSpace(player)
	if player == "" {
		player = l.defaultPlayer
	}
	entry = GuessEntry{
		Guess:   guess,
		Player:  player,
		At:      l.clock.Now().In(l.location),
		Correct: strings.EqualFold(guess, secret),
	}
	l.entries = append([]GuessEntry{entry}, l.entries...)
	return entry, true
}

func (l *GuessLog) ClearAll() {
	l.entries = nil
}

// Entries returns a copy, newest first.
func (l *GuessLog) Entries() []GuessEntry {
	return append([]GuessEntry(nil), l.entries...)
}

func (l *GuessLog) Len() int {
	return len(l.entries)
}
