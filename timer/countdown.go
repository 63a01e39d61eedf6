package timer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	MaxMinutes = 99
	MaxSeconds = 59

	// RoundSeconds is the fixed length of a draw-and-guess round.
	RoundSeconds = 60
)

// Phase is the countdown state machine position.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseExpired:
		return "expired"
	default:
		return "stopped"
	}
}

// Notice is the user-facing outcome of a countdown operation.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeRunning
	NoticePaused
	NoticeReset
	NoticeExpired
	NoticeNeedDuration
)

func (n Notice) String() string {
	switch n {
	case NoticeRunning:
		return "running..."
	case NoticePaused:
		return "paused"
	case NoticeReset:
		return "reset"
	case NoticeExpired:
		return "time's up!"
	case NoticeNeedDuration:
		return "set a duration first"
	default:
		return ""
	}
}

// DurationSource yields the number of seconds a countdown reloads to.
type DurationSource func() int

// FixedDuration always reloads to seconds.
func FixedDuration(seconds int) DurationSource {
	return func() int { return seconds }
}

// View is a read-only copy of a countdown.
type View struct {
	Remaining int
	Running   bool
	Phase     Phase
	Display   string
	Notice    Notice
}

// Countdown counts whole seconds down to zero. It holds at most one scheduler
// handle at a time; a callback that fires after its handle was released is
// dropped by comparing generations.
type Countdown struct {
	name      string
	scheduler Scheduler
	source    DurationSource
	interval  time.Duration

	mutex      sync.Mutex
	remaining  int
	phase      Phase
	notice     Notice
	timerID    int64
	generation uint64
	onTick     func(View)
}

// NewCountdown builds a stopped countdown loaded from source.
func NewCountdown(name string, scheduler Scheduler, source DurationSource) *Countdown {
	c := &Countdown{
		name:      name,
		scheduler: scheduler,
		source:    source,
		interval:  time.Second,
	}
	c.remaining = c.load()
	return c
}

func (c *Countdown) Name() string {
	return c.name
}

// OnTick registers the listener for scheduler-driven ticks. It runs without
// the countdown lock held.
func (c *Countdown) OnTick(fn func(View)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.onTick = fn
}

// SetSource swaps the duration source. When stopped the remaining time is
// reloaded straight away.
func (c *Countdown) SetSource(source DurationSource) View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.source = source
	if c.timerID == 0 {
		c.remaining = c.load()
		c.phase = PhaseStopped
	}
	return c.viewLocked()
}

func (c *Countdown) Start() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.startLocked()
}

func (c *Countdown) startLocked() View {
	if c.timerID != 0 {
		return c.viewLocked()
	}
	if c.remaining <= 0 {
		c.remaining = c.load()
	}
	if c.remaining <= 0 {
		c.notice = NoticeNeedDuration
		return c.viewLocked()
	}

	c.generation++
	gen := c.generation
	c.timerID = c.scheduler.AddTimer(c.interval, c.interval, func() { c.fire(gen) })
	c.phase = PhaseRunning
	c.notice = NoticeRunning
	return c.viewLocked()
}

func (c *Countdown) Pause() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.pauseLocked()
}

func (c *Countdown) pauseLocked() View {
	if c.timerID != 0 {
		c.stopLocked()
		c.phase = PhaseStopped
	}
	c.notice = NoticePaused
	return c.viewLocked()
}

// Toggle pauses a running countdown and starts any other. The choice and the
// transition happen under one lock so a concurrent tick cannot flip it.
func (c *Countdown) Toggle() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.timerID != 0 {
		return c.pauseLocked()
	}
	return c.startLocked()
}

func (c *Countdown) Reset() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.stopLocked()
	c.remaining = c.load()
	c.phase = PhaseStopped
	c.notice = NoticeReset
	return c.viewLocked()
}

// Tick advances a running countdown by one second. It is a no-op otherwise.
func (c *Countdown) Tick() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tickLocked()
	return c.viewLocked()
}

// Stop releases the scheduler handle without touching the remaining time.
// Sessions call it on teardown.
func (c *Countdown) Stop() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.timerID != 0 {
		c.stopLocked()
		c.phase = PhaseStopped
	}
}

func (c *Countdown) Running() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.timerID != 0
}

func (c *Countdown) Remaining() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.remaining
}

func (c *Countdown) View() View {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.viewLocked()
}

func (c *Countdown) fire(gen uint64) {
	c.mutex.Lock()
	if gen != c.generation || c.timerID == 0 {
		c.mutex.Unlock()
		return
	}
	c.tickLocked()
	view := c.viewLocked()
	listener := c.onTick
	c.mutex.Unlock()

	if listener != nil {
		listener(view)
	}
}

func (c *Countdown) tickLocked() {
	if c.timerID == 0 {
		return
	}
	c.remaining--
	if c.remaining < 0 {
		c.remaining = 0
	}
	if c.remaining == 0 {
		c.stopLocked()
		c.phase = PhaseExpired
		c.notice = NoticeExpired
	}
}

func (c *Countdown) stopLocked() {
	if c.timerID != 0 {
		c.scheduler.RemoveTimer(c.timerID)
		c.timerID = 0
	}
	c.generation++
}

func (c *Countdown) load() int {
	if c.source == nil {
		return 0
	}
	seconds := c.source()
	if seconds < 0 {
		return 0
	}
	return seconds
}

func (c *Countdown) viewLocked() View {
	return View{
		Remaining: c.remaining,
		Running:   c.timerID != 0,
		Phase:     c.phase,
		Display:   FormatClock(c.remaining),
		Notice:    c.notice,
	}
}

// FormatClock renders seconds as zero-padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Duration is a clamped minutes/seconds pair as typed into the standalone
// timer inputs.
type Duration struct {
	Minutes int
	Seconds int
}

// ClampDuration pins minutes to [0,99] and seconds to [0,59].
func ClampDuration(minutes, seconds int) Duration {
	return Duration{
		Minutes: clamp(minutes, 0, MaxMinutes),
		Seconds: clamp(seconds, 0, MaxSeconds),
	}
}

// ParseDurationInput reads raw input text. Anything that is not a number
// counts as zero; fractions are truncated.
func ParseDurationInput(minutes, seconds string) Duration {
	return ClampDuration(parseField(minutes), parseField(seconds))
}

func (d Duration) TotalSeconds() int {
	return d.Minutes*60 + d.Seconds
}

// Source returns a DurationSource pinned to d.
func (d Duration) Source() DurationSource {
	return FixedDuration(d.TotalSeconds())
}

func parseField(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	if f > MaxMinutes*60 {
		return MaxMinutes * 60
	}
	if f < 0 {
		return 0
	}
	return int(f)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
