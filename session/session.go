// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/timer"
)

// Session is one browser connection: a private draw-and-guess game plus the
// standalone countdown.
type Session struct {
	ID         string
	Conn       network.Connection
	Game       *game.Game
	Timer      *timer.Countdown
	CreatedAt  time.Time
	LastActive time.Time

	duration  timer.Duration
	mutex     sync.RWMutex
	closeOnce sync.Once
}

func NewSession(id string, conn network.Connection, g *game.Game, scheduler timer.Scheduler, initial timer.Duration) *Session {
	now := time.Now()
	initial = timer.ClampDuration(initial.Minutes, initial.Seconds)
	return &Session{
		ID:         id,
		Conn:       conn,
		Game:       g,
		Timer:      timer.NewCountdown(models.TimerKindStandalone, scheduler, initial.Source()),
		CreatedAt:  now,
		LastActive: now,
		duration:   initial,
	}
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.LastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	return s.Conn.SendJSON(msgID, v)
}

// SetDuration applies the standalone timer inputs. Values are clamped and
// echoed back; a running countdown keeps going and picks the new duration up
// on its next reload.
func (s *Session) SetDuration(minutes, seconds string) (models.Duration, models.TimerView) {
	d := timer.ParseDurationInput(minutes, seconds)

	s.mutex.Lock()
	s.duration = d
	s.mutex.Unlock()

	view := s.Timer.SetSource(d.Source())
	return models.Duration{Minutes: d.Minutes, Seconds: d.Seconds}, models.NewTimerView(view)
}

func (s *Session) Duration() models.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return models.Duration{Minutes: s.duration.Minutes, Seconds: s.duration.Seconds}
}

func (s *Session) View() models.SessionView {
	return models.SessionView{
		SessionID: s.ID,
		Game:      s.Game.View(),
		Timer:     models.NewTimerView(s.Timer.View()),
		Duration:  s.Duration(),
	}
}

// Close stops both countdowns and closes the connection once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.Timer.Stop()
		s.Game.Close()
		err = s.Conn.Close()
	})
	return err
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// IDs lists the current session ids in no particular order.
func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}
