package session

import (
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/timer"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	closed int
}

func (m *MockConnection) Send(msgID uint16, data []byte) error       { return nil }
func (m *MockConnection) SendJSON(msgID uint16, v interface{}) error { return nil }
func (m *MockConnection) Close() error                               { m.closed++; return nil }
func (m *MockConnection) RemoteAddr() net.Addr                       { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)        {}
func (m *MockConnection) ReadPacket() (*network.Packet, error)       { return nil, nil }

// MockScheduler counts live timers without running them.
type MockScheduler struct {
	nextID int64
	live   map[int64]bool
}

func (m *MockScheduler) AddTimer(delay, interval time.Duration, callback func()) int64 {
	if m.live == nil {
		m.live = make(map[int64]bool)
	}
	m.nextID++
	m.live[m.nextID] = true
	return m.nextID
}

func (m *MockScheduler) RemoveTimer(id int64) { delete(m.live, id) }

func newTestSession(t *testing.T, id string, scheduler timer.Scheduler) (*Session, *MockConnection) {
	t.Helper()
	g, err := game.New(game.Options{
		Words:        []string{"sushi"},
		RoundSeconds: timer.RoundSeconds,
		Rand:         rand.New(rand.NewSource(1)),
		Scheduler:    scheduler,
	})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	conn := &MockConnection{}
	return NewSession(id, conn, g, scheduler, timer.Duration{Minutes: 5}), conn
}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sess, _ := newTestSession(t, "test_session_1", &MockScheduler{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrieved, exists := manager.Get("test_session_1")
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrieved != sess {
		t.Fatal("Get should return the same session instance")
	}
	if ids := manager.IDs(); len(ids) != 1 || ids[0] != "test_session_1" {
		t.Errorf("unexpected ids %v", ids)
	}

	manager.Remove("test_session_1")
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}
	if _, exists := manager.Get("test_session_1"); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_SetDurationClamps(t *testing.T) {
	sess, _ := newTestSession(t, "s", &MockScheduler{})

	if d := sess.Duration(); d.Minutes != 5 || d.Seconds != 0 {
		t.Fatalf("unexpected initial duration %+v", d)
	}

	d, view := sess.SetDuration("120", "75")
	if d.Minutes != 99 || d.Seconds != 59 {
		t.Errorf("expected clamp to 99:59, got %+v", d)
	}
	if view.Display != "99:59" {
		t.Errorf("stopped timer should show the new duration, got %q", view.Display)
	}

	d, view = sess.SetDuration("x", "")
	if d.Minutes != 0 || d.Seconds != 0 || view.Display != "00:00" {
		t.Errorf("malformed input should clamp to zero, got %+v %q", d, view.Display)
	}
	if view := sess.Timer.Start(); view.Notice != timer.NoticeNeedDuration {
		t.Errorf("expected need-duration notice, got %v", view.Notice)
	}
}

func TestSession_CloseStopsTimers(t *testing.T) {
	scheduler := &MockScheduler{}
	sess, conn := newTestSession(t, "s", scheduler)

	sess.Timer.Start()
	sess.Game.StartRound()
	if len(scheduler.live) != 2 {
		t.Fatalf("expected two live timers, got %d", len(scheduler.live))
	}

	sess.Close()
	sess.Close()
	if len(scheduler.live) != 0 {
		t.Errorf("close should release every timer, %d left", len(scheduler.live))
	}
	if conn.closed != 1 {
		t.Errorf("connection should be closed exactly once, got %d", conn.closed)
	}
}

func TestSession_View(t *testing.T) {
	sess, _ := newTestSession(t, "abc", &MockScheduler{})
	view := sess.View()
	if view.SessionID != "abc" {
		t.Errorf("unexpected id %q", view.SessionID)
	}
	if view.Timer.Display != "05:00" {
		t.Errorf("unexpected standalone display %q", view.Timer.Display)
	}
	if view.Game.Word.Display != game.DefaultMask {
		t.Errorf("secret word leaked into the view: %q", view.Game.Word.Display)
	}
}
