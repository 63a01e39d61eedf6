// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler hands out repeating callbacks. Countdowns depend on this instead
// of TimerManager so tests can fire ticks by hand.
type Scheduler interface {
	AddTimer(delay time.Duration, interval time.Duration, callback func()) int64
	RemoveTimer(timerID int64)
}

type TimerTask struct {
	ID       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	task := x.(*TimerTask)
	task.index = len(*q)
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[:n-1]
	return task
}

// TimerManager polls a min-heap of tasks on a single goroutine. Each due
// callback gets its own goroutine so a slow one cannot hold back the others.
type TimerManager struct {
	clock      clockwork.Clock
	resolution time.Duration
	queue      TimerQueue
	mutex      sync.Mutex
	nextID     int64
	done       chan struct{}
	closeOnce  sync.Once
}

// NewTimerManager starts the polling goroutine. A zero resolution defaults to
// 100ms.
func NewTimerManager(clock clockwork.Clock, resolution time.Duration) *TimerManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if resolution <= 0 {
		resolution = 100 * time.Millisecond
	}
	manager := &TimerManager{
		clock:      clock,
		resolution: resolution,
		queue:      make(TimerQueue, 0),
		nextID:     1,
		done:       make(chan struct{}),
	}
	heap.Init(&manager.queue)
	go manager.process()
	return manager
}

// AddTimer schedules callback after delay. A positive interval makes it repeat
// until RemoveTimer is called.
func (m *TimerManager) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		ID:       m.nextID,
		Execute:  m.clock.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, task)
	return task.ID
}

func (m *TimerManager) RemoveTimer(timerID int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.ID == timerID {
			heap.Remove(&m.queue, i)
			return
		}
	}
}

// Pending reports the number of scheduled tasks.
func (m *TimerManager) Pending() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Close stops the polling goroutine. Pending tasks never fire afterwards.
func (m *TimerManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *TimerManager) process() {
	ticker := m.clock.NewTicker(m.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			for _, task := range m.collectDue() {
				go task.Callback()
			}
		case <-m.done:
			return
		}
	}
}

func (m *TimerManager) collectDue() []*TimerTask {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.clock.Now()
	var due []*TimerTask
	var again []*TimerTask
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, task)
		if task.Interval > 0 {
			task.Execute = task.Execute.Add(task.Interval)
			if !task.Execute.After(now) {
				task.Execute = now.Add(task.Interval)
			}
			again = append(again, task)
		}
	}
	for _, task := range again {
		heap.Push(&m.queue, task)
	}
	return due
}
