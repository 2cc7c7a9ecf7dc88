package ws

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/service"
)

// Broadcaster is the slice of the hub the scheduler needs; tests use a
// recording fake.
type Broadcaster interface {
	Emit(room, event string, data interface{})
	RoomSize(room string) int
}

// Scheduler owns the dashboard push loop lifecycle: started when the first
// admin joins, stopped when the last one leaves. An in-flight guard skips a
// tick entirely if the previous one is still computing, never queueing.
type Scheduler struct {
	interval time.Duration
	source   service.DashboardService
	out      Broadcaster

	// tick is replaceable so tests can drive the loop with a fake clock.
	tick func(d time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	running bool
	stop    chan struct{}

	inFlight atomic.Bool
}

func NewScheduler(interval time.Duration, source service.DashboardService, out Broadcaster) *Scheduler {
	return &Scheduler{
		interval: interval,
		source:   source,
		out:      out,
		tick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.run(s.stop)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Force pushes immediately, bypassing the empty-room check (a joining admin
// should not wait a full interval) but not the in-flight guard.
func (s *Scheduler) Force() {
	s.Push(true)
}

func (s *Scheduler) Push(force bool) {
	if !force && s.out.RoomSize(AdminRoom) == 0 {
		return
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer s.inFlight.Store(false)

	snapshot, err := s.source.Snapshot(context.Background())
	if err != nil {
		log.Printf("[ws] dashboard snapshot: %v", err)
		return
	}
	s.out.Emit(AdminRoom, "dashboard:update", snapshot)
}

func (s *Scheduler) run(stop chan struct{}) {
	ticks, cancel := s.tick(s.interval)
	defer cancel()
	for {
		select {
		case <-stop:
			return
		case <-ticks:
			s.Push(false)
		}
	}
}
