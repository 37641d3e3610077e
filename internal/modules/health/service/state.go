package service

import (
	"sync/atomic"
	"time"
)

// State — наблюдаемое состояние движка для health-проб.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastCycleUnix atomic.Int64 // unix seconds
	cyclesRun     atomic.Int64
	cyclesSkipped atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// TouchCycle отмечает завершение торгового цикла.
func (s *State) TouchCycle(t time.Time) {
	s.lastCycleUnix.Store(t.Unix())
	s.cyclesRun.Add(1)
}

// MarkSkipped — триггер пришёл, пока предыдущий цикл ещё работал.
func (s *State) MarkSkipped() { s.cyclesSkipped.Add(1) }

func (s *State) LastCycle() time.Time {
	u := s.lastCycleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) CyclesRun() int64     { return s.cyclesRun.Load() }
func (s *State) CyclesSkipped() int64 { return s.cyclesSkipped.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
