package service

import (
	"sync/atomic"
	"time"
)

// State — наблюдаемое снаружи состояние конвейера. Пишет только
// event-диспетчер, читает HTTP-хендлер; всё на атомиках.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	gatewayUp         atomic.Bool
	lastTickUnix      atomic.Int64
	lastHeartbeatUnix atomic.Int64
	barsM1            atomic.Int64
	barsM5            atomic.Int64
	halted            atomic.Bool
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetGatewayUp(v bool) { s.gatewayUp.Store(v) }
func (s *State) GatewayUp() bool     { return s.gatewayUp.Load() }

func (s *State) SetHalted(v bool) { s.halted.Store(v) }
func (s *State) Halted() bool     { return s.halted.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time   { return unixOrZero(s.lastTickUnix.Load()) }

// TouchHeartbeat фиксирует heartbeat воркера вместе со счётчиками баров.
// Отсутствие свежего heartbeat — признак зависшего конвейера.
func (s *State) TouchHeartbeat(t time.Time, barsM1, barsM5 int) {
	s.lastHeartbeatUnix.Store(t.Unix())
	s.barsM1.Store(int64(barsM1))
	s.barsM5.Store(int64(barsM5))
}

func (s *State) LastHeartbeat() time.Time { return unixOrZero(s.lastHeartbeatUnix.Load()) }
func (s *State) Bars() (m1, m5 int)       { return int(s.barsM1.Load()), int(s.barsM5.Load()) }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func unixOrZero(u int64) time.Time {
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}
