package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local sliding-window limiter. Its counters live in this
// process only: with more than one API instance each instance enforces the
// limit independently, so the effective limit is multiplied by the instance
// count. Use Redis when the API is scaled out.
type Memory struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	clock    func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemory creates the limiter and starts its eviction loop. Call Close when
// the server shuts down.
func NewMemory(cfg Config) *Memory {
	m := newMemory(cfg, time.Now)
	go m.cleanupLoop()
	return m
}

func newMemory(cfg Config, clock func() time.Time) *Memory {
	return &Memory{
		requests: make(map[string][]time.Time),
		limit:    cfg.Limit,
		window:   cfg.Window,
		clock:    clock,
		stop:     make(chan struct{}),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.limit <= 0 || m.window <= 0 {
		return true, nil
	}

	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	valid := m.prune(m.requests[key], now)
	if len(valid) >= m.limit {
		m.requests[key] = valid
		return false, nil
	}
	m.requests[key] = append(valid, now)
	return true, nil
}

// Close stops the eviction loop. It is safe to call more than once.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Memory) cleanupLoop() {
	interval := m.window
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, times := range m.requests {
		valid := m.prune(times, now)
		if len(valid) == 0 {
			delete(m.requests, key)
		} else {
			m.requests[key] = valid
		}
	}
}

func (m *Memory) prune(times []time.Time, now time.Time) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if now.Sub(t) < m.window {
			valid = append(valid, t)
		}
	}
	return valid
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
