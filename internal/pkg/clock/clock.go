package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Until(t time.Time) time.Duration
}

type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *RealClock) Until(t time.Time) time.Duration {
	return time.Until(t)
}

// MockClock is a settable clock for tests. It is safe for concurrent use.
type MockClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{
		currentTime: t.UTC(),
	}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *MockClock) Until(t time.Time) time.Duration {
	return t.Sub(c.Now())
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.mu.Unlock()
}

func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t.UTC()
	c.mu.Unlock()
}
