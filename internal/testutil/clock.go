package testutil

import "sync"

// StepClock numbers scenario steps. The first call to Next returns 1.
//
// Trace sequence numbers come from a StepClock rather than wall time, so two
// runs of the same scenario produce identical traces.
type StepClock struct {
	mu  sync.Mutex
	seq int64
}

// NewStepClock creates a clock at zero.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Next advances the clock and returns the new step number.
func (c *StepClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last step number handed out, or 0.
func (c *StepClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset returns the clock to zero.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
