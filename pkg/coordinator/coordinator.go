// Package coordinator arbitrates between audio-producing surfaces. The
// inline waveform scrubber and the fullscreen player share one speaker;
// whichever starts playing stops everyone else first.
package coordinator

import (
	"log/slog"
	"sync"
)

// Coordinator is a process-wide registry of stop callbacks keyed by owner.
type Coordinator struct {
	mu    sync.Mutex
	stops map[string]func()
}

// New creates an empty coordinator.
func New() *Coordinator {
	return &Coordinator{stops: make(map[string]func())}
}

// RegisterStopCallback registers fn to be invoked when another owner
// claims playback. Re-registering replaces the previous callback.
func (c *Coordinator) RegisterStopCallback(ownerKey string, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops[ownerKey] = fn
}

// Unregister removes an owner's callback, typically on surface teardown.
func (c *Coordinator) Unregister(ownerKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stops, ownerKey)
}

// StopAllExcept invokes every registered stop callback except ownerKey's.
// Callbacks run outside the lock so a stopping surface may re-enter the
// coordinator.
func (c *Coordinator) StopAllExcept(ownerKey string) {
	c.mu.Lock()
	var fns []func()
	for key, fn := range c.stops {
		if key != ownerKey && fn != nil {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()

	if len(fns) > 0 {
		slog.Debug("Coordinator: stopping other playback surfaces", "claimed_by", ownerKey, "stopped", len(fns))
	}
	for _, fn := range fns {
		fn()
	}
}
