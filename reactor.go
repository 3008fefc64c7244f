package clustermux

import "time"

// Reactor is the out-of-scope "reactor/I/O engine" capability assumed by
// spec.md §1: "a reactor capability with run_for(duration) and a
// cross-thread signal primitive." The reactor goroutine calls RunFor once
// per loop iteration; a concrete implementation may use it purely as a
// sleep, or to also drive real I/O for a ProtocolClient built on top of
// it.
type Reactor interface {
	// RunFor blocks for up to d, returning early if Notify has been
	// called on the bound Signal since the last RunFor returned.
	RunFor(d time.Duration) error

	// Close releases the reactor's resources. Called once, during
	// shutdown, after the reactor goroutine has exited.
	Close() error
}

// Signal is a cross-thread wake-up primitive bound to a Reactor at
// construction time (spec.md §6's "init(reactor, on_signal)"). Producer
// goroutines call Notify after pushing to the submission stack; it is
// wait-free with respect to the reactor goroutine.
type Signal interface {
	// Notify wakes any in-progress or future RunFor call promptly.
	Notify()

	// Close releases the signal's resources.
	Close() error
}
