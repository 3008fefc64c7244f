package clustermux

import (
	"time"

	"github.com/clustermux-go/clustermux/internal/clog"
)

// reactorSignal is the combined capability a concrete Reactor
// implementation must provide: spec.md §4.7 installs "the cross-thread
// signal bound to the reactor" as a single initialization step, so the
// core requires one value satisfying both roles rather than wiring two
// independently-constructed collaborators together.
type reactorSignal interface {
	Reactor
	Signal
}

// config is resolved from Option values by New, mirroring the corpus's
// loopOptions/loggerConfig pattern: a private struct populated by public
// functional options, then validated.
type config struct {
	protocol     ProtocolClient
	messagePool  MessagePool
	reactor      reactorSignal
	tickInterval time.Duration
	log          *clog.Logger
}

// Option configures a Context constructed via New.
type Option func(*config)

// WithProtocolClient supplies the cluster protocol client collaborator
// (spec.md §1's out-of-scope "protocol client capability"). Required: New
// returns ErrUnexpected if omitted.
func WithProtocolClient(p ProtocolClient) Option {
	return func(c *config) { c.protocol = p }
}

// WithMessagePool supplies the message buffer pool collaborator. Required:
// New returns ErrUnexpected if omitted.
func WithMessagePool(p MessagePool) Option {
	return func(c *config) { c.messagePool = p }
}

// WithReactor supplies a Reactor+Signal pair. If omitted, New uses a
// portable timer-based default (internal/reactor.TimerReactor).
func WithReactor(r reactorSignal) Option {
	return func(c *config) { c.reactor = r }
}

// WithTickInterval sets the reactor loop's RunFor duration (spec.md §4.7's
// "run the reactor for one tick interval"). Defaults to 5ms.
func WithTickInterval(d time.Duration) Option {
	return func(c *config) { c.tickInterval = d }
}

// WithLogger supplies a structured logger. Defaults to a no-op logger so
// New never requires logging configuration to succeed.
func WithLogger(l *clog.Logger) Option {
	return func(c *config) { c.log = l }
}

func resolveConfig(opts []Option) *config {
	c := &config{
		tickInterval: 5 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}
