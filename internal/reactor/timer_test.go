package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerReactorNotifyWakesRunFor(t *testing.T) {
	r := NewTimerReactor()
	defer r.Close()

	done := make(chan struct{})
	go func() {
		_ = r.RunFor(time.Minute)
		close(done)
	}()

	// Give RunFor a moment to block before notifying.
	time.Sleep(10 * time.Millisecond)
	r.Notify()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify did not wake a blocked RunFor")
	}
}

func TestTimerReactorRunForTimesOut(t *testing.T) {
	r := NewTimerReactor()
	defer r.Close()

	start := time.Now()
	_ = r.RunFor(10 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTimerReactorNotifyCollapsesBursts(t *testing.T) {
	r := NewTimerReactor()
	defer r.Close()

	r.Notify()
	r.Notify()
	r.Notify()

	// A single buffered slot: the first RunFor drains it instantly...
	start := time.Now()
	_ = r.RunFor(time.Minute)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// ...and a second RunFor, with nothing further queued, must block for
	// the full duration (up to a short deadline we actually wait out).
	start = time.Now()
	_ = r.RunFor(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTimerReactorCloseIsIdempotent(t *testing.T) {
	r := NewTimerReactor()
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}

func TestTimerReactorRunForAfterCloseReturnsImmediately(t *testing.T) {
	r := NewTimerReactor()
	_ = r.Close()

	start := time.Now()
	_ = r.RunFor(time.Minute)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
