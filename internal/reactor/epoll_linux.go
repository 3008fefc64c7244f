//go:build linux

package reactor

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// EpollReactor is a Linux-native Reactor+Signal pair: an eventfd provides
// the cross-thread Signal, and RunFor blocks in epoll_wait on that single
// descriptor with a millisecond timeout. This mirrors the teacher corpus's
// eventloop.FastPoller (poller_linux.go) and createWakeFd (wakeup_linux.go)
// pattern, reduced to the one descriptor the core's reactor loop actually
// needs: a wake-up, not general I/O readiness.
type EpollReactor struct {
	epfd   int
	wakeFd int
	closed atomic.Bool
	once   sync.Once
}

// NewEpollReactor creates an epoll instance and an eventfd registered for
// read-readiness, returning ErrSystemResources-class failures as plain
// errors for the caller to wrap.
func NewEpollReactor() (*EpollReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakeFd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, err
	}
	return &EpollReactor{epfd: epfd, wakeFd: wakeFd}, nil
}

// RunFor blocks in epoll_wait for up to d, draining the eventfd counter if
// the wake-up fired.
func (r *EpollReactor) RunFor(d time.Duration) error {
	if r.closed.Load() {
		return nil
	}
	timeoutMS := int(d / time.Millisecond)
	if d > 0 && timeoutMS == 0 {
		timeoutMS = 1
	}
	var events [1]unix.EpollEvent
	n, err := unix.EpollWait(r.epfd, events[:], timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	if n > 0 {
		var buf [8]byte
		for {
			if _, err := unix.Read(r.wakeFd, buf[:]); err != nil {
				break
			}
		}
	}
	return nil
}

// Notify increments the eventfd counter by 1, waking any in-progress or
// future epoll_wait on it.
func (r *EpollReactor) Notify() {
	if r.closed.Load() {
		return
	}
	var buf [8]byte
	buf[0] = 1
	_, _ = unix.Write(r.wakeFd, buf[:])
}

// Close releases the epoll instance and eventfd. Idempotent.
func (r *EpollReactor) Close() error {
	var err error
	r.once.Do(func() {
		r.closed.Store(true)
		if e := unix.Close(r.wakeFd); e != nil {
			err = e
		}
		if e := unix.Close(r.epfd); e != nil {
			err = e
		}
	})
	return err
}
