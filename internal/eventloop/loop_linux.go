//go:build linux

package eventloop

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/framepace/framepace/pkg/logger"
)

// epollLoop multiplexes timerfd wakeups through a single epoll instance.
// An eventfd wakes the poller for shutdown.
type epollLoop struct {
	log    logger.Logger
	epfd   int
	wakeFd int

	mu     sync.Mutex
	timers map[int32]*fdTimer
	closed bool
}

func newPlatformLoop(l logger.Logger) (Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(wakeFd),
	}); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, err
	}
	return &epollLoop{
		log:    l,
		epfd:   epfd,
		wakeFd: wakeFd,
		timers: make(map[int32]*fdTimer),
	}, nil
}

func (lp *epollLoop) AddTimer(w Waitable) (Timer, error) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.closed {
		return nil, ErrClosed
	}

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, err
	}
	if err := unix.EpollCtl(lp.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}); err != nil {
		unix.Close(fd)
		return nil, err
	}

	t := &fdTimer{loop: lp, fd: fd, w: w}
	lp.timers[int32(fd)] = t
	return t, nil
}

func (lp *epollLoop) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			lp.wake()
		case <-stop:
		}
	}()

	events := make([]unix.EpollEvent, 16)
	var buf [8]byte
	for {
		n, err := unix.EpollWait(lp.epfd, events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			fd := events[i].Fd
			if fd == int32(lp.wakeFd) {
				_, _ = unix.Read(lp.wakeFd, buf[:])
				return ctx.Err()
			}

			lp.mu.Lock()
			t := lp.timers[fd]
			closed := lp.closed
			lp.mu.Unlock()
			if closed {
				return nil
			}
			if t == nil {
				continue
			}
			// Drain the expiration count; each readable edge is one
			// wakeup regardless of how late we are.
			_, _ = unix.Read(int(fd), buf[:])
			t.w.OnPollIn()
		}
	}
}

func (lp *epollLoop) Close() error {
	lp.mu.Lock()
	if lp.closed {
		lp.mu.Unlock()
		return nil
	}
	lp.closed = true
	timers := make([]*fdTimer, 0, len(lp.timers))
	for _, t := range lp.timers {
		timers = append(timers, t)
	}
	lp.mu.Unlock()

	for _, t := range timers {
		_ = t.Close()
	}
	lp.wake()
	unix.Close(lp.wakeFd)
	return unix.Close(lp.epfd)
}

// wake nudges the poller via the eventfd.
func (lp *epollLoop) wake() {
	one := [8]byte{0: 1}
	_, _ = unix.Write(lp.wakeFd, one[:])
}

// fdTimer is a timerfd owned by an epollLoop.
type fdTimer struct {
	loop *epollLoop
	w    Waitable

	mu     sync.Mutex
	fd     int
	closed bool
}

// Arm registers an absolute CLOCK_MONOTONIC deadline. A zero deadline would
// disarm the timerfd, so it is bumped to the smallest armable value.
func (t *fdTimer) Arm(deadlineNanos uint64) {
	if deadlineNanos == 0 {
		deadlineNanos = 1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	it := unix.ItimerSpec{Value: unix.NsecToTimespec(int64(deadlineNanos))}
	if err := unix.TimerfdSettime(t.fd, unix.TFD_TIMER_ABSTIME, &it, nil); err != nil {
		t.loop.log.Error("timerfd settime: %v", err)
	}
}

// Disarm cancels any pending deadline.
func (t *fdTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	var it unix.ItimerSpec
	if err := unix.TimerfdSettime(t.fd, 0, &it, nil); err != nil {
		t.loop.log.Error("timerfd settime: %v", err)
	}
}

func (t *fdTimer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	fd := t.fd
	t.mu.Unlock()

	t.loop.mu.Lock()
	delete(t.loop.timers, int32(fd))
	t.loop.mu.Unlock()

	_ = unix.EpollCtl(t.loop.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	return unix.Close(fd)
}
