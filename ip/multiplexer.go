//go:build linux || darwin

package ip

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/chabad360/go-oscpack/internal/monitoring"
)

// DefaultReceiveBufferSize is the largest UDP payload over IPv4. Datagrams
// longer than the receive buffer are logged and dropped.
const DefaultReceiveBufferSize = 65507

// stopSentinel is a datagram payload that stops a multiplexer created with
// WithStopSentinel(true).
const stopSentinel = "__stop_\x00"

type pollFunc func(fds []unix.PollFd, timeoutMs int) (int, error)

// Option configures a SocketReceiveMultiplexer.
type Option func(*SocketReceiveMultiplexer) error

// WithClock replaces the clock timers are scheduled against.
func WithClock(c Clock) Option {
	return func(m *SocketReceiveMultiplexer) error {
		if c == nil {
			return errors.New("WithClock: nil clock")
		}
		m.clock = c
		return nil
	}
}

// WithReceiveBufferSize sets the size of the largest datagram that is
// dispatched.
func WithReceiveBufferSize(n int) Option {
	return func(m *SocketReceiveMultiplexer) error {
		if n <= 0 {
			return fmt.Errorf("WithReceiveBufferSize: invalid size %d", n)
		}
		m.bufferSize = n
		return nil
	}
}

// WithStopSentinel makes the loop stop when any transport receives the
// 8-byte datagram "__stop_\x00". Off by default: anyone able to send to the
// socket can stop the loop.
func WithStopSentinel(on bool) Option {
	return func(m *SocketReceiveMultiplexer) error {
		m.stopSentinel = on
		return nil
	}
}

func withPoll(f pollFunc) Option {
	return func(m *SocketReceiveMultiplexer) error {
		m.poll = f
		return nil
	}
}

type socketRegistration struct {
	transport Transport
	listener  PacketListener
}

// descriptorGroup holds every listener attached to one descriptor, in attach
// order. The descriptor is read once per pass.
type descriptorGroup struct {
	fd        int
	transport Transport
	listeners []PacketListener
}

func groupByDescriptor(regs []socketRegistration) []descriptorGroup {
	var groups []descriptorGroup
	for _, r := range regs {
		fd := r.transport.Fd()
		i := slices.IndexFunc(groups, func(g descriptorGroup) bool { return g.fd == fd })
		if i < 0 {
			groups = append(groups, descriptorGroup{fd: fd, transport: r.transport})
			i = len(groups) - 1
		}
		groups[i].listeners = append(groups[i].listeners, r.listener)
	}
	return groups
}

// SocketReceiveMultiplexer waits on a set of transports and dispatches each
// received datagram to the transport's PacketListener. It also runs periodic
// TimerListeners. Everything happens on the goroutine that calls Run.
//
// Within one pass of the loop every ready descriptor is read once before any
// due timer fires, and each datagram goes to every listener attached to that
// descriptor, and timers fire in order of their scheduled time. A timer
// is rescheduled one period after its previous scheduled time, and fires at
// most once per pass however late it is.
//
// Only AsynchronousBreak may be called from another goroutine while Run is
// active. Attach and Detach calls take effect on the next Run. Listeners must
// not modify the data they are given.
type SocketReceiveMultiplexer struct {
	socketListeners []socketRegistration
	timerListeners  []timerRegistration

	brk     atomic.Bool
	running atomic.Bool

	mu   sync.Mutex // guards pipe
	pipe *breakPipe

	clock        Clock
	poll         pollFunc
	bufferSize   int
	stopSentinel bool
}

// NewSocketReceiveMultiplexer returns an idle multiplexer. The error is a
// *LoopSetupError if the wakeup pipe could not be created.
func NewSocketReceiveMultiplexer(opts ...Option) (*SocketReceiveMultiplexer, error) {
	m := &SocketReceiveMultiplexer{
		clock:      realClock{},
		poll:       unix.Poll,
		bufferSize: DefaultReceiveBufferSize,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	p, err := newBreakPipe()
	if err != nil {
		return nil, &LoopSetupError{Err: err}
	}
	m.pipe = p
	return m, nil
}

// Running reports whether Run is active.
func (m *SocketReceiveMultiplexer) Running() bool { return m.running.Load() }

// AttachSocketListener registers l for datagrams arriving on t. Attaching the
// same pair twice panics.
func (m *SocketReceiveMultiplexer) AttachSocketListener(t Transport, l PacketListener) {
	if m.findSocketListener(t, l) >= 0 {
		panic("ip: socket listener attached twice")
	}
	m.socketListeners = append(m.socketListeners, socketRegistration{transport: t, listener: l})
}

// DetachSocketListener removes a pair registered by AttachSocketListener. It
// panics if the pair is not registered.
func (m *SocketReceiveMultiplexer) DetachSocketListener(t Transport, l PacketListener) {
	i := m.findSocketListener(t, l)
	if i < 0 {
		panic("ip: detaching a socket listener that is not attached")
	}
	m.socketListeners = slices.Delete(m.socketListeners, i, i+1)
}

func (m *SocketReceiveMultiplexer) findSocketListener(t Transport, l PacketListener) int {
	return slices.IndexFunc(m.socketListeners, func(r socketRegistration) bool {
		return same(r.transport, t) && same(r.listener, l)
	})
}

// AttachPeriodicTimerListener registers l to be called every period, starting
// one period after Run begins. period must be positive.
func (m *SocketReceiveMultiplexer) AttachPeriodicTimerListener(period time.Duration, l TimerListener) {
	m.AttachPeriodicTimerListenerWithDelay(period, period, l)
}

// AttachPeriodicTimerListenerWithDelay registers l to be called initialDelay
// after Run begins and every period after that. period must be positive.
func (m *SocketReceiveMultiplexer) AttachPeriodicTimerListenerWithDelay(initialDelay, period time.Duration, l TimerListener) {
	if period <= 0 {
		panic("ip: non-positive timer period")
	}
	m.timerListeners = append(m.timerListeners, timerRegistration{
		initialDelay: initialDelay,
		period:       period,
		listener:     l,
	})
}

// DetachPeriodicTimerListener removes the first registration of l. It panics
// if l is not registered.
func (m *SocketReceiveMultiplexer) DetachPeriodicTimerListener(l TimerListener) {
	i := slices.IndexFunc(m.timerListeners, func(r timerRegistration) bool {
		return same(r.listener, l)
	})
	if i < 0 {
		panic("ip: detaching a timer listener that is not attached")
	}
	m.timerListeners = slices.Delete(m.timerListeners, i, i+1)
}

// same compares two listener or transport values without panicking on
// uncomparable dynamic types such as funcs.
func same(a, b interface{}) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// Run waits for and dispatches datagrams and timers until Break or
// AsynchronousBreak is called, or a registered transport receives the stop
// sentinel if enabled. A break requested while the multiplexer is idle makes
// the next Run return immediately.
//
// Errors returned by listeners, and panics raised by them, are logged and do
// not stop the loop. Run only fails if poll(2) does.
func (m *SocketReceiveMultiplexer) Run() error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	m.mu.Lock()
	pipe := m.pipe
	m.mu.Unlock()
	if pipe == nil {
		m.running.Store(false)
		return ErrClosed
	}
	defer func() {
		pipe.drain()
		m.brk.Store(false)
		m.running.Store(false)
	}()

	groups := groupByDescriptor(m.socketListeners)
	fds := make([]unix.PollFd, 0, len(groups)+1)
	fds = append(fds, unix.PollFd{Fd: int32(pipe.r), Events: unix.POLLIN})
	for _, g := range groups {
		fds = append(fds, unix.PollFd{Fd: int32(g.fd), Events: unix.POLLIN})
	}

	timers := newTimerQueue(m.clock.Now(), m.timerListeners)
	// one spare byte tells a datagram that filled the buffer from a longer one
	data := make([]byte, m.bufferSize+1)

	for !m.brk.Load() {
		timeout := -1
		if deadline, ok := timers.deadline(); ok {
			timeout = pollTimeout(deadline.Sub(m.clock.Now()))
		}

		for i := range fds {
			fds[i].Revents = 0
		}
		if _, err := m.poll(fds, timeout); err != nil {
			if m.brk.Load() {
				break
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("Run: poll: %w", err)
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			pipe.drain()
		}
		if m.brk.Load() {
			break
		}

		for i, g := range groups {
			ev := fds[i+1].Revents
			if ev&unix.POLLNVAL != 0 {
				monitoring.Logf("ip: descriptor %d is no longer open, ignoring it", fds[i+1].Fd)
				fds[i+1].Fd = -1
				continue
			}
			if ev&(unix.POLLIN|unix.POLLERR|unix.POLLHUP) == 0 {
				continue
			}
			m.receive(g, data)
			if m.brk.Load() {
				break
			}
		}
		if m.brk.Load() {
			break
		}

		timers.fireDue(m.clock.Now(), func(l TimerListener) bool {
			m.expire(l)
			return m.brk.Load()
		})
	}

	return nil
}

// pollTimeout rounds d up to whole milliseconds so the loop never wakes
// before a timer is due.
func pollTimeout(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

// receive reads one datagram from g and hands it to each of g's listeners
// until a break is requested.
func (m *SocketReceiveMultiplexer) receive(g descriptorGroup, data []byte) {
	n, remote := g.transport.ReceiveFrom(data)
	if n == 0 {
		return
	}
	if n > m.bufferSize {
		monitoring.Logf("ip: dropping datagram from %s: longer than %d bytes", remote, m.bufferSize)
		return
	}
	if m.stopSentinel && n == len(stopSentinel) && string(data[:n]) == stopSentinel {
		m.brk.Store(true)
		return
	}
	for _, l := range g.listeners {
		m.dispatch(l, data[:n], remote)
		if m.brk.Load() {
			return
		}
	}
}

func (m *SocketReceiveMultiplexer) dispatch(l PacketListener, data []byte, remote Endpoint) {
	defer func() {
		if err := recover(); err != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			monitoring.Logf("ip: panic processing packet from %s: %v\n%s", remote, err, buf)
		}
	}()
	if err := l.ProcessPacket(data, remote); err != nil {
		monitoring.Logf("ip: processing packet from %s: %v", remote, err)
	}
}

func (m *SocketReceiveMultiplexer) expire(l TimerListener) {
	defer func() {
		if err := recover(); err != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			monitoring.Logf("ip: panic in timer listener: %v\n%s", err, buf)
		}
	}()
	l.TimerExpired()
}

// Break stops Run at its next check point. Call it from a listener or from
// the goroutine that owns the multiplexer.
func (m *SocketReceiveMultiplexer) Break() {
	m.brk.Store(true)
}

// AsynchronousBreak stops Run from any goroutine, waking it if it is blocked.
// It may race with Close.
func (m *SocketReceiveMultiplexer) AsynchronousBreak() {
	m.brk.Store(true)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pipe == nil {
		return
	}
	if err := m.pipe.signal(); err != nil {
		monitoring.Logf("ip: writing to break pipe: %v", err)
	}
}

// Close releases the wakeup pipe. It fails with ErrRunning while Run is active.
// Calling it more than once is a no-op.
func (m *SocketReceiveMultiplexer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Load() {
		return ErrRunning
	}
	if m.pipe == nil {
		return nil
	}
	err := m.pipe.close()
	m.pipe = nil
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return nil
}
