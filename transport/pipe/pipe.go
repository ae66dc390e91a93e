// Package pipe provides in-memory connections and a dialer over them.
//
// The idea is borrowed from net.Pipe, but deadlines run on an injected
// [clock.Clock] so tests can control them.
package pipe

import (
	"io"
	"sync"
	"time"

	"http-client/transport"

	"github.com/benbjohnson/clock"
)

// conn is one end of a synchronous, unbuffered pipe.
// A Write blocks until the other end has read every byte of it.
type conn struct {
	stream chan []byte // what this end reads from.
	nc     chan int    // how much the other end consumed of our last write.

	writeMu sync.Mutex

	closed chan struct{}
	once   sync.Once

	rdeadLine *chanDeadLine
	wdeadLine *chanDeadLine

	peer *conn
}

var _ transport.Conn = (*conn)(nil)

// Pipe creates a connected pair.
func Pipe(clock clock.Clock) (transport.Conn, transport.Conn) {
	c1, c2 := newConn(clock), newConn(clock)
	c1.peer, c2.peer = c2, c1
	return c1, c2
}

func newConn(clock clock.Clock) *conn {
	return &conn{
		stream:    make(chan []byte),
		nc:        make(chan int),
		closed:    make(chan struct{}),
		rdeadLine: newChanDeadLine(clock),
		wdeadLine: newChanDeadLine(clock),
	}
}

func (c *conn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *conn) Read(b []byte) (int, error) {
	switch {
	case isClosed(c.closed):
		return 0, transport.ErrConnClosed
	case isClosed(c.peer.closed):
		return 0, io.EOF
	case isClosed(c.rdeadLine.wait()):
		return 0, transport.ErrDeadLineExceeded
	}

	select {
	case received := <-c.stream:
		n := copy(b, received)
		c.peer.nc <- n
		return n, nil
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.peer.closed:
		return 0, io.EOF
	case <-c.rdeadLine.wait():
		return 0, transport.ErrDeadLineExceeded
	}
}

func (c *conn) Write(b []byte) (int, error) {
	switch {
	case isClosed(c.closed), isClosed(c.peer.closed):
		return 0, transport.ErrConnClosed
	case isClosed(c.wdeadLine.wait()):
		return 0, transport.ErrDeadLineExceeded
	}

	if len(b) == 0 {
		return 0, nil
	}

	// Writes must not interleave.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	nn := 0
	for len(b) > 0 {
		select {
		case c.peer.stream <- b:
			n := <-c.nc
			b = b[n:]
			nn += n
		case <-c.closed:
			return nn, transport.ErrConnClosed
		case <-c.peer.closed:
			return nn, transport.ErrConnClosed
		case <-c.wdeadLine.wait():
			return nn, transport.ErrDeadLineExceeded
		}
	}

	return nn, nil
}

func (c *conn) SetReadDeadLine(t time.Time)  { c.rdeadLine.set(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { c.wdeadLine.set(t) }

// chanDeadLine closes its channel once the deadline passes.
type chanDeadLine struct {
	clock clock.Clock

	m      sync.Mutex
	timer  *clock.Timer
	expire chan struct{}
}

func newChanDeadLine(clock clock.Clock) *chanDeadLine {
	return &chanDeadLine{
		clock:  clock,
		expire: make(chan struct{}),
	}
}

func (d *chanDeadLine) set(t time.Time) {
	d.m.Lock()
	defer d.m.Unlock()

	if d.timer != nil && !d.timer.Stop() {
		// The timer fired already; start over with a fresh channel.
		d.expire = make(chan struct{})
	} else if isClosed(d.expire) {
		d.expire = make(chan struct{})
	}
	d.timer = nil

	if t.IsZero() {
		return
	}

	expire := d.expire
	dur := d.clock.Until(t)
	if dur <= 0 {
		close(expire)
		return
	}

	d.timer = d.clock.AfterFunc(dur, func() { close(expire) })
}

func (d *chanDeadLine) wait() <-chan struct{} {
	d.m.Lock()
	defer d.m.Unlock()
	return d.expire
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
