package pipe

import (
	"context"
	"sync"

	"http-client/transport"

	"github.com/benbjohnson/clock"
)

type dialRequest struct {
	conn     transport.Conn
	accepted chan struct{}
}

// Dialer connects to listeners registered on itself.
// The scheme of an address is part of it, so "https" dials need their own listener.
type Dialer struct {
	listeners map[transport.Addr]*Listener
	clock     clock.Clock

	mu sync.Mutex
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer(clock clock.Clock) *Dialer {
	return &Dialer{
		listeners: make(map[transport.Addr]*Listener),
		clock:     clock,
	}
}

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	d.mu.Lock()
	listener, ok := d.listeners[addr]
	d.mu.Unlock()

	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	local, remote := Pipe(d.clock)

	req := dialRequest{conn: remote, accepted: make(chan struct{})}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-req.accepted:
	}

	return local, nil
}

func (d *Dialer) Listen(addr transport.Addr) (*Listener, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	l := &Listener{
		addr:     addr,
		dialer:   d,
		requests: make(chan dialRequest),
		closed:   make(chan struct{}),
	}
	d.listeners[addr] = l

	return l, nil
}

type Listener struct {
	addr   transport.Addr
	dialer *Dialer

	requests chan dialRequest
	closed   chan struct{}

	once sync.Once
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() transport.Addr { return l.addr }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case req := <-l.requests:
		close(req.accepted)
		return req.conn, nil
	}
}

// Close stops accepting. Connections already accepted stay open.
func (l *Listener) Close() error {
	err := transport.ErrConnListenerClosed
	l.once.Do(func() {
		close(l.closed)

		l.dialer.mu.Lock()
		delete(l.dialer.listeners, l.addr)
		l.dialer.mu.Unlock()

		err = nil
	})
	return err
}
