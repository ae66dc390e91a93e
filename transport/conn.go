package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnRefused        = errors.New("connection refused")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrAddrAlreadyInUse   = errors.New("address already in use")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
)

// Conn is a connected byte stream.
//
// Read returns io.EOF once the peer has closed its side and every byte it
// sent has been read. Reading or writing after Close fails with [ErrConnClosed].
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	// A zero time means no deadline.
	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}

// HandshakeError reports that a secure stream could not be established
// over an otherwise working connection.
type HandshakeError struct {
	Addr  Addr
	Cause error
}

func (e *HandshakeError) Error() string {
	return "handshake with " + e.Addr.String() + " failed: " + e.Cause.Error()
}

func (e *HandshakeError) Unwrap() error { return e.Cause }
