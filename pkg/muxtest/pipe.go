// Package muxtest provides an in-process transport for exercising peers
// without a network: two channel-backed halves of a duplex link that
// preserve message boundaries and ordering.
package muxtest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tandemwire/tandem/pkg/mux"
)

// ErrPipeClosed is returned by Send after either half is closed.
var ErrPipeClosed = errors.New("muxtest: pipe closed")

// pipeBuffer is how many messages one direction holds before Send
// blocks. Enough that tests never deadlock on unread responses.
const pipeBuffer = 64

// Pipe returns the two ends of an in-process duplex link. Messages sent
// on one end arrive at the other in order; closing either end delivers
// io.EOF to both, matching a clean transport closure.
func Pipe() (a, b mux.Transport) {
	ab := make(chan []byte, pipeBuffer)
	ba := make(chan []byte, pipeBuffer)
	doneA := make(chan struct{})
	doneB := make(chan struct{})

	a = &pipeEnd{out: ab, in: ba, localDone: doneA, remoteDone: doneB}
	b = &pipeEnd{out: ba, in: ab, localDone: doneB, remoteDone: doneA}
	return a, b
}

type pipeEnd struct {
	out chan []byte
	in  chan []byte

	closeOnce  sync.Once
	localDone  chan struct{}
	remoteDone chan struct{}
}

func (p *pipeEnd) Send(ctx context.Context, msg []byte) error {
	// Copy so the caller may reuse its buffer, as a real socket allows.
	m := make([]byte, len(msg))
	copy(m, msg)

	select {
	case <-p.localDone:
		return ErrPipeClosed
	case <-p.remoteDone:
		return ErrPipeClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.out <- m:
		return nil
	}
}

func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	// Drain delivered messages before honoring closure, so nothing the
	// counterpart sent before closing is lost.
	select {
	case m := <-p.in:
		return m, nil
	default:
	}

	select {
	case m := <-p.in:
		return m, nil
	case <-p.localDone:
		return nil, io.EOF
	case <-p.remoteDone:
		select {
		case m := <-p.in:
			return m, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.closeOnce.Do(func() { close(p.localDone) })
	return nil
}
