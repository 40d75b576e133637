package mux

import (
	"sync"

	"github.com/tandemwire/tandem/pkg/wire"
)

// callResult is what a waiting caller eventually receives: reply bytes
// or a failure, never both.
type callResult struct {
	payload []byte
	err     error
}

// pending is the reply correlator: the token counter and the table of
// calls in flight. Every operation runs under one mutex so allocation,
// resolution, and bulk failure never race, however many callers and
// inbound frames hit it at once.
//
// Waiter channels are buffered with capacity 1, so resolving a call
// never blocks the dispatch loop even if the caller is slow to collect.
type pending struct {
	mu      sync.Mutex
	next    wire.Token
	waiters map[wire.Token]chan callResult
	closed  bool
	cause   error // terminal error, set by failAll
}

func newPending() *pending {
	return &pending{
		next:    1,
		waiters: make(map[wire.Token]chan callResult),
	}
}

// enqueue allocates the next token and records a waiter for it. After
// failAll it returns the terminal error instead: no call can succeed on
// a terminated peer.
func (p *pending) enqueue() (wire.Token, <-chan callResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, nil, p.cause
	}

	token := p.next
	p.next++

	ch := make(chan callResult, 1)
	p.waiters[token] = ch
	return token, ch, nil
}

// yield resolves the call at token with reply bytes and removes the
// entry. ErrInvalidToken if no such call is pending.
func (p *pending) yield(token wire.Token, payload []byte) error {
	return p.resolve(token, callResult{payload: payload})
}

// fail resolves the call at token with an error and removes the entry.
// ErrInvalidToken if no such call is pending.
func (p *pending) fail(token wire.Token, err error) error {
	return p.resolve(token, callResult{err: err})
}

func (p *pending) resolve(token wire.Token, res callResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.waiters[token]
	if !ok {
		return ErrInvalidToken
	}
	delete(p.waiters, token)
	ch <- res
	return nil
}

// cancel withdraws the waiter at token without resolving it. The caller
// gave up (timeout, context cancellation); a response arriving later
// finds no entry and surfaces as ErrInvalidToken at the error hook
// instead of succeeding against a stale waiter.
func (p *pending) cancel(token wire.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.waiters, token)
}

// failAll resolves every pending call with err, clears the table, and
// closes it against further enqueues. Called exactly once, when the
// transport terminates.
func (p *pending) failAll(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.cause = err

	for token, ch := range p.waiters {
		delete(p.waiters, token)
		ch <- callResult{err: err}
	}
}

// outstanding reports how many calls are awaiting replies.
func (p *pending) outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiters)
}
