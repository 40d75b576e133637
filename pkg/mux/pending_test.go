package mux

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/tandemwire/tandem/pkg/wire"
)

func TestPendingTokensStartAtOne(t *testing.T) {
	p := newPending()

	for want := wire.Token(1); want <= 3; want++ {
		token, _, err := p.enqueue()
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		if token != want {
			t.Errorf("token = %d, want %d", token, want)
		}
	}
}

func TestPendingYieldResolvesOnce(t *testing.T) {
	p := newPending()

	token, waiter, err := p.enqueue()
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := p.yield(token, []byte("reply")); err != nil {
		t.Fatalf("yield: %v", err)
	}

	res := <-waiter
	if res.err != nil {
		t.Fatalf("waiter got error: %v", res.err)
	}
	if !bytes.Equal(res.payload, []byte("reply")) {
		t.Errorf("payload = %q, want %q", res.payload, "reply")
	}

	// Second resolution must find no entry.
	if err := p.yield(token, nil); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("second yield = %v, want ErrInvalidToken", err)
	}
	if err := p.fail(token, errors.New("late")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("fail after yield = %v, want ErrInvalidToken", err)
	}
}

func TestPendingFail(t *testing.T) {
	p := newPending()

	token, waiter, err := p.enqueue()
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	boom := errors.New("boom")
	if err := p.fail(token, boom); err != nil {
		t.Fatalf("fail: %v", err)
	}

	res := <-waiter
	if !errors.Is(res.err, boom) {
		t.Errorf("waiter error = %v, want %v", res.err, boom)
	}
	if p.outstanding() != 0 {
		t.Errorf("outstanding = %d, want 0", p.outstanding())
	}
}

func TestPendingUnknownToken(t *testing.T) {
	p := newPending()

	if err := p.yield(42, nil); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("yield(42) = %v, want ErrInvalidToken", err)
	}
	if err := p.fail(42, errors.New("x")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("fail(42) = %v, want ErrInvalidToken", err)
	}
}

func TestPendingCancelWithdrawsEntry(t *testing.T) {
	p := newPending()

	token, _, err := p.enqueue()
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	p.cancel(token)

	// A late response must not succeed against the stale waiter.
	if err := p.yield(token, []byte("late")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("yield after cancel = %v, want ErrInvalidToken", err)
	}
}

func TestPendingFailAll(t *testing.T) {
	p := newPending()

	const n = 5
	waiters := make([]<-chan callResult, n)
	for i := range waiters {
		_, ch, err := p.enqueue()
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		waiters[i] = ch
	}

	terminal := errors.New("transport gone")
	p.failAll(terminal)

	for i, ch := range waiters {
		res := <-ch
		if !errors.Is(res.err, terminal) {
			t.Errorf("waiter %d error = %v, want %v", i, res.err, terminal)
		}
	}
	if p.outstanding() != 0 {
		t.Errorf("outstanding = %d, want 0", p.outstanding())
	}

	// The table is closed: nothing can be enqueued anymore.
	if _, _, err := p.enqueue(); !errors.Is(err, terminal) {
		t.Errorf("enqueue after failAll = %v, want %v", err, terminal)
	}

	// A second failAll is a no-op, not a panic.
	p.failAll(errors.New("again"))
	if _, _, err := p.enqueue(); !errors.Is(err, terminal) {
		t.Errorf("terminal cause changed after second failAll: %v", err)
	}
}

func TestPendingConcurrentEnqueue(t *testing.T) {
	p := newPending()

	const n = 100
	tokens := make(chan wire.Token, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, _, err := p.enqueue()
			if err != nil {
				t.Errorf("enqueue: %v", err)
				return
			}
			tokens <- token
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[wire.Token]bool)
	for token := range tokens {
		if seen[token] {
			t.Fatalf("token %d issued twice", token)
		}
		seen[token] = true
	}
	if len(seen) != n {
		t.Errorf("distinct tokens = %d, want %d", len(seen), n)
	}
}
