package muxtest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestPipeDelivery(t *testing.T) {
	a, b := Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range msgs {
		if err := a.Send(ctx, m); err != nil {
			t.Fatalf("Send(%q): %v", m, err)
		}
	}

	// Order and message boundaries must survive the trip.
	for _, want := range msgs {
		got, err := b.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Receive = %q, want %q", got, want)
		}
	}
}

func TestPipeSendCopiesBuffer(t *testing.T) {
	a, b := Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := []byte("original")
	if err := a.Send(ctx, buf); err != nil {
		t.Fatalf("Send: %v", err)
	}
	copy(buf, "CLOBBER!")

	got, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if !bytes.Equal(got, []byte("original")) {
		t.Errorf("Receive = %q, want %q", got, "original")
	}
}

func TestPipeCloseDeliversEOF(t *testing.T) {
	a, b := Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Messages sent before closing still arrive, then EOF.
	if err := a.Send(ctx, []byte("last words")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if got, err := b.Receive(ctx); err != nil || !bytes.Equal(got, []byte("last words")) {
		t.Fatalf("Receive = (%q, %v), want buffered message", got, err)
	}
	if _, err := b.Receive(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Receive after close = %v, want io.EOF", err)
	}

	if err := b.Send(ctx, []byte("x")); !errors.Is(err, ErrPipeClosed) {
		t.Errorf("Send after close = %v, want ErrPipeClosed", err)
	}
}

func TestPipeReceiveHonorsContext(t *testing.T) {
	_, b := Pipe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := b.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Receive = %v, want DeadlineExceeded", err)
	}
}
