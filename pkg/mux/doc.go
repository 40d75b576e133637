// Package mux multiplexes typed request/reply calls between two peers
// over a single message-framed transport.
//
// # Model
//
// A Catalog maps one-byte identifiers to message kinds; Register yields
// a typed Message with Call and Bind. A Peer owns one Transport and one
// reply correlator. Outbound, Call allocates a fresh token, sends a
// request frame, and suspends until the matching response arrives —
// responses may come back in any order, the token pairs them up.
// Inbound, the dispatch loop classifies each frame: responses settle
// pending calls, requests run the bound handler in their own goroutine
// and the result travels back as a response frame, error-flagged with
// the handler's error text if it failed.
//
// # Concurrency
//
// The token counter and pending-call table live under one mutex; each
// token resolves at most once, enforced by removing the entry with the
// resolution. Handlers for distinct frames run concurrently with each
// other and with the dispatch loop's next read; WithMaxInflight bounds
// the fan-out. Transport termination fails every outstanding call
// exactly once and resolves Wait.
//
// # Errors
//
// Failures that correlate to no call — malformed frames, identifiers
// outside the catalog, responses for unknown tokens — never cross the
// wire; they go to the local error hook. Handler failures cross as
// text: the remote caller sees a *CallError carrying the message, not
// the structured cause.
package mux
