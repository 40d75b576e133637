package main

import (
	"github.com/tandemwire/tandem/pkg/codec"
	"github.com/tandemwire/tandem/pkg/mux"
	"github.com/tandemwire/tandem/pkg/wire"
)

// Demo message identifiers. Both sides of every CLI connection build
// the same catalog from these.
const (
	idPing    wire.ID = 0x01
	idEcho    wire.ID = 0x02
	idReverse wire.ID = 0x03
	idStats   wire.ID = 0x04
	idFail    wire.ID = 0x05
)

// statsReply is the stats message's structured payload, carried as
// CBOR.
type statsReply struct {
	UptimeSeconds float64           `cbor:"uptime_seconds"`
	Requests      uint64            `cbor:"requests"`
	PerMessage    map[string]uint64 `cbor:"per_message"`
}

// demoCatalog bundles the catalog with its typed call sites.
type demoCatalog struct {
	Catalog *mux.Catalog

	Ping    mux.Message[struct{}, struct{}]
	Echo    mux.Message[[]byte, []byte]
	Reverse mux.Message[string, string]
	Stats   mux.Message[struct{}, statsReply]
	Fail    mux.Message[string, struct{}]
}

func newDemoCatalog() *demoCatalog {
	cat := mux.NewCatalog()
	return &demoCatalog{
		Catalog: cat,
		Ping:    mux.Register(cat, idPing, "ping", codec.Unit, codec.Unit),
		Echo:    mux.Register(cat, idEcho, "echo", codec.Raw, codec.Raw),
		Reverse: mux.Register(cat, idReverse, "reverse", codec.String, codec.String),
		Stats:   mux.Register(cat, idStats, "stats", codec.Unit, codec.CBOR[statsReply]()),
		Fail:    mux.Register(cat, idFail, "fail", codec.String, codec.Unit),
	}
}

// reverseString reverses by rune so multi-byte text survives.
func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
