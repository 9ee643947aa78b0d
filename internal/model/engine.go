package model

import "github.com/google/gopacket"

// Engine is a single, self-contained analytics engine (hierarchical tree,
// hashed sliding window, or a logging-only variant).
// This is the interface for the "execution layer": the capture loop feeds it
// raw frames, the stream consumer feeds it pre-extracted records.
type Engine interface {
	// ProcessPacket analyzes one captured frame and reports whether an
	// attack notification was issued for it.
	ProcessPacket(pkt gopacket.Packet) bool

	// ProcessRecord analyzes an already-extracted flow record.
	ProcessRecord(rec *FlowRecord) bool

	Stats() EngineStats
	Name() string
}
