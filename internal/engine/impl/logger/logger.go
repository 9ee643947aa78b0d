// Package logger provides the two logging-only engine variants: a frame
// summary logger and an INT record logger. Neither tracks state or notifies.
package logger

import (
	"log"

	"IntSentry/internal/config"
	"IntSentry/internal/engine/protocol"
	"IntSentry/internal/factory"
	"IntSentry/internal/model"

	"github.com/google/gopacket"
)

func init() {
	factory.RegisterEngine("logger", func(cfg *config.Config, notifier model.Notifier) (model.Engine, error) {
		return &FrameLogger{}, nil
	})
	factory.RegisterEngine("int-logger", func(cfg *config.Config, notifier model.Notifier) (model.Engine, error) {
		return NewIntLogger(cfg)
	})
}

// FrameLogger records every frame's summary without any flow tracking.
type FrameLogger struct {
	stats model.EngineStats
}

func (e *FrameLogger) Name() string { return "logger" }

func (e *FrameLogger) Stats() model.EngineStats { return e.stats }

func (e *FrameLogger) ProcessPacket(pkt gopacket.Packet) bool {
	e.stats.PacketsSeen++
	log.Printf("Packet data - [%v]", pkt)
	return false
}

func (e *FrameLogger) ProcessRecord(rec *model.FlowRecord) bool {
	e.stats.PacketsAnalyzed++
	log.Printf("Record data - [%+v]", rec)
	return false
}

// IntLogger extracts and logs the FlowRecord of every telemetry frame. It
// never calls the notifier.
type IntLogger struct {
	parser *protocol.Parser
	stats  model.EngineStats
}

// NewIntLogger creates the INT-only logger for the configured hop count.
func NewIntLogger(cfg *config.Config) (*IntLogger, error) {
	parser, err := protocol.NewParser(cfg.Engine.IntHops)
	if err != nil {
		return nil, err
	}
	return &IntLogger{parser: parser}, nil
}

func (e *IntLogger) Name() string { return "int-logger" }

func (e *IntLogger) Stats() model.EngineStats { return e.stats }

func (e *IntLogger) ProcessPacket(pkt gopacket.Packet) bool {
	e.stats.PacketsSeen++
	chain, err := e.parser.DecodePacket(pkt)
	if err != nil {
		log.Printf("Error decoding INT chain - %v", err)
		e.stats.PacketsSkipped++
		return false
	}
	rec := protocol.Extract(pkt, chain)
	if rec == nil {
		e.stats.PacketsSkipped++
		return false
	}
	return e.ProcessRecord(rec)
}

func (e *IntLogger) ProcessRecord(rec *model.FlowRecord) bool {
	e.stats.PacketsAnalyzed++
	log.Printf("INT Packet data - [%+v]", rec)
	return false
}
