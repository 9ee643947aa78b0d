// Package oinc implements the hierarchical flow-tracking engine: a lookup
// tree over the extracted 5-tuple whose leaves carry rate-based counters.
package oinc

import (
	"log"
	"time"

	"IntSentry/internal/config"
	"IntSentry/internal/engine/policy"
	"IntSentry/internal/engine/protocol"
	"IntSentry/internal/factory"
	"IntSentry/internal/model"

	"github.com/google/gopacket"
)

func init() {
	factory.RegisterEngine("oinc", func(cfg *config.Config, notifier model.Notifier) (model.Engine, error) {
		return New(cfg, notifier)
	})
}

// Rate rule inherited from the original deployment: more than three packets
// at over a hundred packets per second.
const (
	floodMinCount = 3
	floodMinRate  = 100.0
)

// Engine is the hierarchical analytics engine.
type Engine struct {
	notifier       model.Notifier
	parser         *protocol.Parser
	pol            policy.Policy
	sampleInterval time.Duration
	tree           *Tree
	stats          model.EngineStats

	now func() time.Time
}

// New creates the engine from configuration. An unsupported hop count fails
// here, before any frame is processed.
func New(cfg *config.Config, notifier model.Notifier) (*Engine, error) {
	parser, err := protocol.NewParser(cfg.Engine.IntHops)
	if err != nil {
		return nil, err
	}
	interval, err := cfg.Engine.SampleIntervalDuration()
	if err != nil {
		return nil, err
	}
	return &Engine{
		notifier:       notifier,
		parser:         parser,
		pol:            policy.RatePolicy{MinCount: floodMinCount, MinRate: floodMinRate},
		sampleInterval: interval,
		tree:           NewTree(),
		now:            time.Now,
	}, nil
}

// Name returns the engine type name.
func (e *Engine) Name() string { return "oinc" }

// Stats returns a copy of the engine's counters.
func (e *Engine) Stats() model.EngineStats { return e.stats }

// ProcessPacket decodes one frame, extracts its flow record and updates the
// tree. Decode and extraction failures drop the frame only; the loop
// continues.
func (e *Engine) ProcessPacket(pkt gopacket.Packet) bool {
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

// ProcessRecord updates the flow's leaf counter and applies the rate rule.
// The window reset is lagging: the packet that crosses the sample interval
// is still evaluated against the pre-reset window.
func (e *Engine) ProcessRecord(rec *model.FlowRecord) bool {
	e.stats.PacketsAnalyzed++

	now := e.now()
	c, existed := e.tree.Observe(rec, now)
	if !existed {
		// New flow: the creating packet opened the window, nothing to evaluate.
		e.manageTree()
		return false
	}

	c.Count++
	elapsed := now.Sub(c.WindowStart)
	c.PPS = float64(c.Count) / elapsed.Seconds()

	fired := false
	if e.pol.IsAttack(c.Count, elapsed) && !c.Attack {
		log.Printf("UDP Flood attack detected from %s (%s) at %.0f p/s", rec.DevMAC, rec.DevAddr, c.PPS)
		c.Attack = true
		fired = true
		report := &model.AttackReport{
			SrcMAC:     rec.DevMAC,
			SrcIP:      rec.DevAddr.String(),
			DstIP:      rec.DstAddr.String(),
			DstPort:    rec.DstPort,
			PacketSize: rec.PacketLen,
			AttackType: model.AttackTypeUDPFlood,
		}
		if err := e.notifier.PushAttack(report); err != nil {
			log.Printf("Failed to push attack to SDN controller - %v", err)
		} else {
			e.stats.AttacksNotified++
		}
	}

	if elapsed > e.sampleInterval {
		c.WindowStart = now
		c.Count = 1
	}

	e.manageTree()
	return fired
}

// manageTree is a diagnostic walk over the tracked flows. It performs no
// stateful work; the original carried an equivalent dead pass.
func (e *Engine) manageTree() {
	if !protocol.Trace {
		return
	}
	log.Printf("Tracking %d flows", e.tree.Leaves())
	e.tree.Walk(func(c *Counter) {
		log.Printf("Flow count %d at %.2f p/s attack: %v", c.Count, c.PPS, c.Attack)
	})
}
