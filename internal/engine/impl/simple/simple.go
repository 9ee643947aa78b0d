// Package simple implements the hashed sliding-window engine: flows are
// keyed by a digest of the whole extracted record and counted over a true
// sliding window, with debounced controller notifications.
package simple

import (
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"IntSentry/internal/config"
	"IntSentry/internal/engine/policy"
	"IntSentry/internal/engine/protocol"
	"IntSentry/internal/factory"
	"IntSentry/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func init() {
	factory.RegisterEngine("simple", func(cfg *config.Config, notifier model.Notifier) (model.Engine, error) {
		return New(cfg, notifier)
	})
}

// Engine is the hashed sliding-window analytics engine.
type Engine struct {
	notifier       model.Notifier
	parser         *protocol.Parser
	pol            policy.Policy
	ipProto        uint8
	sampleInterval time.Duration
	renotify       time.Duration

	// Observation timestamps per flow key, oldest first. Neither map is
	// ever evicted; memory grows with the number of distinct flows.
	counts     map[uint64][]time.Time
	lastNotify map[uint64]time.Time

	stats model.EngineStats
	now   func() time.Time
}

// New creates the engine from configuration.
func New(cfg *config.Config, notifier model.Notifier) (*Engine, error) {
	parser, err := protocol.NewParser(cfg.Engine.IntHops)
	if err != nil {
		return nil, err
	}
	interval, err := cfg.Engine.SampleIntervalDuration()
	if err != nil {
		return nil, err
	}
	renotify, err := cfg.Engine.RenotifyIntervalDuration()
	if err != nil {
		return nil, err
	}
	return &Engine{
		notifier:       notifier,
		parser:         parser,
		pol:            policy.WindowCountPolicy{Threshold: cfg.Engine.PacketCountThreshold},
		ipProto:        cfg.Engine.IPProtocol,
		sampleInterval: interval,
		renotify:       renotify,
		counts:         make(map[uint64][]time.Time),
		lastNotify:     make(map[uint64]time.Time),
		now:            time.Now,
	}, nil
}

// Name returns the engine type name.
func (e *Engine) Name() string { return "simple" }

// Stats returns a copy of the engine's counters.
func (e *Engine) Stats() model.EngineStats { return e.stats }

// FlowKey digests the record's field values, order-sensitively, into the
// flow identity used by the window and debounce maps.
func FlowKey(rec *model.FlowRecord) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s-%s-%d-%s-%d-%d-%d",
		rec.DevMAC, rec.DevAddr, rec.SwitchID, rec.DstAddr, rec.DstPort, rec.Protocol, rec.PacketLen)
	return h.Sum64()
}

// ProcessPacket analyzes one frame if its IP protocol matches the configured
// filter. Non-matching or undecodable frames are skipped, never fatal.
func (e *Engine) ProcessPacket(pkt gopacket.Packet) bool {
	e.stats.PacketsSeen++

	ipLayer := pkt.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		e.stats.PacketsSkipped++
		return false
	}
	if proto := uint8(ipLayer.(*layers.IPv4).Protocol); proto != e.ipProto {
		e.stats.PacketsSkipped++
		return false
	}

	chain, err := e.parser.DecodePacket(pkt)
	if err != nil {
		log.Printf("Error decoding INT chain - %v", err)
		e.stats.PacketsSkipped++
		return false
	}
	rec := protocol.Extract(pkt, chain)
	if rec == nil {
		log.Printf("Unable to extract INT data")
		e.stats.PacketsSkipped++
		return false
	}
	return e.ProcessRecord(rec)
}

// ProcessRecord appends the observation to the flow's window, prunes expired
// entries and, over threshold, applies the notification debounce. It returns
// true only when a fresh notification was delivered.
func (e *Engine) ProcessRecord(rec *model.FlowRecord) bool {
	e.stats.PacketsAnalyzed++

	key := FlowKey(rec)
	now := e.now()

	times := append(e.counts[key], now)
	// Sliding window: every observation re-evaluates the whole live window.
	live := times[:0]
	for _, t := range times {
		if now.Sub(t) <= e.sampleInterval {
			live = append(live, t)
		}
	}
	e.counts[key] = live
	count := uint64(len(live))

	if !e.pol.IsAttack(count, e.sampleInterval) {
		return false
	}

	last, seen := e.lastNotify[key]
	if seen && now.Sub(last) <= e.renotify {
		// Still over threshold, but a notification went out recently.
		return false
	}

	// Record the attempt before the push so a failing controller cannot
	// cause a notification storm.
	e.lastNotify[key] = now
	report := &model.AttackReport{
		SrcMAC:     rec.DevMAC,
		SrcIP:      rec.DevAddr.String(),
		DstIP:      rec.DstAddr.String(),
		DstPort:    rec.DstPort,
		PacketSize: rec.PacketLen,
		AttackType: model.AttackTypeUDPFlood,
	}
	log.Printf("Attack detected - count %d for flow %s -> %s:%d", count, rec.DevAddr, rec.DstAddr, rec.DstPort)
	if err := e.notifier.PushAttack(report); err != nil {
		log.Printf("Failed to push attack to SDN controller - %v", err)
		return false
	}
	e.stats.AttacksNotified++
	return true
}

// WindowCount reports the current live-window count for a record's flow.
func (e *Engine) WindowCount(rec *model.FlowRecord) int {
	return len(e.counts[FlowKey(rec)])
}
