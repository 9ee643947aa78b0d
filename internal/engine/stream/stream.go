// Package stream feeds an analytics engine from flow records published to
// NATS by edge probes, instead of from local capture.
package stream

import (
	"fmt"
	"log"

	"IntSentry/internal/config"
	"IntSentry/internal/model"
	"IntSentry/internal/probe"
)

// Consumer subscribes to the probe subject and drives the engine with the
// received records. NATS delivers one message at a time per subscription, so
// the engine keeps its single-worker ownership.
type Consumer struct {
	sub    *probe.Subscriber
	engine model.Engine
	cfg    config.ProbeConfig
}

// NewConsumer creates a consumer for the given engine.
func NewConsumer(cfg config.ProbeConfig, engine model.Engine) *Consumer {
	return &Consumer{cfg: cfg, engine: engine}
}

// Start connects to NATS and begins processing records.
func (c *Consumer) Start() error {
	sub, err := probe.NewSubscriber(c.cfg)
	if err != nil {
		return fmt.Errorf("stream consumer failed to connect to NATS: %w", err)
	}
	c.sub = sub

	if err := sub.Start(func(rec model.FlowRecord) {
		c.engine.ProcessRecord(&rec)
	}); err != nil {
		sub.Close()
		return fmt.Errorf("stream consumer failed to subscribe: %w", err)
	}
	log.Printf("Stream consumer feeding engine '%s' from '%s'", c.engine.Name(), c.cfg.Subject)
	return nil
}

// Stop unsubscribes and closes the connection.
func (c *Consumer) Stop() {
	if c.sub != nil {
		c.sub.Close()
	}
}
