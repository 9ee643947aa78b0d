// Package capture drives an analytics engine from a stream of decoded
// frames. One worker goroutine owns the engine's state; stop is a
// cooperative flag observed between frames.
package capture

import (
	"log"
	"sync"

	"IntSentry/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

const (
	snapshotLen int32 = 1600
	promiscuous       = true
)

// Sniffer binds an engine to a packet source and runs the processing loop.
type Sniffer struct {
	engine model.Engine
	handle *pcap.Handle

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a sniffer for the given engine.
func New(engine model.Engine) *Sniffer {
	return &Sniffer{
		engine: engine,
		stop:   make(chan struct{}),
	}
}

// StartLive opens the interface for live capture and starts the processing
// worker.
func (s *Sniffer) StartLive(iface string) error {
	handle, err := pcap.OpenLive(iface, snapshotLen, promiscuous, pcap.BlockForever)
	if err != nil {
		return err
	}
	s.handle = handle
	log.Printf("AE monitoring iface %s", iface)
	s.Start(gopacket.NewPacketSource(handle, handle.LinkType()).Packets())
	return nil
}

// Start begins delivering frames from the given channel to the engine. The
// channel may come from live capture, a pcap file replay, or a test.
func (s *Sniffer) Start(packets <-chan gopacket.Packet) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(packets)
	}()
}

func (s *Sniffer) loop(packets <-chan gopacket.Packet) {
	for {
		select {
		case <-s.stop:
			return
		case pkt, ok := <-packets:
			if !ok {
				return
			}
			// In-flight processing of the current frame always completes;
			// the stop flag is only checked between frames.
			s.engine.ProcessPacket(pkt)
		}
	}
}

// Stop signals the worker to exit after the current frame. It is idempotent
// and safe to call from any goroutine.
func (s *Sniffer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.handle != nil {
			s.handle.Close()
		}
	})
}

// Wait blocks until the processing worker has exited.
func (s *Sniffer) Wait() {
	s.wg.Wait()
}
