package capture

import (
	"net"
	"testing"
	"time"

	"IntSentry/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

type countingEngine struct {
	processed int
}

func (c *countingEngine) ProcessPacket(pkt gopacket.Packet) bool {
	c.processed++
	return false
}

func (c *countingEngine) ProcessRecord(rec *model.FlowRecord) bool { return false }
func (c *countingEngine) Stats() model.EngineStats                 { return model.EngineStats{} }
func (c *countingEngine) Name() string                             { return "counting" }

func testPacket(t *testing.T) gopacket.Packet {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		eth, ip, &layers.UDP{SrcPort: 1, DstPort: 2}, gopacket.Payload([]byte("x")))
	if err != nil {
		t.Fatalf("Failed to serialize frame: %v", err)
	}
	return gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
}

func TestDeliversEveryFrame(t *testing.T) {
	engine := &countingEngine{}
	s := New(engine)

	packets := make(chan gopacket.Packet)
	s.Start(packets)

	pkt := testPacket(t)
	for i := 0; i < 5; i++ {
		packets <- pkt
	}
	close(packets)
	s.Wait()

	if engine.processed != 5 {
		t.Errorf("Expected 5 processed frames, got %d", engine.processed)
	}
}

func TestStopTerminatesLoop(t *testing.T) {
	engine := &countingEngine{}
	s := New(engine)

	// An open channel with no producer: only Stop can end the loop.
	packets := make(chan gopacket.Packet)
	s.Start(packets)
	s.Stop()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not exit after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(&countingEngine{})
	s.Start(make(chan gopacket.Packet))

	// A second Stop must neither panic nor block.
	s.Stop()
	s.Stop()
	s.Wait()
}
