package protocol

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func TestExtractFullRecord(t *testing.T) {
	parser, err := NewParser(2)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	pkt := decodeFrame(buildFrame(t, 2, 0xFD))
	chain, err := parser.DecodePacket(pkt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	rec := Extract(pkt, chain)
	if rec == nil {
		t.Fatal("Expected a record, got nil")
	}
	if rec.DevMAC != testDevMAC.String() {
		t.Errorf("Expected device MAC %s, got %s", testDevMAC, rec.DevMAC)
	}
	if rec.DevAddr.String() != "10.0.0.1" {
		t.Errorf("Expected device addr 10.0.0.1, got %s", rec.DevAddr)
	}
	if rec.SwitchID != 1 {
		t.Errorf("Expected switch ID 1, got %d", rec.SwitchID)
	}
	if rec.DstAddr.String() != "10.0.0.2" {
		t.Errorf("Expected dst addr 10.0.0.2, got %s", rec.DstAddr)
	}
	if rec.DstPort != 5000 {
		t.Errorf("Expected dst port 5000, got %d", rec.DstPort)
	}
	if rec.Protocol != 0xFD {
		t.Errorf("Expected protocol 0xFD, got %d", rec.Protocol)
	}
	if rec.PacketLen != len(pkt.Data()) {
		t.Errorf("Expected packet length %d, got %d", len(pkt.Data()), rec.PacketLen)
	}
}

func TestExtractMissingTransportReturnsNothing(t *testing.T) {
	parser, err := NewParser(1)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	pkt := decodeFrame(buildFrame(t, 1, 0xFD))
	ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)

	// Chain bytes only, no transport header behind them.
	chainLen := IntShimLength + IntHeaderLength + SourceIntMetaLength
	chain, err := parser.Decode(ip.LayerPayload()[:chainLen])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if rec := Extract(pkt, chain); rec != nil {
		t.Fatalf("Expected no record without a transport layer, got %+v", rec)
	}
}

func TestExtractNilChainReturnsNothing(t *testing.T) {
	pkt := decodeFrame(buildFrame(t, 0, 17))
	if rec := Extract(pkt, nil); rec != nil {
		t.Fatalf("Expected no record without a header chain, got %+v", rec)
	}
}

func TestExtractNoIPv4ReturnsNothing(t *testing.T) {
	// ARP frame: link layer only.
	eth := &layers.Ethernet{
		SrcMAC:       testGWMAC,
		DstMAC:       testDevMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   testGWMAC,
		SourceProtAddress: []byte{10, 0, 0, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 2},
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, eth, arp); err != nil {
		t.Fatalf("Failed to serialize ARP frame: %v", err)
	}
	pkt := decodeFrame(buf.Bytes())

	chain := &HeaderChain{}
	if rec := Extract(pkt, chain); rec != nil {
		t.Fatalf("Expected no record without an IPv4 layer, got %+v", rec)
	}
}
