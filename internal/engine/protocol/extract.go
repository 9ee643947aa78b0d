package protocol

import (
	"log"

	"IntSentry/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Trace enables per-field logging of every extraction. Best-effort
// observability only; extraction behaves identically with it off.
var Trace bool

// Extract maps a decoded frame plus its telemetry chain into a canonical
// FlowRecord. Extraction is all-or-nothing: if any required field is
// unreachable the result is nil and no partial record is ever produced.
func Extract(pkt gopacket.Packet, chain *HeaderChain) *model.FlowRecord {
	if Trace {
		traceFields(pkt, chain)
	}

	if chain == nil {
		return nil
	}
	ipLayer := pkt.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return nil
	}
	ip := ipLayer.(*layers.IPv4)

	var udp layers.UDP
	if err := udp.DecodeFromBytes(chain.Payload(), gopacket.NilDecodeFeedback); err != nil {
		if Trace {
			log.Printf("no transport layer after INT chain - %v", err)
		}
		return nil
	}

	return &model.FlowRecord{
		DevMAC:    chain.Source.OrigMAC.String(),
		DevAddr:   ip.SrcIP,
		SwitchID:  chain.Source.SwitchID,
		DstAddr:   ip.DstIP,
		DstPort:   uint16(udp.DstPort),
		Protocol:  uint8(ip.Protocol),
		PacketLen: len(pkt.Data()),
	}
}

// traceFields logs every field the extractor can reach. It never fails,
// even on anomalous frames.
func traceFields(pkt gopacket.Packet, chain *HeaderChain) {
	log.Printf("packet length - [%d]", len(pkt.Data()))
	if l := pkt.Layer(layers.LayerTypeEthernet); l != nil {
		eth := l.(*layers.Ethernet)
		log.Printf("eth src_mac - [%s] dst_mac - [%s] type - [%s]", eth.SrcMAC, eth.DstMAC, eth.EthernetType)
	}
	if l := pkt.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		log.Printf("ip src - [%s] dst - [%s] proto - [%d]", ip.SrcIP, ip.DstIP, ip.Protocol)
	}
	if chain == nil {
		return
	}
	log.Printf("shim next_proto - [%d]", chain.Shim.NextProto)
	log.Printf("int header ver - [%d] max_hops - [%d] total_hops - [%d]",
		chain.Header.Ver, chain.Header.MaxHops, chain.Header.TotalHops)
	for i, m := range chain.Transit {
		log.Printf("transit hop %d switch_id - [%d]", i, m.SwitchID)
	}
	log.Printf("source switch_id - [%d] orig_mac - [%s]", chain.Source.SwitchID, chain.Source.OrigMAC)
}
