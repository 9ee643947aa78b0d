package model

import (
	"net"
	"time"
)

// FlowRecord holds the canonical fields extracted from one telemetry-bearing
// packet: the originating device identity reported by the innermost INT hop
// plus the outer network/transport addressing.
type FlowRecord struct {
	DevMAC    string `json:"dev_mac"`
	DevAddr   net.IP `json:"dev_addr"`
	SwitchID  uint32 `json:"switch_id"`
	DstAddr   net.IP `json:"dst_addr"`
	DstPort   uint16 `json:"dst_port"`
	Protocol  uint8  `json:"protocol"`
	PacketLen int    `json:"packet_len"`
}

// AttackTypeUDPFlood is the classification label for volumetric floods.
const AttackTypeUDPFlood = "UDP Flood"

// AttackReport is the payload pushed to the SDN controller when a flow
// crosses its detection threshold. Field names match the controller's
// /attack endpoint contract.
type AttackReport struct {
	SrcMAC     string `json:"src_mac"`
	SrcIP      string `json:"src_ip"`
	DstIP      string `json:"dst_ip"`
	DstPort    uint16 `json:"dst_port"`
	PacketSize int    `json:"packet_size"`
	AttackType string `json:"attack_type"`
}

// AttackEvent is a persisted attack notification, as stored in and read back
// from the attack-event log.
type AttackEvent struct {
	Timestamp time.Time `json:"timestamp"`
	AttackReport
}

// EngineStats are the running counters every engine maintains. They are
// mutated only by the single capture worker and are safe to read once the
// capture loop has stopped.
type EngineStats struct {
	PacketsSeen     uint64
	PacketsAnalyzed uint64
	PacketsSkipped  uint64
	AttacksNotified uint64
}
