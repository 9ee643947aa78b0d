package protocol

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Wire sizes of the telemetry headers, in bytes.
const (
	IntShimLength       = 4
	IntHeaderLength     = 4
	IntMetaLength       = 4
	SourceIntMetaLength = 10
)

var (
	// LayerTypeIntShim identifies the telemetry shim inserted after the IP header.
	LayerTypeIntShim = gopacket.RegisterLayerType(2001, gopacket.LayerTypeMetadata{Name: "IntShim", Decoder: gopacket.DecodeFunc(decodeIntShim)})
	// LayerTypeIntHeader identifies the telemetry header following the shim.
	LayerTypeIntHeader = gopacket.RegisterLayerType(2002, gopacket.LayerTypeMetadata{Name: "IntHeader", Decoder: gopacket.DecodeFunc(decodeIntHeader)})
	// LayerTypeIntMeta identifies a mid-path hop's metadata record.
	LayerTypeIntMeta = gopacket.RegisterLayerType(2003, gopacket.LayerTypeMetadata{Name: "IntMeta", Decoder: gopacket.DecodeFunc(decodeIntMeta)})
	// LayerTypeSourceIntMeta identifies the innermost (source device) metadata record.
	LayerTypeSourceIntMeta = gopacket.RegisterLayerType(2004, gopacket.LayerTypeMetadata{Name: "SourceIntMeta", Decoder: gopacket.DecodeFunc(decodeSourceIntMeta)})
)

// IntShim is the 4-byte telemetry shim: it announces the presence and total
// length of the INT stack and the protocol of the transport layer that
// follows it.
type IntShim struct {
	layers.BaseLayer
	Type      uint8
	Reserved  uint8
	Length    uint8 // total INT stack length in 4-byte words
	NextProto uint8
}

func (s *IntShim) LayerType() gopacket.LayerType { return LayerTypeIntShim }

func (s *IntShim) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < IntShimLength {
		df.SetTruncated()
		return fmt.Errorf("INT shim too short: %d bytes", len(data))
	}
	s.Type = data[0]
	s.Reserved = data[1]
	s.Length = data[2]
	s.NextProto = data[3]
	s.BaseLayer = layers.BaseLayer{Contents: data[:IntShimLength], Payload: data[IntShimLength:]}
	return nil
}

func (s *IntShim) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(IntShimLength)
	if err != nil {
		return err
	}
	bytes[0] = s.Type
	bytes[1] = s.Reserved
	bytes[2] = s.Length
	bytes[3] = s.NextProto
	return nil
}

// IntHeader is the 4-byte telemetry header carrying hop accounting.
type IntHeader struct {
	layers.BaseLayer
	Ver       uint8
	MaxHops   uint8
	TotalHops uint8
	NextProto uint8
}

func (h *IntHeader) LayerType() gopacket.LayerType { return LayerTypeIntHeader }

func (h *IntHeader) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < IntHeaderLength {
		df.SetTruncated()
		return fmt.Errorf("INT header too short: %d bytes", len(data))
	}
	h.Ver = data[0]
	h.MaxHops = data[1]
	h.TotalHops = data[2]
	h.NextProto = data[3]
	h.BaseLayer = layers.BaseLayer{Contents: data[:IntHeaderLength], Payload: data[IntHeaderLength:]}
	return nil
}

func (h *IntHeader) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(IntHeaderLength)
	if err != nil {
		return err
	}
	bytes[0] = h.Ver
	bytes[1] = h.MaxHops
	bytes[2] = h.TotalHops
	bytes[3] = h.NextProto
	return nil
}

// IntMeta is the metadata record appended by a mid-path switch.
type IntMeta struct {
	layers.BaseLayer
	SwitchID uint32
}

func (m *IntMeta) LayerType() gopacket.LayerType { return LayerTypeIntMeta }

func (m *IntMeta) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < IntMetaLength {
		df.SetTruncated()
		return fmt.Errorf("INT meta too short: %d bytes", len(data))
	}
	m.SwitchID = binary.BigEndian.Uint32(data[:4])
	m.BaseLayer = layers.BaseLayer{Contents: data[:IntMetaLength], Payload: data[IntMetaLength:]}
	return nil
}

func (m *IntMeta) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(IntMetaLength)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(bytes, m.SwitchID)
	return nil
}

// SourceIntMeta is the innermost metadata record, appended by the gateway
// closest to the originating device. It is the only record carrying the
// device's MAC address.
type SourceIntMeta struct {
	layers.BaseLayer
	SwitchID uint32
	OrigMAC  net.HardwareAddr
}

func (m *SourceIntMeta) LayerType() gopacket.LayerType { return LayerTypeSourceIntMeta }

func (m *SourceIntMeta) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < SourceIntMetaLength {
		df.SetTruncated()
		return fmt.Errorf("source INT meta too short: %d bytes", len(data))
	}
	m.SwitchID = binary.BigEndian.Uint32(data[:4])
	m.OrigMAC = net.HardwareAddr(data[4:10])
	m.BaseLayer = layers.BaseLayer{Contents: data[:SourceIntMetaLength], Payload: data[SourceIntMetaLength:]}
	return nil
}

func (m *SourceIntMeta) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if len(m.OrigMAC) != 6 {
		return fmt.Errorf("invalid source MAC length: %d", len(m.OrigMAC))
	}
	bytes, err := b.PrependBytes(SourceIntMetaLength)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(bytes, m.SwitchID)
	copy(bytes[4:], m.OrigMAC)
	return nil
}

func decodeIntShim(data []byte, p gopacket.PacketBuilder) error {
	s := &IntShim{}
	if err := s.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(s)
	return p.NextDecoder(LayerTypeIntHeader)
}

func decodeIntHeader(data []byte, p gopacket.PacketBuilder) error {
	h := &IntHeader{}
	if err := h.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(h)
	return p.NextDecoder(gopacket.LayerTypePayload)
}

func decodeIntMeta(data []byte, p gopacket.PacketBuilder) error {
	m := &IntMeta{}
	if err := m.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(m)
	return p.NextDecoder(gopacket.LayerTypePayload)
}

func decodeSourceIntMeta(data []byte, p gopacket.PacketBuilder) error {
	m := &SourceIntMeta{}
	if err := m.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(m)
	return p.NextDecoder(layers.LayerTypeUDP)
}
