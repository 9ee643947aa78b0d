package protocol

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// MaxHops is the deepest telemetry chain the parser understands.
const MaxHops = 3

var (
	// ErrTruncatedHeader reports a frame shorter than its hop count implies.
	ErrTruncatedHeader = errors.New("truncated INT header chain")
	// ErrUnsupportedHopCount reports a hop count outside 0..MaxHops.
	ErrUnsupportedHopCount = errors.New("unsupported INT hop count")
)

// HeaderChain is the parse result of one frame's telemetry stack. It is
// created fresh per frame and owns no state.
type HeaderChain struct {
	Shim   IntShim
	Header IntHeader
	// Transit holds the mid-path hop records, outermost first. Its length is
	// hop count minus one.
	Transit []IntMeta
	Source  SourceIntMeta

	payload []byte
}

// Hops returns the number of telemetry hops in the chain.
func (c *HeaderChain) Hops() int { return len(c.Transit) + 1 }

// Payload returns the transport-layer bytes following the chain.
func (c *HeaderChain) Payload() []byte { return c.payload }

// Parser decodes the variable-depth telemetry stack. The hop count is fixed
// at construction, mirroring how the switch pipeline is provisioned.
type Parser struct {
	hops int
}

// NewParser creates a parser for the given hop count. Counts above MaxHops
// are a configuration error and rejected here, before any frame is processed.
func NewParser(hops int) (*Parser, error) {
	if hops < 0 || hops > MaxHops {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedHopCount, hops)
	}
	return &Parser{hops: hops}, nil
}

// Hops returns the configured hop count.
func (p *Parser) Hops() int { return p.hops }

// Decode parses the telemetry stack from the bytes following the IP header.
// With a zero hop count there is nothing to decode and both results are nil.
// Decode is all-or-nothing: on error no partial chain is returned.
func (p *Parser) Decode(data []byte) (*HeaderChain, error) {
	if p.hops == 0 {
		return nil, nil
	}

	need := IntShimLength + IntHeaderLength + (p.hops-1)*IntMetaLength + SourceIntMetaLength
	if len(data) < need {
		return nil, fmt.Errorf("%w: %d-hop chain needs %d bytes, have %d",
			ErrTruncatedHeader, p.hops, need, len(data))
	}

	chain := &HeaderChain{}
	off := 0
	if err := chain.Shim.DecodeFromBytes(data[off:], gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
	}
	off += IntShimLength
	if err := chain.Header.DecodeFromBytes(data[off:], gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
	}
	off += IntHeaderLength
	for i := 0; i < p.hops-1; i++ {
		var m IntMeta
		if err := m.DecodeFromBytes(data[off:], gopacket.NilDecodeFeedback); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
		}
		chain.Transit = append(chain.Transit, m)
		off += IntMetaLength
	}
	if err := chain.Source.DecodeFromBytes(data[off:], gopacket.NilDecodeFeedback); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
	}
	off += SourceIntMetaLength

	chain.payload = data[off:]
	return chain, nil
}

// DecodePacket locates the IPv4 layer of a decoded frame and parses the
// telemetry stack from its payload.
func (p *Parser) DecodePacket(pkt gopacket.Packet) (*HeaderChain, error) {
	l := pkt.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("packet has no IPv4 layer")
	}
	ip := l.(*layers.IPv4)
	return p.Decode(ip.LayerPayload())
}
