// Package sentinel implements the in-kernel security monitor's detection
// core: the event record schema, the bounded correlation state store, the
// lossy alert queue, and the six control-point sensors that feed it.
package sentinel

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Kind classifies a security event.
type Kind uint32

const (
	KindNetlinkAnomaly        Kind = 1
	KindPrivEscalation        Kind = 2
	KindSuspiciousNetwork     Kind = 3
	KindUnauthorizedInterface Kind = 4
	KindMaliciousPattern      Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindNetlinkAnomaly:
		return "netlink-anomaly"
	case KindPrivEscalation:
		return "privilege-escalation"
	case KindSuspiciousNetwork:
		return "suspicious-network"
	case KindUnauthorizedInterface:
		return "unauthorized-interface"
	case KindMaliciousPattern:
		return "malicious-pattern"
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Severity levels. Ordinal: higher is worse.
const (
	SeverityLow    uint32 = 1
	SeverityMedium uint32 = 2
	SeverityHigh   uint32 = 3
)

// SeverityString renders a severity ordinal for display.
func SeverityString(sev uint32) string {
	switch sev {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	}
	return fmt.Sprintf("sev(%d)", sev)
}

// Event is the structured alert record emitted by a sensor. Immutable once
// pushed. Pid/Uid are zero when the control point cannot capture an actor
// identity (e.g. the packet fast path); zero means "unknown", not root.
type Event struct {
	Pid         uint32
	Uid         uint32
	Gid         uint32
	Ts          uint64 // monotonic nanoseconds at detection time
	Kind        Kind
	Severity    uint32
	Comm        [16]byte // actor command name, NUL-padded, may be empty
	NetlinkType uint32   // netlink message type, netlink-anomaly only
	IfIndex     uint32   // interface index, interface-change only
	SrcAddr     uint32   // IPv4 source in host byte order, fast path only
	Pattern     [32]byte // captured byte signature, zero-padded
}

// EventSize is the fixed wire size of an encoded Event.
const EventSize = 88

// Encode appends the fixed little-endian wire form of e to buf.
func (e *Event) Encode(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, e)
}

// DecodeEvent parses one wire-format record.
func DecodeEvent(raw []byte) (*Event, error) {
	if len(raw) < EventSize {
		return nil, fmt.Errorf("short event record: %d bytes", len(raw))
	}
	var e Event
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// CommString returns the command name with NUL padding stripped.
func (e *Event) CommString() string {
	for i, b := range e.Comm {
		if b == 0 {
			return string(e.Comm[:i])
		}
	}
	return string(e.Comm[:])
}

// PatternBytes returns the captured signature up to the first zero byte.
func (e *Event) PatternBytes() []byte {
	for i, b := range e.Pattern {
		if b == 0 {
			return e.Pattern[:i]
		}
	}
	return e.Pattern[:]
}
