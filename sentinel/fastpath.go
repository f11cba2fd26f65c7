package sentinel

import "encoding/binary"

const (
	ethHeaderLen = 14
	ipHeaderLen  = 20
	tcpHeaderLen = 20

	etherTypeIPv4 = 0x0800
	protoTCP      = 6

	tcpFlagSYN = 0x02
	tcpFlagACK = 0x10
)

// SensitiveTCPPorts are the destination ports whose pure-SYN connection
// attempts are fingerprinted on the fast path.
var SensitiveTCPPorts = []uint16{22, 80, 443, 3389, 5432}

// PacketSensor is the per-packet fast path. Every nested header access is
// bounds-checked against the captured length; a failed check is the normal
// "not enough bytes / not my protocol" exit, not an error. The sensor is
// observational only: it never drops traffic, whatever it classifies.
type PacketSensor struct {
	queue *AlertQueue
}

func (s *PacketSensor) Name() string { return "fastpath" }

func (s *PacketSensor) Handle(now uint64, in Input) Verdict {
	pkt, ok := in.(PacketInput)
	if !ok {
		return VerdictPass
	}
	data := pkt.Data

	if len(data) < ethHeaderLen {
		return VerdictPass
	}
	if binary.BigEndian.Uint16(data[12:14]) != etherTypeIPv4 {
		return VerdictPass
	}

	ip := data[ethHeaderLen:]
	if len(ip) < ipHeaderLen {
		return VerdictPass
	}

	// Private-range source on a boundary meant to carry public addresses.
	src := binary.BigEndian.Uint32(ip[12:16])
	if privateAddr(src) {
		emit(s.queue, now, &Event{
			Kind:     KindSuspiciousNetwork,
			Severity: SeverityMedium,
			SrcAddr:  src,
		})
	}

	if ip[9] == protoTCP {
		tcp := ip[ipHeaderLen:]
		if len(tcp) < tcpHeaderLen {
			return VerdictPass
		}
		dport := binary.BigEndian.Uint16(tcp[2:4])
		flags := tcp[13]
		if sensitivePort(dport) && flags&tcpFlagSYN != 0 && flags&tcpFlagACK == 0 {
			emit(s.queue, now, &Event{
				Kind:     KindSuspiciousNetwork,
				Severity: SeverityLow,
				SrcAddr:  src,
			})
		}
	}

	return VerdictPass
}

// privateAddr reports whether addr (host byte order) falls in
// 10.0.0.0/8, 172.16.0.0/12, or 192.168.0.0/16.
func privateAddr(addr uint32) bool {
	return addr&0xFF000000 == 0x0A000000 ||
		addr&0xFFF00000 == 0xAC100000 ||
		addr&0xFFFF0000 == 0xC0A80000
}

func sensitivePort(port uint16) bool {
	for _, p := range SensitiveTCPPorts {
		if port == p {
			return true
		}
	}
	return false
}
