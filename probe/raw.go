package probe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"alopexmon/sentinel"
)

// Raw record kinds, mirroring the tag the kernel taps write ahead of each
// ringbuf sample.
const (
	rawCred    = 1
	rawNetlink = 2
	rawPacket  = 3
	rawIface   = 4
	rawNetns   = 5
	rawTimer   = 6
)

// rawHeader mirrors the C struct prefix shared by every sample in the
// raw_events ring buffer.
type rawHeader struct {
	Kind uint32
	Pid  uint32
	Uid  uint32
	Gid  uint32
	Ts   uint64 // bpf_ktime_get_ns at capture
	Comm [16]byte
}

const rawHeaderLen = 40

// rawNetlinkBody mirrors the netlink tap's trailer: the interesting nlmsghdr
// fields plus a truncated payload.
type rawNetlinkBody struct {
	MsgType  uint16
	MsgFlags uint16
	MsgLen   uint32
	Payload  [32]byte
}

// rawIfaceBody mirrors the dev_change_flags tap's trailer.
type rawIfaceBody struct {
	IfIndex uint32
}

// decodeRaw turns one ringbuf sample into the sensor input for its control
// point.
func decodeRaw(raw []byte) (sentinel.Input, error) {
	if len(raw) < rawHeaderLen {
		return nil, fmt.Errorf("short raw record: %d bytes", len(raw))
	}
	var hdr rawHeader
	rd := bytes.NewReader(raw)
	if err := binary.Read(rd, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("decode raw header: %w", err)
	}
	body := raw[rawHeaderLen:]

	switch hdr.Kind {
	case rawCred:
		return sentinel.CredInput{Pid: hdr.Pid, Uid: hdr.Uid, Gid: hdr.Gid, Comm: hdr.Comm}, nil

	case rawNetlink:
		var nl rawNetlinkBody
		if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, &nl); err != nil {
			return nil, fmt.Errorf("decode netlink record: %w", err)
		}
		return sentinel.NetlinkInput{
			Pid: hdr.Pid, Uid: hdr.Uid, Gid: hdr.Gid, Comm: hdr.Comm,
			MsgType: nl.MsgType, MsgFlags: nl.MsgFlags, MsgLen: nl.MsgLen,
			Payload: nl.Payload,
		}, nil

	case rawPacket:
		if len(body) < 4 {
			return nil, fmt.Errorf("short packet record: %d bytes", len(body))
		}
		capLen := binary.LittleEndian.Uint32(body[:4])
		frame := body[4:]
		if int(capLen) < len(frame) {
			frame = frame[:capLen]
		}
		return sentinel.PacketInput{Data: frame}, nil

	case rawIface:
		var ifc rawIfaceBody
		if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, &ifc); err != nil {
			return nil, fmt.Errorf("decode iface record: %w", err)
		}
		return sentinel.IfaceInput{
			Pid: hdr.Pid, Uid: hdr.Uid, Gid: hdr.Gid, Comm: hdr.Comm,
			IfIndex: ifc.IfIndex,
		}, nil

	case rawNetns:
		return sentinel.NetnsInput{Pid: hdr.Pid, Uid: hdr.Uid, Gid: hdr.Gid, Comm: hdr.Comm}, nil

	case rawTimer:
		return sentinel.TimerInput{}, nil
	}

	return nil, fmt.Errorf("unknown raw record kind %d", hdr.Kind)
}
