package probe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"alopexmon/sentinel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRecord(t *testing.T, kind uint32, comm string, body interface{}) []byte {
	t.Helper()
	hdr := rawHeader{Kind: kind, Pid: 77, Uid: 1000, Gid: 1000, Ts: 123456789}
	copy(hdr.Comm[:], comm)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &hdr))
	if body != nil {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, body))
	}
	return buf.Bytes()
}

func TestDecodeRawCred(t *testing.T) {
	in, err := decodeRaw(rawRecord(t, rawCred, "sudo", nil))
	require.NoError(t, err)

	cred, ok := in.(sentinel.CredInput)
	require.True(t, ok)
	assert.Equal(t, uint32(77), cred.Pid)
	assert.Equal(t, uint32(1000), cred.Uid)
}

func TestDecodeRawNetlink(t *testing.T) {
	body := rawNetlinkBody{MsgType: 16, MsgFlags: 0x400, MsgLen: 9000}
	copy(body.Payload[:], `\x41`)

	in, err := decodeRaw(rawRecord(t, rawNetlink, "ip", &body))
	require.NoError(t, err)

	nl, ok := in.(sentinel.NetlinkInput)
	require.True(t, ok)
	assert.Equal(t, uint16(16), nl.MsgType)
	assert.Equal(t, uint16(0x400), nl.MsgFlags)
	assert.Equal(t, uint32(9000), nl.MsgLen)
	assert.Equal(t, byte('\\'), nl.Payload[0])
}

func TestDecodeRawPacket(t *testing.T) {
	frame := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(frame))))
	buf.Write(frame)

	in, err := decodeRaw(rawRecord(t, rawPacket, "", buf.Bytes()))
	require.NoError(t, err)

	pkt, ok := in.(sentinel.PacketInput)
	require.True(t, ok)
	assert.Equal(t, frame, pkt.Data)
}

func TestDecodeRawIfaceAndNetns(t *testing.T) {
	in, err := decodeRaw(rawRecord(t, rawIface, "ifconfig", &rawIfaceBody{IfIndex: 3}))
	require.NoError(t, err)
	ifc, ok := in.(sentinel.IfaceInput)
	require.True(t, ok)
	assert.Equal(t, uint32(3), ifc.IfIndex)

	in, err = decodeRaw(rawRecord(t, rawNetns, "unshare", nil))
	require.NoError(t, err)
	_, ok = in.(sentinel.NetnsInput)
	assert.True(t, ok)
}

func TestDecodeRawTimer(t *testing.T) {
	in, err := decodeRaw(rawRecord(t, rawTimer, "", nil))
	require.NoError(t, err)
	_, ok := in.(sentinel.TimerInput)
	assert.True(t, ok)
}

func TestDecodeRawRejectsGarbage(t *testing.T) {
	_, err := decodeRaw([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = decodeRaw(rawRecord(t, 99, "", nil))
	assert.Error(t, err)

	// Truncated netlink trailer.
	_, err = decodeRaw(rawRecord(t, rawNetlink, "", nil))
	assert.Error(t, err)
}
