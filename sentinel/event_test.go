package sentinel

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWireSize(t *testing.T) {
	assert.Equal(t, EventSize, binary.Size(&Event{}))
}

func TestEventRoundTrip(t *testing.T) {
	ev := Event{
		Pid:         4242,
		Uid:         1000,
		Gid:         1000,
		Ts:          987654321,
		Kind:        KindNetlinkAnomaly,
		Severity:    SeverityHigh,
		NetlinkType: 16,
		IfIndex:     3,
		SrcAddr:     0xC0A80105,
	}
	copy(ev.Comm[:], "iproute2")
	copy(ev.Pattern[:], []byte{'\\', 'x', '4', '1'})

	var buf bytes.Buffer
	ev.Encode(&buf)
	require.Equal(t, EventSize, buf.Len())

	got, err := DecodeEvent(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, &ev, got)
	assert.Equal(t, "iproute2", got.CommString())
	assert.Equal(t, []byte(`\x41`), got.PatternBytes())
}

func TestDecodeEventShort(t *testing.T) {
	_, err := DecodeEvent(make([]byte, EventSize-1))
	assert.Error(t, err)
}

func TestCommStringFull(t *testing.T) {
	var ev Event
	for i := range ev.Comm {
		ev.Comm[i] = 'a'
	}
	// No NUL terminator: all 16 bytes are the name.
	assert.Len(t, ev.CommString(), 16)
	assert.Empty(t, (&Event{}).CommString())
}
