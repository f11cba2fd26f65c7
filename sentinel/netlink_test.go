package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func netlinkSensor() (*NetlinkSensor, *AlertQueue) {
	q := NewAlertQueue(QueueCapacity)
	return &NetlinkSensor{store: NewStore(), queue: q}, q
}

func nlIn(uid uint32, msgType uint16, msgLen uint32, flags uint16, payload string) NetlinkInput {
	in := NetlinkInput{Pid: 100, Uid: uid, Gid: uid, MsgType: msgType, MsgFlags: flags, MsgLen: msgLen}
	copy(in.Comm[:], "ip")
	copy(in.Payload[:], payload)
	return in
}

func TestNetlinkCleanMessageIsSilent(t *testing.T) {
	s, q := netlinkSensor()
	s.Handle(1, nlIn(1000, unix.RTM_GETLINK, 128, 0, ""))
	pushed, _ := q.Stats()
	assert.Zero(t, pushed)
}

func TestNetlinkOversizedNewLink(t *testing.T) {
	s, q := netlinkSensor()

	// Boundary is exclusive: exactly 8192 is clean.
	s.Handle(1, nlIn(1000, unix.RTM_NEWLINK, OversizedLinkLen, 0, ""))
	pushed, _ := q.Stats()
	require.Zero(t, pushed)

	s.Handle(2, nlIn(1000, unix.RTM_NEWLINK, OversizedLinkLen+1, 0, ""))
	ev := nextAlert(t, q)
	assert.Equal(t, KindNetlinkAnomaly, ev.Kind)
	assert.Equal(t, SeverityMedium, ev.Severity)
	assert.Equal(t, uint32(unix.RTM_NEWLINK), ev.NetlinkType)
}

func TestNetlinkSetLinkWithCreateFlag(t *testing.T) {
	s, q := netlinkSensor()

	s.Handle(1, nlIn(1000, unix.RTM_SETLINK, 64, 0, ""))
	pushed, _ := q.Stats()
	require.Zero(t, pushed, "set-link without create flag is clean")

	s.Handle(2, nlIn(1000, unix.RTM_SETLINK, 64, unix.NLM_F_CREATE, ""))
	ev := nextAlert(t, q)
	assert.Equal(t, KindNetlinkAnomaly, ev.Kind)
	assert.Equal(t, SeverityMedium, ev.Severity)
}

func TestNetlinkRateBoundary(t *testing.T) {
	s, q := netlinkSensor()

	// Events 1..10 from the same uid stay under the threshold.
	for i := 0; i < NetlinkRateThreshold; i++ {
		s.Handle(uint64(i), nlIn(1000, unix.RTM_GETLINK, 64, 0, ""))
	}
	pushed, _ := q.Stats()
	require.Zero(t, pushed, "event #10 must not fire the rate rule")

	// The 11th does.
	s.Handle(11, nlIn(1000, unix.RTM_GETLINK, 64, 0, ""))
	ev := nextAlert(t, q)
	assert.Equal(t, KindNetlinkAnomaly, ev.Kind)
	assert.Equal(t, SeverityMedium, ev.Severity)

	// A different uid starts its own count.
	s.Handle(12, nlIn(2000, unix.RTM_GETLINK, 64, 0, ""))
	pushed, _ = q.Stats()
	assert.Equal(t, uint64(1), pushed)
}

func TestNetlinkOversizedIgnoresRateState(t *testing.T) {
	s, q := netlinkSensor()
	// First-ever event from this uid: the size rule alone is sufficient.
	s.Handle(1, nlIn(3000, unix.RTM_NEWLINK, OversizedLinkLen+1, 0, ""))
	pushed, _ := q.Stats()
	assert.Equal(t, uint64(1), pushed)
}

func TestNetlinkSignatureEscalates(t *testing.T) {
	s, q := netlinkSensor()

	s.Handle(1, nlIn(1000, unix.RTM_NEWLINK, OversizedLinkLen+1, 0, `iface\x41\x42ABC`))
	ev := nextAlert(t, q)
	assert.Equal(t, SeverityHigh, ev.Severity)
	assert.Equal(t, []byte(`\x41\x42`), ev.PatternBytes())
}

func TestNetlinkSignatureBeyondScanWindowIgnored(t *testing.T) {
	s, q := netlinkSensor()

	// Signature starts at byte 24, outside the scan window.
	payload := "aaaaaaaaaaaaaaaaaaaaaaaa" + `\x41`
	s.Handle(1, nlIn(1000, unix.RTM_NEWLINK, OversizedLinkLen+1, 0, payload))
	ev := nextAlert(t, q)
	assert.Equal(t, SeverityMedium, ev.Severity)
	assert.Empty(t, ev.PatternBytes())
}

func TestNetlinkWrongInputShapeIsNoop(t *testing.T) {
	s, q := netlinkSensor()
	assert.Equal(t, VerdictPass, s.Handle(1, CredInput{Pid: 1}))
	pushed, _ := q.Stats()
	assert.Zero(t, pushed)
}
