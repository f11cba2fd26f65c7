package ui

import (
	"testing"

	"alopexmon/sentinel"

	"github.com/stretchr/testify/assert"
)

func TestFormatAlertWithActor(t *testing.T) {
	ev := &sentinel.Event{
		Pid:      4242,
		Uid:      1000,
		Ts:       1,
		Kind:     sentinel.KindPrivEscalation,
		Severity: sentinel.SeverityHigh,
	}
	copy(ev.Comm[:], "sudo")

	line := FormatAlert(ev)
	assert.Contains(t, line, "[red]HIGH[-]")
	assert.Contains(t, line, "privilege-escalation")
	assert.Contains(t, line, "pid=4242 uid=1000 comm=sudo")
}

func TestFormatAlertUnknownActor(t *testing.T) {
	ev := &sentinel.Event{
		Ts:       1,
		Kind:     sentinel.KindSuspiciousNetwork,
		Severity: sentinel.SeverityMedium,
	}
	line := FormatAlert(ev)
	assert.Contains(t, line, "[yellow]MEDIUM[-]")
	assert.Contains(t, line, "actor=unknown")
}

func TestFormatAlertPacketSource(t *testing.T) {
	ev := &sentinel.Event{
		Ts:       1,
		Kind:     sentinel.KindSuspiciousNetwork,
		Severity: sentinel.SeverityMedium,
		SrcAddr:  0xC0A80105,
	}
	assert.Contains(t, FormatAlert(ev), "src=192.168.1.5")
}

func TestFormatAlertDetails(t *testing.T) {
	nl := &sentinel.Event{
		Pid:         7,
		Uid:         1000,
		Kind:        sentinel.KindNetlinkAnomaly,
		Severity:    sentinel.SeverityHigh,
		NetlinkType: 16,
	}
	copy(nl.Pattern[:], `\x41`)
	line := FormatAlert(nl)
	assert.Contains(t, line, "nlmsg=16")
	assert.Contains(t, line, "pattern=0x5c783431")

	ifc := &sentinel.Event{
		Pid:      7,
		Uid:      1000,
		Kind:     sentinel.KindUnauthorizedInterface,
		Severity: sentinel.SeverityHigh,
		IfIndex:  3,
	}
	assert.Contains(t, FormatAlert(ifc), "ifindex=3")
}
