package ui

import (
	"testing"

	"alopexmon/sentinel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		input string
		want  Command
	}{
		{"minsev 2", Command{Op: OpMinSev, Sev: sentinel.SeverityMedium}},
		{"  mute netlink ", Command{Op: OpMute, Kind: sentinel.KindNetlinkAnomaly}},
		{"unmute privesc", Command{Op: OpUnmute, Kind: sentinel.KindPrivEscalation}},
		{"whois 1234", Command{Op: OpWhois, PID: 1234}},
		{"clear", Command{Op: OpClear}},
	}
	for _, tc := range cases {
		got, err := ParseCommand(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, &tc.want, got, tc.input)
	}
}

func TestParseCommandRejectsInvalid(t *testing.T) {
	for _, input := range []string{
		"", "   ", "deny 1.2.3.4", "minsev", "minsev 0", "minsev 4", "minsev x",
		"mute", "mute bogus", "whois", "whois -1", "whois abc", "clear now",
	} {
		_, err := ParseCommand(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestDisplayFilter(t *testing.T) {
	f := NewDisplayFilter()
	low := &sentinel.Event{Kind: sentinel.KindSuspiciousNetwork, Severity: sentinel.SeverityLow}
	high := &sentinel.Event{Kind: sentinel.KindPrivEscalation, Severity: sentinel.SeverityHigh}

	assert.True(t, f.Allow(low))
	assert.True(t, f.Allow(high))

	f.SetMinSeverity(sentinel.SeverityMedium)
	assert.False(t, f.Allow(low))
	assert.True(t, f.Allow(high))

	f.SetMuted(sentinel.KindPrivEscalation, true)
	assert.False(t, f.Allow(high))
	f.SetMuted(sentinel.KindPrivEscalation, false)
	assert.True(t, f.Allow(high))
}
