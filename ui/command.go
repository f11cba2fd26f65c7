package ui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"alopexmon/sentinel"
)

// Opcode represents the type of display-side command. Commands never reach
// the detection core: muting a kind hides it from the pane while sensors and
// metrics keep running.
type Opcode int

const (
	OpMinSev Opcode = iota + 1 // hide alerts below a severity
	OpMute                     // hide an alert kind
	OpUnmute                   // show a previously muted kind
	OpWhois                    // resolve a PID to its command line
	OpClear                    // clear the alerts pane
)

func (o Opcode) String() string {
	switch o {
	case OpMinSev:
		return "minsev"
	case OpMute:
		return "mute"
	case OpUnmute:
		return "unmute"
	case OpWhois:
		return "whois"
	case OpClear:
		return "clear"
	}
	return "unknown"
}

type Command struct {
	Op   Opcode
	Sev  uint32        // for minsev
	Kind sentinel.Kind // for mute/unmute
	PID  int32         // for whois
}

// kindNames maps operator shorthand to event kinds.
var kindNames = map[string]sentinel.Kind{
	"netlink":   sentinel.KindNetlinkAnomaly,
	"privesc":   sentinel.KindPrivEscalation,
	"network":   sentinel.KindSuspiciousNetwork,
	"interface": sentinel.KindUnauthorizedInterface,
	"pattern":   sentinel.KindMaliciousPattern,
}

func ParseCommand(input string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	switch parts[0] {
	case "minsev":
		// "minsev" is followed by a severity ordinal 1..3;
		// alerts below it are hidden from the pane
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: minsev <1|2|3>")
		}
		v, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil || uint32(v) < sentinel.SeverityLow || uint32(v) > sentinel.SeverityHigh {
			return nil, fmt.Errorf("invalid severity %q", parts[1])
		}
		return &Command{Op: OpMinSev, Sev: uint32(v)}, nil

	case "mute", "unmute":
		// "mute"/"unmute" are followed by an event kind name
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: %s <kind>", parts[0])
		}
		kind, ok := kindNames[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", parts[1])
		}
		op := OpMute
		if parts[0] == "unmute" {
			op = OpUnmute
		}
		return &Command{Op: op, Kind: kind}, nil

	case "whois":
		// "whois" is followed by a PID to resolve
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: whois <pid>")
		}
		pid, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("invalid PID %q", parts[1])
		}
		return &Command{Op: OpWhois, PID: int32(pid)}, nil

	case "clear":
		if len(parts) != 1 {
			return nil, fmt.Errorf("usage: clear")
		}
		return &Command{Op: OpClear}, nil

	default:
		return nil, fmt.Errorf("unknown op %q", parts[0])
	}
}

// DisplayFilter gates which alerts reach the alerts pane.
type DisplayFilter struct {
	mu     sync.Mutex
	minSev uint32
	muted  map[sentinel.Kind]bool
}

func NewDisplayFilter() *DisplayFilter {
	return &DisplayFilter{
		minSev: sentinel.SeverityLow,
		muted:  make(map[sentinel.Kind]bool),
	}
}

// Allow reports whether ev should be shown.
func (f *DisplayFilter) Allow(ev *sentinel.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ev.Severity >= f.minSev && !f.muted[ev.Kind]
}

func (f *DisplayFilter) SetMinSeverity(sev uint32) {
	f.mu.Lock()
	f.minSev = sev
	f.mu.Unlock()
}

func (f *DisplayFilter) SetMuted(kind sentinel.Kind, muted bool) {
	f.mu.Lock()
	if muted {
		f.muted[kind] = true
	} else {
		delete(f.muted, kind)
	}
	f.mu.Unlock()
}
