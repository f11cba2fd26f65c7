package ui

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"sync"

	"alopexmon/probe/utility"
	"alopexmon/sentinel"
)

const (
	timeColWidth = 36 // width of the timestamp column
	sevColWidth  = 7  // width of the severity tag column
	kindColWidth = 23 // width of the event kind column
)

// pool holds reusable *bytes.Buffer instances
var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func severityColor(sev uint32) string {
	switch sev {
	case sentinel.SeverityHigh:
		return "[red]"
	case sentinel.SeverityMedium:
		return "[yellow]"
	}
	return "[green]"
}

// FormatAlert builds a fixed-width alert line with minimal allocations.
// Layout: timestamp | severity | kind | actor | kind-specific detail.
func FormatAlert(ev *sentinel.Event) string {
	// Grab a buffer from the pool and reset it
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	writePadded(buf, utility.ConvertBpfNanotime(ev.Ts), timeColWidth)
	buf.WriteByte(' ')

	// Color tags are invisible to tview, so pad by the label width alone.
	sev := sentinel.SeverityString(ev.Severity)
	buf.WriteString(severityColor(ev.Severity))
	buf.WriteString(sev)
	buf.WriteString("[-]")
	writePadding(buf, sevColWidth-len(sev))
	buf.WriteByte(' ')

	writePadded(buf, ev.Kind.String(), kindColWidth)
	buf.WriteByte(' ')

	if ev.Pid == 0 && ev.Uid == 0 {
		// Fast-path alerts carry no actor identity, only the packet source.
		if ev.SrcAddr != 0 {
			buf.WriteString("src=")
			buf.WriteString(utility.IntToIPv4(ev.SrcAddr))
		} else {
			buf.WriteString("actor=unknown")
		}
	} else {
		buf.WriteString("pid=")
		buf.WriteString(strconv.Itoa(int(ev.Pid)))
		buf.WriteString(" uid=")
		buf.WriteString(strconv.Itoa(int(ev.Uid)))
		if comm := ev.CommString(); comm != "" {
			buf.WriteString(" comm=")
			buf.WriteString(comm)
		}
	}

	switch ev.Kind {
	case sentinel.KindNetlinkAnomaly:
		buf.WriteString(" nlmsg=")
		buf.WriteString(strconv.Itoa(int(ev.NetlinkType)))
	case sentinel.KindUnauthorizedInterface:
		buf.WriteString(" ifindex=")
		buf.WriteString(strconv.Itoa(int(ev.IfIndex)))
	}
	if pat := ev.PatternBytes(); len(pat) > 0 {
		buf.WriteString(" pattern=0x")
		buf.WriteString(hex.EncodeToString(pat))
	}

	// Extract result string (copies once) and return buffer to pool
	result := buf.String()
	bufPool.Put(buf)
	return result
}

// writePadded writes s left-aligned in a field of width w
func writePadded(buf *bytes.Buffer, s string, w int) {
	buf.WriteString(s)
	writePadding(buf, w-len(s))
}

// writePadding writes n spaces (n ≤ 0 → no op)
func writePadding(buf *bytes.Buffer, n int) {
	for n > 0 {
		const chunk = "          " // 10 spaces
		if n >= len(chunk) {
			buf.WriteString(chunk)
			n -= len(chunk)
		} else {
			buf.WriteString(chunk[:n])
			return
		}
	}
}
