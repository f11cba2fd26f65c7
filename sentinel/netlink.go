package sentinel

import "golang.org/x/sys/unix"

const (
	// NetlinkRateThreshold is the per-uid event count above which netlink
	// traffic is classified as a burst.
	NetlinkRateThreshold = 10

	// OversizedLinkLen flags new-link messages above this length. Exclusive
	// boundary: a message of exactly this length is clean.
	OversizedLinkLen = 8192

	// signatureScanWindow bounds the payload scan for hex-escape signatures;
	// patternCopyLen is the window copied into the event on a hit.
	signatureScanWindow = 24
	patternCopyLen      = 8
)

// NetlinkSensor classifies netlink extended-error events. Three independent
// rules, each sufficient on its own: oversized new-link messages, set-link
// messages carrying a create flag, and per-uid burst rate. A hex-escape
// signature in the payload escalates any positive classification to high
// severity.
type NetlinkSensor struct {
	store *Store
	queue *AlertQueue
}

func (s *NetlinkSensor) Name() string { return "netlink" }

func (s *NetlinkSensor) Handle(now uint64, in Input) Verdict {
	nl, ok := in.(NetlinkInput)
	if !ok {
		return VerdictPass
	}

	oversized := nl.MsgType == unix.RTM_NEWLINK && nl.MsgLen > OversizedLinkLen
	createLink := nl.MsgType == unix.RTM_SETLINK && nl.MsgFlags&unix.NLM_F_CREATE != 0
	burst := s.store.RateIncr(nl.Uid, now) > NetlinkRateThreshold

	if !oversized && !createLink && !burst {
		return VerdictPass
	}

	ev := Event{
		Pid:         nl.Pid,
		Uid:         nl.Uid,
		Gid:         nl.Gid,
		Kind:        KindNetlinkAnomaly,
		Severity:    SeverityMedium,
		Comm:        nl.Comm,
		NetlinkType: uint32(nl.MsgType),
	}

	// Hex escape sequences in the payload suggest injection; capture a small
	// window around the signature and escalate.
	for i := 0; i < signatureScanWindow; i++ {
		if nl.Payload[i] == 0 {
			break
		}
		if nl.Payload[i] == '\\' && nl.Payload[i+1] == 'x' {
			ev.Severity = SeverityHigh
			end := i + patternCopyLen
			if end > len(nl.Payload) {
				end = len(nl.Payload)
			}
			copy(ev.Pattern[:], nl.Payload[i:end])
			break
		}
	}

	emit(s.queue, now, &ev)
	return VerdictPass
}
