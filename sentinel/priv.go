package sentinel

import "time"

// PrivEscWindow is the recency window for the repeated-credential-change
// rule: two privilege changes by one pid within it are treated as an
// escalation exploit in progress.
const PrivEscWindow = uint64(time.Second)

// CredSensor watches credential-set preparation. A second privilege change
// strictly inside the window fires a high-severity alert; a cold first
// observation only populates the store.
type CredSensor struct {
	store *Store
	queue *AlertQueue
}

func (s *CredSensor) Name() string { return "cred" }

func (s *CredSensor) Handle(now uint64, in Input) Verdict {
	cred, ok := in.(CredInput)
	if !ok {
		return VerdictPass
	}

	if last, ok := s.store.LastPrivChange(cred.Pid); ok && now-last < PrivEscWindow {
		emit(s.queue, now, &Event{
			Pid:      cred.Pid,
			Uid:      cred.Uid,
			Gid:      cred.Gid,
			Kind:     KindPrivEscalation,
			Severity: SeverityHigh,
			Comm:     cred.Comm,
		})
	}

	// The timestamp advances whether or not the alert fired, and even if it
	// was dropped on a full queue.
	s.store.TouchPrivChange(cred.Pid, now)
	return VerdictPass
}
