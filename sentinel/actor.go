package sentinel

// IfaceSensor watches interface flag changes. Privileged actors reconfigure
// interfaces as a matter of course; anyone else doing it alerts immediately,
// with no rate limiting or repeat suppression.
type IfaceSensor struct {
	queue *AlertQueue
}

func (s *IfaceSensor) Name() string { return "iface" }

func (s *IfaceSensor) Handle(now uint64, in Input) Verdict {
	ifc, ok := in.(IfaceInput)
	if !ok {
		return VerdictPass
	}
	if privilegedUser(ifc.Uid) {
		return VerdictPass
	}
	emit(s.queue, now, &Event{
		Pid:      ifc.Pid,
		Uid:      ifc.Uid,
		Gid:      ifc.Gid,
		Kind:     KindUnauthorizedInterface,
		Severity: SeverityHigh,
		Comm:     ifc.Comm,
		IfIndex:  ifc.IfIndex,
	})
	return VerdictPass
}

// NetnsSensor watches network-namespace duplication. Same privilege gate as
// the interface sensor: a low-privilege actor cloning a net namespace is
// treated as a container-escape signal.
type NetnsSensor struct {
	queue *AlertQueue
}

func (s *NetnsSensor) Name() string { return "netns" }

func (s *NetnsSensor) Handle(now uint64, in Input) Verdict {
	ns, ok := in.(NetnsInput)
	if !ok {
		return VerdictPass
	}
	if privilegedUser(ns.Uid) {
		return VerdictPass
	}
	emit(s.queue, now, &Event{
		Pid:      ns.Pid,
		Uid:      ns.Uid,
		Gid:      ns.Gid,
		Kind:     KindSuspiciousNetwork,
		Severity: SeverityHigh,
		Comm:     ns.Comm,
	})
	return VerdictPass
}
