package sentinel

import "time"

// Verdict is the forwarding decision a sensor hands back to its attachment
// point. Only the packet fast path consults it; every sensor in this core
// passes (detection-only telemetry, enforcement belongs to the consumer).
type Verdict int

const (
	VerdictPass Verdict = iota
	VerdictDrop
)

// InputKind tags the control-point-specific input shapes.
type InputKind uint32

const (
	InputCred InputKind = iota + 1
	InputNetlink
	InputPacket
	InputIface
	InputNetns
	InputTimer
)

// Input is the tagged union of per-control-point sensor arguments.
type Input interface {
	inputKind() InputKind
}

// CredInput is delivered when an actor prepares a new credential set.
type CredInput struct {
	Pid, Uid, Gid uint32
	Comm          [16]byte
}

// NetlinkInput carries a netlink message header and a truncated payload,
// delivered on netlink extended-error events.
type NetlinkInput struct {
	Pid, Uid, Gid uint32
	Comm          [16]byte
	MsgType       uint16
	MsgFlags      uint16
	MsgLen        uint32
	Payload       [32]byte
}

// PacketInput is a raw frame on the fast path. Data holds the captured bytes
// from the start of the Ethernet header; every access must be bounds-checked
// against its length.
type PacketInput struct {
	Data []byte
}

// IfaceInput is delivered when an actor requests an interface flag change.
type IfaceInput struct {
	Pid, Uid, Gid uint32
	Comm          [16]byte
	IfIndex       uint32
}

// NetnsInput is delivered on completion of a network-namespace duplication.
type NetnsInput struct {
	Pid, Uid, Gid uint32
	Comm          [16]byte
}

// TimerInput drives the periodic sweep.
type TimerInput struct{}

func (CredInput) inputKind() InputKind    { return InputCred }
func (NetlinkInput) inputKind() InputKind { return InputNetlink }
func (PacketInput) inputKind() InputKind  { return InputPacket }
func (IfaceInput) inputKind() InputKind   { return InputIface }
func (NetnsInput) inputKind() InputKind   { return InputNetns }
func (TimerInput) inputKind() InputKind   { return InputTimer }

// Sensor classifies one control point's activity. Handle must complete in a
// bounded number of steps and never block: it reads/updates the store,
// optionally commits one or more Events to the queue, and returns a
// forwarding verdict. An input of the wrong shape is a no-op.
type Sensor interface {
	Name() string
	Handle(now uint64, in Input) Verdict
}

// privilegedUser reports whether uid is root or a system account. Events from
// privileged actors are expected on the interface and namespace control
// points and are not alerted on.
func privilegedUser(uid uint32) bool {
	return uid < 1000
}

var monoStart = time.Now()

// monotonicNanos is the detection clock: nanoseconds on a monotonic base.
// Only per-key differences are ever compared, so the base is arbitrary.
func monotonicNanos() uint64 {
	return uint64(time.Since(monoStart))
}

// emit stamps ts and commits ev, counting the outcome. Drop-on-full is
// silent by contract.
func emit(q *AlertQueue, now uint64, ev *Event) {
	ev.Ts = now
	if q.TryPush(ev) {
		alertsEmitted.WithLabelValues(ev.Kind.String(), SeverityString(ev.Severity)).Inc()
	}
}

// Engine routes tagged inputs to the sensor registered for their control
// point. Sensors never call one another; they share only the store and the
// queue.
type Engine struct {
	store   *Store
	queue   *AlertQueue
	clock   func() uint64
	sensors map[InputKind]Sensor
}

// NewEngine wires the six sensors onto a shared store and alert queue.
func NewEngine(store *Store, queue *AlertQueue) *Engine {
	e := &Engine{store: store, queue: queue, clock: monotonicNanos}
	e.sensors = map[InputKind]Sensor{
		InputCred:    &CredSensor{store: store, queue: queue},
		InputNetlink: &NetlinkSensor{store: store, queue: queue},
		InputPacket:  &PacketSensor{queue: queue},
		InputIface:   &IfaceSensor{queue: queue},
		InputNetns:   &NetnsSensor{queue: queue},
		InputTimer:   &SweepSensor{store: store},
	}
	return e
}

// SetClock replaces the detection clock. The replacement must be monotonic;
// the loader uses this to report boot-relative timestamps like the kernel
// taps do.
func (e *Engine) SetClock(clock func() uint64) {
	e.clock = clock
}

// Dispatch stamps the current time and invokes the matching sensor. Unknown
// input kinds pass through unclassified.
func (e *Engine) Dispatch(in Input) Verdict {
	s, ok := e.sensors[in.inputKind()]
	if !ok {
		return VerdictPass
	}
	return s.Handle(e.clock(), in)
}

// Store exposes the shared correlation state for stats reporting.
func (e *Engine) Store() *Store { return e.store }

// Queue exposes the alert queue for the draining consumer.
func (e *Engine) Queue() *AlertQueue { return e.queue }
