package sentinel

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
)

// QueueCapacity is the alert queue's byte budget, matching the kernel-side
// ring buffer it stands in for.
const QueueCapacity = 256 * 1024

// AlertQueue is the single egress point of the core: a bounded,
// multi-producer/single-consumer queue of encoded Events. Producers never
// block; a push either reserves space and commits a fully-formed record or
// drops it on the spot. Fail-open by design: alert delivery is best-effort
// and a drop must not disturb the producing sensor.
type AlertQueue struct {
	mu      sync.Mutex
	cap     int
	used    int
	records [][]byte
	notify  chan struct{}

	pushed  atomic.Uint64
	dropped atomic.Uint64
}

// NewAlertQueue creates a queue with the given byte capacity.
func NewAlertQueue(capBytes int) *AlertQueue {
	return &AlertQueue{
		cap:    capBytes,
		notify: make(chan struct{}, 1),
	}
}

// TryPush encodes ev and commits it if the byte budget allows. Returns false
// when the record was dropped for lack of space.
func (q *AlertQueue) TryPush(ev *Event) bool {
	var buf bytes.Buffer
	buf.Grow(EventSize)
	ev.Encode(&buf)

	q.mu.Lock()
	if q.used+EventSize > q.cap {
		q.mu.Unlock()
		q.dropped.Add(1)
		alertsDropped.Inc()
		return false
	}
	q.records = append(q.records, buf.Bytes())
	q.used += EventSize
	q.mu.Unlock()

	q.pushed.Add(1)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until a record is available or ctx is done. Consumer side only;
// records from one producer arrive in commit order.
func (q *AlertQueue) Next(ctx context.Context) (*Event, error) {
	for {
		q.mu.Lock()
		if len(q.records) > 0 {
			raw := q.records[0]
			q.records = q.records[1:]
			q.used -= EventSize
			q.mu.Unlock()
			return DecodeEvent(raw)
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Depth reports queued records and free bytes.
func (q *AlertQueue) Depth() (records, freeBytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records), q.cap - q.used
}

// Stats reports total committed and dropped records.
func (q *AlertQueue) Stats() (pushed, dropped uint64) {
	return q.pushed.Load(), q.dropped.Load()
}
