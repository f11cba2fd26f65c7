package sentinel

import "time"

// SweepWindow is the retention horizon for correlation state. Entries not
// touched within it are dead weight and get evicted on the next sweep.
const SweepWindow = uint64(60 * time.Second)

// SweepSensor runs on the timer control point and bounds the growth of both
// correlation tables by expiring entries older than the window. Capacity
// eviction in the store covers the gap between sweeps.
type SweepSensor struct {
	store *Store
}

func (s *SweepSensor) Name() string { return "sweep" }

func (s *SweepSensor) Handle(now uint64, in Input) Verdict {
	if _, ok := in.(TimerInput); !ok {
		return VerdictPass
	}
	if now < SweepWindow {
		return VerdictPass
	}
	s.store.Sweep(now - SweepWindow)
	return VerdictPass
}
