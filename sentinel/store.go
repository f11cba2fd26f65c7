package sentinel

import (
	"sync"
	"sync/atomic"
)

// MaxTableEntries bounds each correlation table, matching the kernel hash
// maps this store replaces.
const MaxTableEntries = 4096

const (
	storeShards = 16
	shardCap    = MaxTableEntries / storeShards
)

// rateEntry is a per-uid event counter. The count is only ever reset by
// eviction (sweep or capacity pressure).
type rateEntry struct {
	count   atomic.Uint32
	touched atomic.Uint64 // last-update timestamp, ns
}

// stampEntry records the last privilege-affecting operation for a pid.
type stampEntry struct {
	ns uint64
}

type rateShard struct {
	mu      sync.Mutex
	entries map[uint32]*rateEntry
}

type stampShard struct {
	mu      sync.Mutex
	entries map[uint32]stampEntry
}

// Store is the correlation state shared by all sensor invocations: a bounded
// uid-keyed rate table and a bounded pid-keyed privilege-timestamp table.
// Both are sharded; a full shard evicts its stalest entry on insert, so the
// capacity bound holds even if the periodic sweep never runs.
type Store struct {
	rate      [storeShards]rateShard
	stamps    [storeShards]stampShard
	evictions atomic.Uint64
}

// NewStore allocates an empty store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.rate {
		s.rate[i].entries = make(map[uint32]*rateEntry, shardCap)
		s.stamps[i].entries = make(map[uint32]stampEntry, shardCap)
	}
	return s
}

// Fibonacci multiplicative hash; uids and pids cluster in low ranges.
func shardOf(key uint32) uint32 {
	return (key * 2654435761) >> 28 & (storeShards - 1)
}

// RateIncr atomically increments the event count for uid and returns the
// post-increment value. First observation returns 1.
func (s *Store) RateIncr(uid uint32, now uint64) uint32 {
	sh := &s.rate[shardOf(uid)]
	sh.mu.Lock()
	e, ok := sh.entries[uid]
	if !ok {
		if len(sh.entries) >= shardCap {
			s.evictStalestRate(sh)
		}
		e = &rateEntry{}
		sh.entries[uid] = e
	}
	sh.mu.Unlock()

	e.touched.Store(now)
	return e.count.Add(1)
}

// LastPrivChange returns the recorded privilege-change timestamp for pid.
// A miss is the first-observation case, not an error.
func (s *Store) LastPrivChange(pid uint32) (uint64, bool) {
	sh := &s.stamps[shardOf(pid)]
	sh.mu.Lock()
	e, ok := sh.entries[pid]
	sh.mu.Unlock()
	return e.ns, ok
}

// TouchPrivChange upserts the privilege-change timestamp for pid.
func (s *Store) TouchPrivChange(pid uint32, now uint64) {
	sh := &s.stamps[shardOf(pid)]
	sh.mu.Lock()
	if _, ok := sh.entries[pid]; !ok && len(sh.entries) >= shardCap {
		s.evictStalestStamp(sh)
	}
	sh.entries[pid] = stampEntry{ns: now}
	sh.mu.Unlock()
}

// Sweep evicts entries in both tables last touched before cutoff and returns
// the number removed.
func (s *Store) Sweep(cutoff uint64) int {
	evicted := 0
	for i := range s.rate {
		sh := &s.rate[i]
		sh.mu.Lock()
		for uid, e := range sh.entries {
			if e.touched.Load() < cutoff {
				delete(sh.entries, uid)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	for i := range s.stamps {
		sh := &s.stamps[i]
		sh.mu.Lock()
		for pid, e := range sh.entries {
			if e.ns < cutoff {
				delete(sh.entries, pid)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	if evicted > 0 {
		s.evictions.Add(uint64(evicted))
		storeEvictions.Add(float64(evicted))
	}
	return evicted
}

// Len reports live entries per table.
func (s *Store) Len() (rate, stamps int) {
	for i := range s.rate {
		s.rate[i].mu.Lock()
		rate += len(s.rate[i].entries)
		s.rate[i].mu.Unlock()
		s.stamps[i].mu.Lock()
		stamps += len(s.stamps[i].entries)
		s.stamps[i].mu.Unlock()
	}
	return rate, stamps
}

// Evictions reports the total entries removed by sweep or capacity pressure.
func (s *Store) Evictions() uint64 {
	return s.evictions.Load()
}

// Callers hold sh.mu. Bounded scan: a shard never exceeds shardCap entries.
func (s *Store) evictStalestRate(sh *rateShard) {
	var victim uint32
	oldest := uint64(1<<64 - 1)
	for uid, e := range sh.entries {
		if t := e.touched.Load(); t <= oldest {
			oldest = t
			victim = uid
		}
	}
	delete(sh.entries, victim)
	s.evictions.Add(1)
	storeEvictions.Inc()
}

func (s *Store) evictStalestStamp(sh *stampShard) {
	var victim uint32
	oldest := uint64(1<<64 - 1)
	for pid, e := range sh.entries {
		if e.ns <= oldest {
			oldest = e.ns
			victim = pid
		}
	}
	delete(sh.entries, victim)
	s.evictions.Add(1)
	storeEvictions.Inc()
}
