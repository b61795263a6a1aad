// Package stats keeps per-operation client statistics: call counts,
// round-trip and server-reported times, and payload sizes.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// OpStats is the accumulated record of one operation name.
type OpStats struct {
	Count      uint64
	ErrorCount uint64

	TimeMin   time.Duration
	TimeMax   time.Duration
	TimeTotal time.Duration

	// Server times come from the WBEMServerResponseTime header and stay
	// zero when the server never sends it.
	ServerTimeMin   time.Duration
	ServerTimeMax   time.Duration
	ServerTimeTotal time.Duration

	RequestBytes  uint64
	ResponseBytes uint64
}

// TimeAvg returns the mean round-trip time.
func (s OpStats) TimeAvg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TimeTotal / time.Duration(s.Count)
}

// Keeper accumulates statistics per operation name. A nil Keeper
// records nothing, so callers need no enabled check beyond the nil
// receiver. Safe for concurrent use.
type Keeper struct {
	mu  sync.Mutex
	ops map[string]*OpStats
}

// NewKeeper returns an empty keeper.
func NewKeeper() *Keeper {
	return &Keeper{ops: make(map[string]*OpStats)}
}

// Record registers one completed operation.
func (k *Keeper) Record(op string, elapsed, serverTime time.Duration, requestBytes, responseBytes int, failed bool) {
	if k == nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	s, ok := k.ops[op]
	if !ok {
		s = &OpStats{}
		k.ops[op] = s
	}
	s.Count++
	if failed {
		s.ErrorCount++
	}
	if s.Count == 1 || elapsed < s.TimeMin {
		s.TimeMin = elapsed
	}
	if elapsed > s.TimeMax {
		s.TimeMax = elapsed
	}
	s.TimeTotal += elapsed
	if serverTime > 0 {
		if s.ServerTimeMin == 0 || serverTime < s.ServerTimeMin {
			s.ServerTimeMin = serverTime
		}
		if serverTime > s.ServerTimeMax {
			s.ServerTimeMax = serverTime
		}
		s.ServerTimeTotal += serverTime
	}
	s.RequestBytes += uint64(requestBytes)
	s.ResponseBytes += uint64(responseBytes)
}

// Snapshot returns a copy of the accumulated statistics. A nil Keeper
// returns nil.
func (k *Keeper) Snapshot() map[string]OpStats {
	if k == nil {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make(map[string]OpStats, len(k.ops))
	for name, s := range k.ops {
		out[name] = *s
	}
	return out
}

// String renders the statistics as a table, one operation per line,
// sorted by name.
func (k *Keeper) String() string {
	snap := k.Snapshot()
	if len(snap) == 0 {
		return "no statistics recorded"
	}

	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%-32s %8s %6s %12s %12s %10s %10s\n",
		"operation", "count", "errors", "avg time", "max time", "req bytes", "rsp bytes")
	for _, name := range names {
		s := snap[name]
		fmt.Fprintf(&b, "%-32s %8d %6d %12s %12s %10d %10d\n",
			name, s.Count, s.ErrorCount, s.TimeAvg(), s.TimeMax,
			s.RequestBytes, s.ResponseBytes)
	}
	return b.String()
}
