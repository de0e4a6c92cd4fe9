package nerdstats

import (
	"runtime"
	"time"
)

/*
	NerdStats is a point in time view of the Go runtime, logged when the
	watcher shuts down. A watcher that leaks a goroutine per tick or holds on
	to probe buffers shows up here long before it shows up in a dashboard.

	See: https://pkg.go.dev/runtime#MemStats
*/

const (
	// a watcher runs a handful of goroutines: scheduler, bus consumers and
	// the status server. Anything past these is worth a look.
	goroutinesElevated   = 50
	goroutinesConcerning = 200
)

type NerdStats struct {
	HeapAlloc    uint64
	HeapSys      uint64
	HeapInuse    uint64
	HeapReleased uint64
	StackInuse   uint64
	TotalAlloc   uint64
	Mallocs      uint64
	Frees        uint64

	LastGC      time.Time
	TotalGCTime time.Duration
	NumGC       uint32

	NumGoroutines int
	NumCPU        int
	GOMAXPROCS    int
	GoVersion     string
	Uptime        time.Duration
}

func Snapshot(startTime time.Time) *NerdStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &NerdStats{
		HeapAlloc:     m.HeapAlloc,
		HeapSys:       m.HeapSys,
		HeapInuse:     m.HeapInuse,
		HeapReleased:  m.HeapReleased,
		StackInuse:    m.StackInuse,
		TotalAlloc:    m.TotalAlloc,
		Mallocs:       m.Mallocs,
		Frees:         m.Frees,
		NumGC:         m.NumGC,
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		GoVersion:     runtime.Version(),
		Uptime:        time.Since(startTime),
	}

	if m.LastGC > 0 {
		stats.LastGC = time.Unix(0, int64(m.LastGC))
		stats.TotalGCTime = time.Duration(m.PauseTotalNs)
	}

	return stats
}

// LiveObjects is the number of heap objects allocated and not yet freed
func (ns *NerdStats) LiveObjects() int64 {
	if ns.Frees > ns.Mallocs {
		return 0
	}
	return int64(ns.Mallocs - ns.Frees)
}

// AverageGCPause is zero until the first collection
func (ns *NerdStats) AverageGCPause() time.Duration {
	if ns.NumGC == 0 {
		return 0
	}
	return ns.TotalGCTime / time.Duration(ns.NumGC)
}

func (ns *NerdStats) GoroutineHealth() string {
	switch {
	case ns.NumGoroutines > goroutinesConcerning:
		return "CONCERNING"
	case ns.NumGoroutines > goroutinesElevated:
		return "ELEVATED"
	default:
		return "HEALTHY"
	}
}
