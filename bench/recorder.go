package bench

import (
	"fmt"
	"math"
)

// Key identifies one measured run.
type Key struct {
	JavaVersion   string
	SpringVersion string
	Label         string
}

// Record holds the measurements captured for one run.
type Record struct {
	StartupTimeMillis float64
	MemoryUsedBytes   float64
}

// Entry pairs a key with its record for display.
type Entry struct {
	Key    Key
	Record Record
}

// Recorder accumulates per-run measurements. The first capture in the
// recorder's lifetime becomes the baseline every later run is compared
// against; it never changes after that.
type Recorder struct {
	records  map[Key]Record
	order    []Key
	baseline Record
	hasBase  bool
}

func NewRecorder() *Recorder {
	return &Recorder{records: make(map[Key]Record)}
}

// Capture stores the measurements for (javaVersion, springVersion, label).
// Re-capturing an existing key overwrites its values but keeps its original
// position in the run order. Memory is floored to whole bytes here so the
// renderer never rounds.
func (r *Recorder) Capture(label, javaVersion, springVersion string, startupMillis, memoryBytes float64) {
	key := Key{JavaVersion: javaVersion, SpringVersion: springVersion, Label: label}
	rec := Record{
		StartupTimeMillis: startupMillis,
		MemoryUsedBytes:   math.Floor(memoryBytes),
	}

	if _, seen := r.records[key]; !seen {
		r.order = append(r.order, key)
	}
	r.records[key] = rec

	if !r.hasBase {
		r.baseline = rec
		r.hasBase = true
	}
}

// Baseline returns the first captured record, if any.
func (r *Recorder) Baseline() (Record, bool) {
	return r.baseline, r.hasBase
}

// Entries returns the captured records in first-seen order.
func (r *Recorder) Entries() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, Entry{Key: key, Record: r.records[key]})
	}
	return entries
}

// PercentChange formats the change of current relative to baseline, rounded
// to one decimal place, with a leading "+" only for increases. A zero
// baseline makes the change undefined and yields "n/a".
func PercentChange(current, baseline float64) string {
	if baseline == 0 {
		return "n/a"
	}

	pct := (current - baseline) / baseline * 100
	rounded := math.Round(pct*10) / 10
	if rounded == 0 {
		// also swallows the -0.0 that tiny negative changes round to
		return "0.0%"
	}
	if rounded > 0 {
		return fmt.Sprintf("+%.1f%%", rounded)
	}
	return fmt.Sprintf("%.1f%%", rounded)
}
