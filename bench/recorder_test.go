package bench

import (
	"strings"
	"testing"
)

func TestPercentChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		current  float64
		baseline float64
		want     string
	}{
		{"increase", 1123, 1000, "+12.3%"},
		{"decrease", 955, 1000, "-4.5%"},
		{"unchanged", 1000, 1000, "0.0%"},
		{"zero baseline", 500, 0, "n/a"},
		{"zero baseline zero current", 0, 0, "n/a"},
		{"rounds to one decimal", 4, 3, "+33.3%"},
		{"rounds up", 1.6666, 1, "+66.7%"},
		{"tiny negative rounds to zero", 999.999, 1000, "0.0%"},
		{"tiny positive rounds to zero", 1000.0001, 1000, "0.0%"},
		{"doubles", 200, 100, "+100.0%"},
		{"drops to zero", 0, 100, "-100.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentChange(tt.current, tt.baseline); got != tt.want {
				t.Fatalf("PercentChange(%v, %v) = %q, want %q", tt.current, tt.baseline, got, tt.want)
			}
		})
	}
}

func TestRecorderOrderAndOverwrite(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Capture("standard", "17.0.1", "3.1.0", 1000, 100)
	rec.Capture("standard", "21.0.1", "3.5.0", 800, 110)
	rec.Capture("standard", "17.0.1", "3.1.0", 950, 90) // re-capture of the first key

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Key.JavaVersion != "17.0.1" || entries[1].Key.JavaVersion != "21.0.1" {
		t.Fatalf("entries out of first-seen order: %+v", entries)
	}
	if entries[0].Record.StartupTimeMillis != 950 {
		t.Fatalf("re-capture did not overwrite: startup = %v, want 950", entries[0].Record.StartupTimeMillis)
	}
	if entries[0].Record.MemoryUsedBytes != 90 {
		t.Fatalf("re-capture did not overwrite: memory = %v, want 90", entries[0].Record.MemoryUsedBytes)
	}
}

func TestRecorderBaselineImmutable(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	if _, ok := rec.Baseline(); ok {
		t.Fatal("empty recorder reports a baseline")
	}

	rec.Capture("standard", "17.0.1", "3.1.0", 1000, 100)
	rec.Capture("standard", "21.0.1", "3.5.0", 800, 110)
	rec.Capture("standard", "17.0.1", "3.1.0", 500, 50) // overwrites the record, not the baseline

	base, ok := rec.Baseline()
	if !ok {
		t.Fatal("recorder lost its baseline")
	}
	if base.StartupTimeMillis != 1000 || base.MemoryUsedBytes != 100 {
		t.Fatalf("baseline changed: %+v, want {1000 100}", base)
	}
}

func TestRecorderFloorsMemoryAtCapture(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Capture("standard", "17.0.1", "3.1.0", 1000, 12345.987)

	entries := rec.Entries()
	if got := entries[0].Record.MemoryUsedBytes; got != 12345 {
		t.Fatalf("memory = %v, want 12345 (floored at capture)", got)
	}
}

// The worked example from the demo: a second run that starts 20% faster and
// uses 10% more heap.
func TestRecorderWorkedExample(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Capture("standard", "17.0.1", "3.1.0", 1000.0, 204857600)
	rec.Capture("standard", "21.0.1", "3.5.0", 800.0, 204857600*1.1)

	table := RenderTable(rec)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want header + 2 rows:\n%s", len(lines), table)
	}
	if !strings.Contains(lines[2], "-20.0%") {
		t.Fatalf("second row missing time change -20.0%%:\n%s", lines[2])
	}
	if !strings.Contains(lines[2], "+10.0%") {
		t.Fatalf("second row missing memory change +10.0%%:\n%s", lines[2])
	}
}
