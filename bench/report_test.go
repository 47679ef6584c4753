package bench

import (
	"strings"
	"testing"
)

func TestRenderTableEmpty(t *testing.T) {
	t.Parallel()

	table := RenderTable(NewRecorder())
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty recorder rendered %d lines, want header only:\n%s", len(lines), table)
	}
	for _, title := range []string{"Java Version", "Spring Version", "App Type", "Startup Time (ms)", "Time Change", "Memory Used (bytes)", "Memory Change"} {
		if !strings.Contains(lines[0], title) {
			t.Fatalf("header missing column %q:\n%s", title, lines[0])
		}
	}
}

func TestRenderTableRowFormatting(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Capture("standard", "17.0.1", "3.1.0", 1234.5, 204857600.9)

	table := RenderTable(rec)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("table has %d lines, want header + 1 row:\n%s", len(lines), table)
	}

	row := lines[1]
	if !strings.HasPrefix(row, "17.0.1") {
		t.Fatalf("row does not start with the java version:\n%s", row)
	}
	if !strings.Contains(row, "1234.500") {
		t.Fatalf("startup time not rendered to 3 decimals:\n%s", row)
	}
	if !strings.Contains(row, "204857600") || strings.Contains(row, "204857600.") {
		t.Fatalf("memory not rendered as whole bytes:\n%s", row)
	}
	// the single captured run is its own baseline
	if strings.Count(row, "0.0%") != 2 {
		t.Fatalf("baseline row should show 0.0%% twice:\n%s", row)
	}
}

func TestRenderTableColumnAlignment(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.Capture("standard", "17.0.1", "3.1.0", 1000, 100)

	table := RenderTable(rec)
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")

	// left-justified fixed widths: the second column starts at the same
	// offset in the header and the data row
	headerIdx := strings.Index(lines[0], "Spring Version")
	rowIdx := strings.Index(lines[1], "3.1.0")
	if headerIdx != rowIdx {
		t.Fatalf("column misaligned: header at %d, row at %d\n%s", headerIdx, rowIdx, table)
	}
}

func TestRenderTableOverflowNotTruncated(t *testing.T) {
	t.Parallel()

	long := "21.0.1-very-long-distribution-identifier"
	rec := NewRecorder()
	rec.Capture("standard", long, "3.5.0", 1000, 100)

	table := RenderTable(rec)
	if !strings.Contains(table, long) {
		t.Fatalf("overlong value was truncated:\n%s", table)
	}
}
