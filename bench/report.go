package bench

import (
	"fmt"
	"strings"
)

// Minimum column widths, left-justified. Values longer than the width push
// the row out rather than being truncated.
var columns = []struct {
	title string
	width int
}{
	{"Java Version", 14},
	{"Spring Version", 16},
	{"App Type", 12},
	{"Startup Time (ms)", 19},
	{"Time Change", 13},
	{"Memory Used (bytes)", 21},
	{"Memory Change", 14},
}

// RenderTable formats the recorder contents as a fixed-width comparison
// table, one row per run in first-seen order. An empty recorder renders the
// header row only.
func RenderTable(r *Recorder) string {
	var b strings.Builder

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.title
	}
	writeRow(&b, header)

	baseline, _ := r.Baseline()
	for _, e := range r.Entries() {
		writeRow(&b, []string{
			e.Key.JavaVersion,
			e.Key.SpringVersion,
			e.Key.Label,
			fmt.Sprintf("%.3f", e.Record.StartupTimeMillis),
			PercentChange(e.Record.StartupTimeMillis, baseline.StartupTimeMillis),
			fmt.Sprintf("%.0f", e.Record.MemoryUsedBytes),
			PercentChange(e.Record.MemoryUsedBytes, baseline.MemoryUsedBytes),
		})
	}

	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	line := make([]string, len(cells))
	for i, cell := range cells {
		line[i] = fmt.Sprintf("%-*s", columns[i].width, cell)
	}
	b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
	b.WriteByte('\n')
}
