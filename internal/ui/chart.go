package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tally/internal/breakdown"
)

// NoData is shown instead of a chart when no record matches the filter.
const NoData = "No data available"

// BreakdownLines renders one bar per category followed by the legend of
// percentages. A breakdown with a zero total renders NoData only.
func BreakdownLines(b breakdown.Breakdown, width int) []string {
	t := Current()
	title := fmt.Sprintf("%s  %s %s  %s %d",
		C(t.Title, "Categories"),
		C(t.Muted, "filter:"), C(t.Accent, b.Filter.String()),
		C(t.Accent, "Total"), b.Total,
	)
	if b.Empty() {
		return []string{title, "", C(t.Muted, NoData)}
	}
	if width < 5 {
		width = 5
	}

	lines := []string{title, "", StackedBar(b, width), ""}
	for _, e := range b.Entries {
		pct, _ := b.Percent(e)
		color := Hex(e.Color)
		lines = append(lines, fmt.Sprintf("%s %-8s %3d  %8s",
			C(color, t.Swatch),
			e.Category.String(),
			e.Count,
			breakdown.FormatPercent(pct),
		))
	}
	return lines
}

// StackedBar splits width cells between the entries by count. Rounding
// leftovers go to the largest remainders so the bar always fills width.
func StackedBar(b breakdown.Breakdown, width int) string {
	if b.Empty() {
		return strings.Repeat(Current().BarEmpty, width)
	}
	cells := make([]int, len(b.Entries))
	rems := make([]int, len(b.Entries))
	used := 0
	for i, e := range b.Entries {
		cells[i] = e.Count * width / b.Total
		rems[i] = e.Count * width % b.Total
		used += cells[i]
	}
	for used < width {
		best := 0
		for i := range rems {
			if rems[i] > rems[best] {
				best = i
			}
		}
		cells[best]++
		rems[best] = -1
		used++
	}

	var sb strings.Builder
	for i, e := range b.Entries {
		sb.WriteString(C(Hex(e.Color), strings.Repeat(Current().BarFull, cells[i])))
	}
	return sb.String()
}
