package ui

import (
	"fmt"

	"github.com/muesli/reflow/truncate"

	"github.com/Makepad-fr/tally/internal/model"
)

const maxContentWidth = 60

// Header is the title line with done/pending/total counts.
func Header(c model.Collection) string {
	t := Current()
	d, p := c.Stats()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Todos"),
		C(t.Success, t.SymDone), d,
		C(t.Pending, t.SymUnchecked), p,
		C(t.Accent, "Total"), len(c),
	)
}

// ListLines renders records with their 1-based position in the collection.
// When group is set, pending and done records are listed separately.
func ListLines(c model.Collection, group bool) []string {
	if !group {
		return recordLines(c, indexes(len(c)))
	}
	var pend, done []int
	for i, r := range c {
		if r.Completed {
			done = append(done, i)
		} else {
			pend = append(pend, i)
		}
	}
	t := Current()
	var lines []string
	lines = append(lines, C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, recordLines(c, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, C(t.Muted, "(none)"))
	} else {
		lines = append(lines, recordLines(c, done)...)
	}
	return lines
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func recordLines(c model.Collection, idx []int) []string {
	t := Current()
	if len(idx) == 0 {
		return []string{C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		r := c[i]
		box, color := t.BoxUnchecked, t.Muted
		if r.Completed {
			box, color = t.BoxChecked, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s %s",
			C(dim, fmt.Sprintf("%2d.", i+1)),
			C(color, box),
			Truncate(r.Content, maxContentWidth),
			C(Hex(r.Category.Color()), "#"+r.Category.String()),
		))
	}
	return out
}

// Truncate shortens s to width cells, ending with "...".
func Truncate(s string, width uint) string {
	return truncate.StringWithTail(s, width, "...")
}
