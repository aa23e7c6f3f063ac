// Package breakdown derives the per-category summary shown on the
// categories view. Everything here is a pure function of its inputs.
package breakdown

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Makepad-fr/tally/internal/model"
)

// ErrUnknownCategory means a record carries a category outside the closed
// set. It is a data-integrity error and is never folded into a bucket.
var ErrUnknownCategory = errors.New("unknown category")

// Filter selects which records feed a breakdown.
type Filter uint8

const (
	Done Filter = iota
	Pending
)

// ParseFilter accepts "done" or "pending".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done":
		return Done, nil
	case "pending":
		return Pending, nil
	}
	return 0, fmt.Errorf("invalid filter %q (want done or pending)", s)
}

func (f Filter) String() string {
	if f == Pending {
		return "pending"
	}
	return "done"
}

// Toggle returns the other filter value.
func (f Filter) Toggle() Filter {
	if f == Done {
		return Pending
	}
	return Done
}

// Match reports whether r passes the filter.
func (f Filter) Match(r model.Record) bool {
	return r.Completed == (f == Done)
}

// Set and Type make *Filter usable as a pflag.Value.
func (f *Filter) Set(s string) error {
	v, err := ParseFilter(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f *Filter) Type() string { return "filter" }

// Entry is one category's share of the filtered records.
type Entry struct {
	Category model.Category
	Count    int
	Color    string
}

// Breakdown holds entries in canonical category order. Categories without
// matching records have no entry.
type Breakdown struct {
	Filter  Filter
	Entries []Entry
	Total   int
}

// Compute counts the records matching f per category.
func Compute(records []model.Record, f Filter) (Breakdown, error) {
	counts := make([]int, len(model.Categories))
	total := 0
	for i, r := range records {
		if !f.Match(r) {
			continue
		}
		if !r.Category.Valid() {
			return Breakdown{}, fmt.Errorf("%w: record %d has %s", ErrUnknownCategory, i, r.Category)
		}
		counts[r.Category.Index()]++
		total++
	}

	b := Breakdown{Filter: f, Entries: []Entry{}, Total: total}
	for _, c := range model.Categories {
		n := counts[c.Index()]
		if n == 0 {
			continue
		}
		b.Entries = append(b.Entries, Entry{Category: c, Count: n, Color: c.Color()})
	}
	return b, nil
}

// Empty reports whether no record matched; consumers show "no data".
func (b Breakdown) Empty() bool { return b.Total == 0 }

// Percent is e's share of the total, rounded to two decimals. ok is false
// when there is no data to divide by.
func (b Breakdown) Percent(e Entry) (pct float64, ok bool) {
	return Percent(e.Count, b.Total)
}

// Percent returns count/total*100 rounded to two decimal places.
func Percent(count, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return math.Round(float64(count)*10000/float64(total)) / 100, true
}

// FormatPercent renders p like "66.67%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}
