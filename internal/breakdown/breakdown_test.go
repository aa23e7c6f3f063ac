package breakdown

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/Makepad-fr/tally/internal/model"
)

func sample() []model.Record {
	return []model.Record{
		{Content: "a", Category: model.Work, Completed: true},
		{Content: "b", Category: model.Work, Completed: true},
		{Content: "c", Category: model.Other, Completed: true},
		{Content: "d", Category: model.Private, Completed: false},
	}
}

func TestComputeDone(t *testing.T) {
	b, err := Compute(sample(), Done)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Category: model.Work, Count: 2, Color: "#E53629"},
		{Category: model.Other, Count: 1, Color: "#4149C3"},
	}
	if !reflect.DeepEqual(b.Entries, want) {
		t.Fatalf("entries = %+v, want %+v", b.Entries, want)
	}
	if b.Total != 3 {
		t.Fatalf("total = %d, want 3", b.Total)
	}

	var got []string
	for _, e := range b.Entries {
		p, ok := b.Percent(e)
		if !ok {
			t.Fatal("expected a percentage")
		}
		got = append(got, FormatPercent(p))
	}
	if !reflect.DeepEqual(got, []string{"66.67%", "33.33%"}) {
		t.Fatalf("percentages = %v", got)
	}
}

func TestComputePending(t *testing.T) {
	b, err := Compute(sample(), Pending)
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{{Category: model.Private, Count: 1, Color: "#2CD23E"}}
	if !reflect.DeepEqual(b.Entries, want) || b.Total != 1 {
		t.Fatalf("got %+v total %d", b.Entries, b.Total)
	}
	p, _ := b.Percent(b.Entries[0])
	if FormatPercent(p) != "100.00%" {
		t.Fatalf("percentage = %s", FormatPercent(p))
	}
}

func TestComputeNoMatch(t *testing.T) {
	for _, records := range [][]model.Record{
		nil,
		{{Content: "a", Category: model.Work, Completed: false}},
	} {
		b, err := Compute(records, Done)
		if err != nil {
			t.Fatal(err)
		}
		if !b.Empty() || b.Total != 0 || len(b.Entries) != 0 {
			t.Fatalf("expected empty breakdown, got %+v", b)
		}
		if b.Entries == nil {
			t.Fatal("entries must be an empty sequence, not nil")
		}
		if _, ok := Percent(1, b.Total); ok {
			t.Fatal("percent must refuse a zero total")
		}
	}
}

func TestComputeUnknownCategory(t *testing.T) {
	records := append(sample(), model.Record{Content: "e", Category: model.Category(3), Completed: true})
	if _, err := Compute(records, Done); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	// Records outside the filter are not inspected.
	if _, err := Compute(records, Pending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(30)
		records := make([]model.Record, n)
		for i := range records {
			records[i] = model.Record{
				Content:   "x",
				Category:  model.Categories[rng.Intn(len(model.Categories))],
				Completed: rng.Intn(2) == 0,
			}
		}
		for _, f := range []Filter{Done, Pending} {
			b, err := Compute(records, f)
			if err != nil {
				t.Fatal(err)
			}

			matching, sum := 0, 0
			for _, r := range records {
				if f.Match(r) {
					matching++
				}
			}
			for i, e := range b.Entries {
				sum += e.Count
				if e.Count < 1 {
					t.Fatalf("zero-count entry %+v", e)
				}
				if i > 0 && b.Entries[i-1].Category >= e.Category {
					t.Fatalf("entries out of canonical order: %+v", b.Entries)
				}
				if e.Color != e.Category.Color() {
					t.Fatalf("color mismatch: %+v", e)
				}
			}
			if sum != b.Total || b.Total != matching {
				t.Fatalf("sum %d, total %d, matching %d", sum, b.Total, matching)
			}

			shuffled := append([]model.Record(nil), records...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			again, _ := Compute(shuffled, f)
			if !reflect.DeepEqual(again, b) {
				t.Fatalf("result depends on insertion order:\n%+v\n%+v", again, b)
			}
		}
	}
}

func TestFilter(t *testing.T) {
	var f Filter
	if f != Done {
		t.Fatal("zero filter should be done")
	}
	if err := f.Set("Pending"); err != nil || f != Pending {
		t.Fatalf("Set: %v, %v", err, f)
	}
	if f.Toggle() != Done || Done.Toggle() != Pending {
		t.Fatal("toggle is not an involution")
	}
	if err := f.Set("later"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
	if f.String() != "pending" || f.Type() != "filter" {
		t.Fatalf("unexpected String/Type: %s %s", f.String(), f.Type())
	}
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		count, total int
		want         float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{1, 6, 16.67},
		{5, 5, 100},
	}
	for _, tt := range tests {
		got, ok := Percent(tt.count, tt.total)
		if !ok || got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.count, tt.total, got, tt.want)
		}
	}
}
