package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Makepad-fr/tally/internal/breakdown"
	"github.com/Makepad-fr/tally/internal/kv"
	"github.com/Makepad-fr/tally/internal/model"
	"github.com/Makepad-fr/tally/internal/store"
)

func newModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	a, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	s := store.New(a, store.Options{Logger: logger})
	t.Cleanup(func() { _ = s.Close() })

	m, err := New(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), s
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
)

func TestAddAndToggle(t *testing.T) {
	m, s := newModel(t)

	m = send(t, m, runes("a"), runes("write report"), tab, enter)
	if m.adding {
		t.Fatal("add mode should close after enter")
	}
	recs, _ := s.Snapshot()
	if len(recs) != 1 || recs[0].Content != "write report" || recs[0].Category != model.Private {
		t.Fatalf("unexpected records: %+v", recs)
	}

	m = send(t, m, space)
	recs, _ = s.Snapshot()
	if !recs[0].Completed {
		t.Fatal("space should toggle the selected todo")
	}
	if !strings.Contains(m.View(), "write report") {
		t.Fatal("view does not show the todo")
	}
}

func TestAddRejectsEmpty(t *testing.T) {
	m, s := newModel(t)
	m = send(t, m, runes("a"), enter)
	if !m.adding || m.addErr == "" {
		t.Fatal("empty todo should keep add mode open with an error")
	}
	if recs, _ := s.Snapshot(); len(recs) != 0 {
		t.Fatal("empty todo was stored")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding {
		t.Fatal("esc should cancel add mode")
	}
}

func TestCategoriesViewRecomputes(t *testing.T) {
	m, s := newModel(t)
	ctx := context.Background()
	s.Append(ctx, "a", model.Work)
	s.Append(ctx, "b", model.Other)
	s.Toggle(ctx, 0)

	m = send(t, m, runes("c"))
	if m.view != categoriesView {
		t.Fatal("c should open the categories view")
	}
	if m.bd.Filter != breakdown.Done || m.bd.Total != 1 || m.bd.Entries[0].Category != model.Work {
		t.Fatalf("unexpected done breakdown: %+v", m.bd)
	}

	m = send(t, m, runes("f"))
	if m.bd.Filter != breakdown.Pending || m.bd.Total != 1 || m.bd.Entries[0].Category != model.Other {
		t.Fatalf("unexpected pending breakdown: %+v", m.bd)
	}
	if !strings.Contains(m.View(), "100.00%") {
		t.Fatalf("view missing percentage:\n%s", m.View())
	}

	// Leaving and re-entering picks up mutations made in between.
	m = send(t, m, runes("c"))
	s.Toggle(ctx, 1)
	m = send(t, m, runes("c"))
	if !m.bd.Empty() {
		t.Fatalf("expected no pending todos, got %+v", m.bd)
	}
	if !strings.Contains(m.View(), "No data available") {
		t.Fatal("expected the no-data message")
	}
}

type failingSet struct{ kv.Adapter }

func (failingSet) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestWriteFailureOutlivesInitListener(t *testing.T) {
	fs, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	s := store.New(failingSet{fs}, store.Options{Logger: logger})
	t.Cleanup(func() { _ = s.Close() })
	m, err := New(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}

	// bubbletea runs Init's command on its own goroutine and may discard the
	// message once the program has exited.
	go m.Init()()

	ctx := context.Background()
	if _, err := s.Append(ctx, "last one", model.Work); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Failed(); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Failed() = %v, want the disk full write error", err)
	}
}

func TestWriteErrorShowsStatus(t *testing.T) {
	m, _ := newModel(t)
	m = send(t, m, writeErrMsg{err: errors.New("disk full")})
	if !strings.Contains(m.status, "may not have saved") {
		t.Fatalf("status = %q", m.status)
	}
}
