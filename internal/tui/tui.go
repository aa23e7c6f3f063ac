// Package tui is the interactive front end: a todo list and a categories
// view showing the breakdown for the selected filter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tally/internal/breakdown"
	"github.com/Makepad-fr/tally/internal/model"
	"github.com/Makepad-fr/tally/internal/store"
	"github.com/Makepad-fr/tally/internal/ui"
)

// listItem adapts a record to bubbles/list.Item
type listItem struct {
	rec model.Record
}

func (i listItem) Title() string       { return i.rec.Content }
func (i listItem) Description() string { return i.rec.Category.String() }
func (i listItem) FilterValue() string { return i.rec.Content + " " + i.rec.Category.String() }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := ui.MutedStyle.Render("☐")
	text := it.rec.Content
	if it.rec.Completed {
		box = ui.SuccessStyle.Render("☑")
		text = ui.DoneStyle.Render(text)
	}
	tag := ui.CategoryStyle(it.rec.Category).Render("#" + it.rec.Category.String())

	prefix := "  "
	if index == m.Index() {
		prefix = ui.SelectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s\n", prefix, box, text, tag)
}

type view int

const (
	listView view = iota
	categoriesView
)

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	statsBind  = key.NewBinding(key.WithKeys("c", "tab"), key.WithHelp("c", "categories"))
	filterBind = key.NewBinding(key.WithKeys("f", "left", "right"), key.WithHelp("f", "done/pending"))
)

// writeErrMsg carries a failed write-through from the store.
type writeErrMsg struct{ err error }

type Model struct {
	ctx   context.Context
	store *store.Store

	view view
	list list.Model

	// categories view
	filter breakdown.Filter
	bd     breakdown.Breakdown
	bdErr  error

	// inline add
	adding      bool
	ti          textinput.Model
	addCategory model.Category
	addErr      string

	status        string
	width, height int
}

// New builds the model from the store's current collection.
func New(ctx context.Context, s *store.Store) (Model, error) {
	recs, err := s.Load(ctx)
	if err != nil {
		return Model{}, err
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.TitleStyle
	l.Styles.HelpStyle = ui.HelpStyle
	l.Styles.PaginationStyle = ui.HelpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, toggleBind, statsBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, toggleBind, statsBind} }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New todo..."
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		store:  s,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
	m.setRecords(recs)
	return m, nil
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, s *store.Store) error {
	m, err := New(ctx, s)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func waitForWriteError(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return writeErrMsg{err: <-ch}
	}
}

func (m Model) Init() tea.Cmd { return waitForWriteError(m.store.Errors()) }

func (m *Model) setRecords(recs model.Collection) {
	items := make([]list.Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, listItem{rec: r})
	}
	m.list.SetItems(items)

	d, p := recs.Stats()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		ui.TitleStyle.Render("Todos"),
		ui.SuccessStyle.Render("✔"), d,
		ui.PendingStyle.Render("•"), p,
		ui.AccentStyle.Render("Total"), len(recs),
	)
}

// recompute rebuilds the breakdown from the store's snapshot. It runs on
// every activation of the categories view and every filter change.
func (m *Model) recompute() {
	recs, _ := m.store.Snapshot()
	m.bd, m.bdErr = breakdown.Compute(recs, m.filter)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.width-4, m.height-4)
		return m, nil
	case writeErrMsg:
		m.status = ui.ErrorStyle.Render("may not have saved: " + msg.err.Error())
		return m, waitForWriteError(m.store.Errors())
	}

	if m.adding {
		return m.updateAdd(msg)
	}
	if m.view == categoriesView {
		return m.updateCategories(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch km.String() {
		case "q", "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, tea.Quit
		case " ":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				recs, err := m.store.ToggleID(m.ctx, it.rec.ID)
				if err != nil {
					m.status = ui.ErrorStyle.Render(err.Error())
					return m, nil
				}
				m.status = ""
				m.setRecords(recs)
			}
			return m, nil
		case "a":
			m.adding = true
			m.addErr = ""
			m.addCategory = model.Work
			m.ti.SetValue("")
			m.ti.Focus()
			return m, textinput.Blink
		case "c", "tab":
			m.view = categoriesView
			m.recompute()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			recs, err := m.store.Append(m.ctx, m.ti.Value(), m.addCategory)
			if err != nil {
				if errors.Is(err, model.ErrEmptyContent) {
					m.addErr = "Todo cannot be empty"
				} else {
					m.addErr = err.Error()
				}
				return m, nil
			}
			m.setRecords(recs)
			m.list.Select(len(recs) - 1)
			m.adding = false
			m.ti.Blur()
			return m, nil
		case "tab":
			m.addCategory = model.Categories[(m.addCategory.Index()+1)%len(model.Categories)]
			return m, nil
		case "esc":
			m.adding = false
			m.ti.SetValue("")
			m.ti.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateCategories(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "c", "tab", "esc":
		m.view = listView
	case "f", "left", "right":
		m.filter = m.filter.Toggle()
		m.recompute()
	}
	return m, nil
}

func (m Model) View() string {
	if m.view == categoriesView {
		return ui.FrameStyle.Render(m.categoriesView())
	}

	listHeight := m.height - 4
	if m.adding {
		listHeight = m.height - 7
	}
	if m.status != "" {
		listHeight--
	}
	m.list.SetSize(m.width-4, listHeight)

	content := m.list.View()
	if m.adding {
		title := fmt.Sprintf("Add todo  %s  %s",
			ui.CategoryStyle(m.addCategory).Render("#"+m.addCategory.String()),
			ui.HelpStyle.Render("tab: category  enter: save  esc: cancel"))
		if m.addErr != "" {
			title += "  " + ui.ErrorStyle.Render(m.addErr)
		}
		content += "\n" + ui.FrameStyle.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + m.status
	}
	return ui.FrameStyle.Render(content)
}

func (m Model) categoriesView() string {
	help := ui.HelpStyle.Render(strings.Join([]string{
		filterBind.Help().Key + " " + filterBind.Help().Desc,
		statsBind.Help().Key + " back",
		"q quit",
	}, " • "))
	if m.bdErr != nil {
		return ui.ErrorStyle.Render(m.bdErr.Error()) + "\n\n" + help
	}
	barWidth := m.width - 30
	if barWidth > 40 {
		barWidth = 40
	}
	body := strings.Join(ui.BreakdownLines(m.bd, barWidth), "\n")
	return lipgloss.JoinVertical(lipgloss.Left, body, "", help)
}
