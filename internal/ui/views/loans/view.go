package loans

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/ui/theme"
)

type Port interface {
	ListLoans(ctx context.Context, filter, memberID string) ([]librarydto.LoanOutput, error)
}

type LoadedMsg struct {
	Filter string
	Loans  []librarydto.LoanOutput
	Err    error
}

// Filters in the order the tab cycles through them.
var Filters = []string{"active", "overdue", "returned", "all"}

type Model struct {
	port   Port
	table  table.Model
	loans  []librarydto.LoanOutput
	filter string
	err    error
	width  int
	height int
}

func New(port Port) Model {
	columns := []table.Column{
		{Title: "Book", Width: 28},
		{Title: "Member", Width: 18},
		{Title: "Borrowed", Width: 10},
		{Title: "Due", Width: 10},
		{Title: "Status", Width: 16},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Surface1).
		BorderBottom(true).
		Foreground(theme.Sapphire).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Base).
		Background(theme.Lavender).
		Bold(false)
	t.SetStyles(s)

	return Model{port: port, table: t, filter: Filters[0]}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 2)
		m.table.SetHeight(msg.Height - 3)

	case LoadedMsg:
		if msg.Filter != m.filter {
			// stale response for a filter the user already left
			return m, nil
		}
		m.err = msg.Err
		if msg.Err == nil {
			m.loans = msg.Loans
			m.rebuildRows()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	tabs := make([]string, len(Filters))
	for i, f := range Filters {
		if f == m.filter {
			tabs[i] = theme.Hot.Render("[" + f + "]")
		} else {
			tabs[i] = theme.Muted.Render(" " + f + " ")
		}
	}
	b.WriteString(theme.Title.Render("Loans") + "  " + strings.Join(tabs, " ") + "\n")
	switch {
	case m.err != nil:
		b.WriteString(theme.Error.Render(m.err.Error()))
	case len(m.loans) == 0:
		b.WriteString(theme.Muted.Render(fmt.Sprintf("No %s loans.", m.filter)))
	default:
		b.WriteString(m.table.View())
	}
	return b.String()
}

func (m Model) Reload() tea.Cmd {
	port, filter := m.port, m.filter
	return func() tea.Msg {
		loans, err := port.ListLoans(context.Background(), filter, "")
		return LoadedMsg{Filter: filter, Loans: loans, Err: err}
	}
}

func (m Model) Filter() string { return m.filter }

// SetFilter switches the status filter. Unknown names fall back to "all".
func (m *Model) SetFilter(filter string) tea.Cmd {
	filter = strings.ToLower(strings.TrimSpace(filter))
	m.filter = "all"
	for _, f := range Filters {
		if f == filter {
			m.filter = f
		}
	}
	return m.Reload()
}

// CycleFilter moves to the next filter in Filters.
func (m *Model) CycleFilter() tea.Cmd {
	for i, f := range Filters {
		if f == m.filter {
			m.filter = Filters[(i+1)%len(Filters)]
			break
		}
	}
	return m.Reload()
}

// Selected returns the highlighted loan.
func (m Model) Selected() (librarydto.LoanOutput, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.loans) {
		return librarydto.LoanOutput{}, false
	}
	return m.loans[i], true
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, 0, len(m.loans))
	for _, l := range m.loans {
		due := "-"
		if !l.DueAt.IsZero() {
			due = l.DueAt.Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			l.BookTitle,
			l.MemberName,
			l.BorrowedAt.Format("2006-01-02"),
			due,
			l.StatusLabel,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.GotoTop()
	}
}
