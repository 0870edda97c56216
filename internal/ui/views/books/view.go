package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListBooks(ctx context.Context, categoryID, search string, availableOnly bool) ([]librarydto.BookOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Books []librarydto.BookOutput
	Err   error
}

// ─── list item ───────────────────────────────────────────────────────────────

type bookItem struct {
	book librarydto.BookOutput
}

func (i bookItem) Title() string { return i.book.Title }
func (i bookItem) Description() string {
	state := theme.Available.Render("available")
	if !i.book.IsAvailable {
		state = theme.Unavailable.Render("on loan")
	}
	return i.book.Author + "  " + state
}
func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Author }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int

	categoryID    string
	categoryName  string
	search        string
	availableOnly bool
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Books"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, detail: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.list.Title = m.title()
		if msg.Err != nil {
			m.list.Title = "Books: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Books))
		for i, b := range msg.Books {
			items[i] = bookItem{book: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prev := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prev {
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading books…")
	}
	listW := m.width * 5 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Detail.
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload fetches the books matching the current filters.
func (m Model) Reload() tea.Cmd {
	port, categoryID, search, availableOnly := m.port, m.categoryID, m.search, m.availableOnly
	return func() tea.Msg {
		books, err := port.ListBooks(context.Background(), categoryID, search, availableOnly)
		return LoadedMsg{Books: books, Err: err}
	}
}

// SetCategory restricts the list to one category. An empty id shows all.
func (m *Model) SetCategory(id, name string) tea.Cmd {
	m.categoryID, m.categoryName = id, name
	return m.Reload()
}

// ClearCategory drops the category filter without reloading.
func (m *Model) ClearCategory() {
	m.categoryID, m.categoryName = "", ""
}

func (m Model) CategoryID() string   { return m.categoryID }
func (m Model) CategoryName() string { return m.categoryName }

func (m *Model) SetSearch(text string) tea.Cmd {
	m.search = strings.TrimSpace(text)
	return m.Reload()
}

func (m *Model) ToggleAvailableOnly() tea.Cmd {
	m.availableOnly = !m.availableOnly
	return m.Reload()
}

// Selected returns the highlighted book.
func (m Model) Selected() (librarydto.BookOutput, bool) {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book, true
	}
	return librarydto.BookOutput{}, false
}

// Filtering reports whether the list's own fuzzy filter has the keyboard.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) title() string {
	var parts []string
	if m.categoryName != "" {
		parts = append(parts, m.categoryName)
	}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("%q", m.search))
	}
	if m.availableOnly {
		parts = append(parts, "available")
	}
	if len(parts) == 0 {
		return "Books"
	}
	return "Books · " + strings.Join(parts, " · ")
}

func (m *Model) resize() {
	listW := m.width * 5 / 10
	m.list.SetSize(listW, m.height)
	m.detail.Width = m.width - listW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	b, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No books match")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(b.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("author:   ") + b.Author + "\n")
	if b.ISBN != "" {
		sb.WriteString(theme.Muted.Render("isbn:     ") + b.ISBN + "\n")
	}
	category := b.CategoryName
	if category == "" {
		category = theme.Muted.Render("uncategorized")
	}
	sb.WriteString(theme.Muted.Render("category: ") + category + "\n")
	sb.WriteString(theme.Muted.Render("added:    ") + b.AddedAt.Format("2006-01-02") + "\n")
	if b.IsAvailable {
		sb.WriteString(theme.Muted.Render("status:   ") + theme.Available.Render("available") + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("status:   ") + theme.Unavailable.Render("on loan") + "\n")
	}
	sb.WriteString(theme.Muted.Render("id:       ") + b.ID + "\n")
	sb.WriteString("\n" + theme.Muted.Render("ctrl+a: available only  : borrow, book:delete"))
	return sb.String()
}
