package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/ui/components"
	"libtrack/internal/ui/theme"
	booksview "libtrack/internal/ui/views/books"
	loansview "libtrack/internal/ui/views/loans"
	membersview "libtrack/internal/ui/views/members"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// libraryPort is everything the TUI needs from the library module. The
// sub-views narrow it further through their own Port interfaces.

type libraryPort interface {
	CreateCategory(ctx context.Context, name string) (librarydto.MutationOutput, error)
	DeleteCategory(ctx context.Context, categoryID string) (librarydto.MutationOutput, error)
	ListCategories(ctx context.Context) ([]librarydto.CategoryOutput, error)
	CreateBook(ctx context.Context, title, author, isbn, categoryID string) (librarydto.MutationOutput, error)
	DeleteBook(ctx context.Context, bookID string) (librarydto.MutationOutput, error)
	ListBooks(ctx context.Context, categoryID, search string, availableOnly bool) ([]librarydto.BookOutput, error)
	CreateMember(ctx context.Context, name, email string) (librarydto.MutationOutput, error)
	DeleteMember(ctx context.Context, memberID string) (librarydto.MutationOutput, error)
	ListMembers(ctx context.Context) ([]librarydto.MemberOutput, error)
	GetMember(ctx context.Context, memberID string) (librarydto.MemberDetailOutput, error)
	Borrow(ctx context.Context, bookID, memberID string, dueDays int) (librarydto.MutationOutput, error)
	Return(ctx context.Context, loanID string) (librarydto.MutationOutput, error)
	ListLoans(ctx context.Context, filter, memberID string) ([]librarydto.LoanOutput, error)
	Seed(ctx context.Context) (librarydto.MutationOutput, error)
	Stats(ctx context.Context) (librarydto.StatsOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabBooks tabID = iota
	tabMembers
	tabLoans
	tabCount
)

var tabLabels = [tabCount]string{"Books", "Members", "Loans"}

// ─── messages ────────────────────────────────────────────────────────────────

// LibraryChangedMsg is sent from outside the program after every committed
// library change. All views reload on it.
type LibraryChangedMsg struct {
	Stats librarydto.StatsOutput
}

type statsLoadedMsg struct {
	stats librarydto.StatsOutput
	err   error
}

type mutationMsg struct {
	action string
	out    librarydto.MutationOutput
	err    error
}

type categoryResolvedMsg struct {
	id   string
	name string
	err  error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab       key.Binding
	Help      key.Binding
	Palette   key.Binding
	Quit      key.Binding
	Available key.Binding
	Status    key.Binding
	Return    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Available: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "available only")),
		Status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle loan status")),
		Return:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "return loan")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Available},
		{k.Status, k.Return},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; rendering is delegated to the sub-views.
type Model struct {
	library        libraryPort
	defaultDueDays int

	booksView   booksview.Model
	membersView membersview.Model
	loansView   loansview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	stats     librarydto.StatsOutput
	status    string
	width     int
	height    int
}

func NewModel(library libraryPort, defaultDueDays int) Model {
	return Model{
		library:        library,
		defaultDueDays: defaultDueDays,
		booksView:      booksview.New(library),
		membersView:    membersview.New(library),
		loansView:      loansview.New(library),
		activeTab:      tabBooks,
		keys:           defaultKeys(),
		help:           help.New(),
		palette:        components.NewPalette(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.booksView.Init(),
		m.membersView.Init(),
		m.loansView.Init(),
		m.loadStatsCmd(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case LibraryChangedMsg:
		m.stats = msg.Stats
		return m, tea.Batch(m.booksView.Reload(), m.membersView.Reload(), m.loansView.Reload())

	case statsLoadedMsg:
		if msg.err != nil {
			m.status = "stats: " + msg.err.Error()
		} else {
			m.stats = msg.stats
		}
		return m, nil

	case mutationMsg:
		switch {
		case msg.err != nil:
			m.status = msg.action + " failed: " + msg.err.Error()
		case !msg.out.Applied:
			m.status = msg.action + " rejected: " + msg.out.Reason
		default:
			m.status = msg.action + " done"
		}
		return m, nil

	case categoryResolvedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.activeTab = tabBooks
		if msg.id == "" {
			m.status = "showing all categories"
		} else {
			m.status = "filtered by " + msg.name
		}
		cmd := m.booksView.SetCategory(msg.id, msg.name)
		return m, cmd

	// Loaded messages go to their own view regardless of the active tab.
	case booksview.LoadedMsg:
		var cmd tea.Cmd
		m.booksView, cmd = m.booksView.Update(msg)
		return m, cmd
	case membersview.LoadedMsg, membersview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.membersView, cmd = m.membersView.Update(msg)
		return m, cmd
	case loansview.LoadedMsg:
		var cmd tea.Cmd
		m.loansView, cmd = m.loansView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		case "ctrl+a":
			if m.activeTab == tabBooks {
				cmd := m.booksView.ToggleAvailableOnly()
				return m, cmd
			}
		case "s":
			if m.activeTab == tabLoans {
				cmd := m.loansView.CycleFilter()
				return m, cmd
			}
		case "r":
			if m.activeTab == tabLoans {
				return m.returnSelected()
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabBooks:
		m.booksView, tabCmd = m.booksView.Update(msg)
	case tabMembers:
		m.membersView, tabCmd = m.membersView.Update(msg)
	case tabLoans:
		m.loansView, tabCmd = m.loansView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabBooks:
		return m.booksView.View()
	case tabMembers:
		return m.membersView.View()
	case tabLoans:
		return m.loansView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "libtrack  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.stats.Summary != "" {
		left = theme.Muted.Render(m.stats.Summary) + "  " + left
	}
	if m.stats.OverdueLoans > 0 {
		left = theme.Error.Render(fmt.Sprintf("● %d overdue", m.stats.OverdueLoans)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

// executePalette must stay in sync with components.PaletteHints.
func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	input = strings.TrimSpace(input)
	if input == "" {
		return m, nil
	}
	verb, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "book:add":
		fields := splitPipe(rest)
		if len(fields) < 2 || len(fields) > 3 {
			m.status = "usage: book:add <title> | <author> [| isbn]"
			return m, nil
		}
		isbn := ""
		if len(fields) == 3 {
			isbn = fields[2]
		}
		categoryID := m.booksView.CategoryID()
		return m, m.mutate("book:add", func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.CreateBook(ctx, fields[0], fields[1], isbn, categoryID)
		})

	case "book:delete":
		book, ok := m.booksView.Selected()
		if !ok {
			m.status = "no book selected"
			return m, nil
		}
		return m, m.mutate("book:delete", func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.DeleteBook(ctx, book.ID)
		})

	case "category:add":
		if rest == "" {
			m.status = "usage: category:add <name>"
			return m, nil
		}
		return m, m.mutate("category:add", func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.CreateCategory(ctx, rest)
		})

	case "category:delete":
		name := rest
		if name == "" {
			name = m.booksView.CategoryName()
		}
		if name == "" {
			m.status = "usage: category:delete [name]"
			return m, nil
		}
		clearFilter := strings.EqualFold(name, m.booksView.CategoryName())
		if clearFilter {
			m.booksView.ClearCategory()
		}
		return m, m.mutate("category:delete", func(ctx context.Context) (librarydto.MutationOutput, error) {
			category, err := m.findCategory(ctx, name)
			if err != nil {
				return librarydto.MutationOutput{}, err
			}
			return m.library.DeleteCategory(ctx, category.ID)
		})

	case "filter":
		if rest == "" || strings.EqualFold(rest, "all") {
			return m, func() tea.Msg { return categoryResolvedMsg{} }
		}
		return m, m.resolveCategoryCmd(rest)

	case "search":
		m.activeTab = tabBooks
		m.status = "search: " + rest
		cmd := m.booksView.SetSearch(rest)
		return m, cmd

	case "member:add":
		fields := splitPipe(rest)
		if len(fields) != 2 {
			m.status = "usage: member:add <name> | <email>"
			return m, nil
		}
		return m, m.mutate("member:add", func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.CreateMember(ctx, fields[0], fields[1])
		})

	case "member:delete":
		id, ok := m.membersView.SelectedID()
		if !ok {
			m.status = "no member selected"
			return m, nil
		}
		return m, m.mutate("member:delete", func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.DeleteMember(ctx, id)
		})

	case "borrow":
		days := m.defaultDueDays
		if rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil {
				m.status = "usage: borrow [days]"
				return m, nil
			}
			days = n
		}
		book, ok := m.booksView.Selected()
		if !ok {
			m.status = "select a book on the Books tab first"
			return m, nil
		}
		memberID, ok := m.membersView.SelectedID()
		if !ok {
			m.status = "select a member on the Members tab first"
			return m, nil
		}
		action := fmt.Sprintf("borrow %q for %s", book.Title, m.membersView.SelectedName())
		return m, m.mutate(action, func(ctx context.Context) (librarydto.MutationOutput, error) {
			return m.library.Borrow(ctx, book.ID, memberID, days)
		})

	case "return":
		return m.returnSelected()

	case "loans":
		m.activeTab = tabLoans
		cmd := m.loansView.SetFilter(rest)
		return m, cmd

	case "seed":
		return m, m.mutate("seed", m.library.Seed)

	default:
		m.status = "unknown command: " + verb
	}
	return m, nil
}

func (m Model) returnSelected() (tea.Model, tea.Cmd) {
	loan, ok := m.loansView.Selected()
	if !ok {
		m.status = "select a loan on the Loans tab first"
		return m, nil
	}
	return m, m.mutate("return "+loan.BookTitle, func(ctx context.Context) (librarydto.MutationOutput, error) {
		return m.library.Return(ctx, loan.ID)
	})
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabBooks:
		return m.booksView.Filtering()
	case tabMembers:
		return m.membersView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.booksView, _ = m.booksView.Update(sz)
	m.membersView, _ = m.membersView.Update(sz)
	m.loansView, _ = m.loansView.Update(sz)
}

func (m Model) findCategory(ctx context.Context, nameOrID string) (librarydto.CategoryOutput, error) {
	categories, err := m.library.ListCategories(ctx)
	if err != nil {
		return librarydto.CategoryOutput{}, err
	}
	for _, c := range categories {
		if c.ID == nameOrID || strings.EqualFold(c.Name, nameOrID) {
			return c, nil
		}
	}
	return librarydto.CategoryOutput{}, fmt.Errorf("no category named %q", nameOrID)
}

func splitPipe(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) mutate(action string, fn func(context.Context) (librarydto.MutationOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(context.Background())
		return mutationMsg{action: action, out: out, err: err}
	}
}

func (m Model) loadStatsCmd() tea.Cmd {
	library := m.library
	return func() tea.Msg {
		stats, err := library.Stats(context.Background())
		return statsLoadedMsg{stats: stats, err: err}
	}
}

func (m Model) resolveCategoryCmd(nameOrID string) tea.Cmd {
	return func() tea.Msg {
		category, err := m.findCategory(context.Background(), nameOrID)
		if err != nil {
			return categoryResolvedMsg{err: err}
		}
		return categoryResolvedMsg{id: category.ID, name: category.Name}
	}
}
