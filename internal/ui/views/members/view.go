package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/ui/theme"
)

type Port interface {
	ListMembers(ctx context.Context) ([]librarydto.MemberOutput, error)
	GetMember(ctx context.Context, memberID string) (librarydto.MemberDetailOutput, error)
}

type LoadedMsg struct {
	Members []librarydto.MemberOutput
	Err     error
}

type DetailLoadedMsg struct {
	Detail librarydto.MemberDetailOutput
	Err    error
}

type memberItem struct {
	member librarydto.MemberOutput
}

func (i memberItem) Title() string { return i.member.Name }
func (i memberItem) Description() string {
	return fmt.Sprintf("%s  %d on loan", i.member.Email, i.member.ActiveLoans)
}
func (i memberItem) FilterValue() string { return i.member.Name + " " + i.member.Email }

type Model struct {
	port   Port
	list   list.Model
	detail viewport.Model
	shown  librarydto.MemberDetailOutput
	width  int
	height int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Members"
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{port: port, list: l, detail: vp}
}

func (m Model) Init() tea.Cmd { return m.Reload() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listW := m.width * 4 / 10
		m.list.SetSize(listW, m.height)
		m.detail.Width = m.width - listW - 4
		m.detail.Height = m.height - 4

	case LoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Members: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Members"
		items := make([]list.Item, len(msg.Members))
		for i, mem := range msg.Members {
			items[i] = memberItem{member: mem}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if id, ok := m.SelectedID(); ok {
			cmds = append(cmds, m.loadDetail(id))
		} else {
			m.shown = librarydto.MemberDetailOutput{}
			m.detail.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.shown = msg.Detail
			m.detail.SetContent(m.renderDetail())
		}
	}

	prev := m.list.Index()
	var lCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prev {
		if id, ok := m.SelectedID(); ok {
			cmds = append(cmds, m.loadDetail(id))
		}
	}

	var vCmd tea.Cmd
	m.detail, vCmd = m.detail.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Detail.
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Reload() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		members, err := port.ListMembers(context.Background())
		return LoadedMsg{Members: members, Err: err}
	}
}

// SelectedID returns the highlighted member's id.
func (m Model) SelectedID() (string, bool) {
	if item, ok := m.list.SelectedItem().(memberItem); ok {
		return item.member.ID, true
	}
	return "", false
}

func (m Model) SelectedName() string {
	if item, ok := m.list.SelectedItem().(memberItem); ok {
		return item.member.Name
	}
	return ""
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) loadDetail(id string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		detail, err := port.GetMember(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

func (m Model) renderDetail() string {
	d := m.shown
	if d.ID == "" {
		return theme.Muted.Render("No members yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("email:  ") + d.Email + "\n")
	sb.WriteString(theme.Muted.Render("joined: ") + d.JoinedAt.Format("2006-01-02") + "\n\n")

	sb.WriteString(theme.Hot.Render(fmt.Sprintf("On loan (%d)", len(d.Active))) + "\n")
	if len(d.Active) == 0 {
		sb.WriteString(theme.Muted.Render("  nothing borrowed") + "\n")
	}
	for _, l := range d.Active {
		sb.WriteString(fmt.Sprintf("  %s  due %s  %s\n",
			l.BookTitle, l.DueAt.Format("2006-01-02"), theme.LoanStatus(l.Status, l.StatusLabel)))
	}

	if len(d.Past) > 0 {
		sb.WriteString("\n" + theme.Hot.Render(fmt.Sprintf("History (%d)", len(d.Past))) + "\n")
		for _, l := range d.Past {
			sb.WriteString(fmt.Sprintf("  %s  returned %s\n", l.BookTitle, l.ReturnedAt.Format("2006-01-02")))
		}
	}
	return sb.String()
}
