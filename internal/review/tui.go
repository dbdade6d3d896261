// Package review is the interactive browser over stored postings, showing
// which ones the relevance policy matches.
package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oryndra/jobradar/internal/filter"
	"github.com/oryndra/jobradar/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 0, 0, 1)

	matchBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Render("●")

	missBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render("○")

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	cursorLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 1)
)

type reviewModel struct {
	jobs    []model.Job
	policy  *filter.Policy
	visible []int // indexes into jobs after the matches-only toggle
	cursor  int
	only    bool // show matches only
	vp      viewport.Model
	ready   bool
}

func newReviewModel(jobs []model.Job, policy *filter.Policy) reviewModel {
	m := reviewModel{jobs: jobs, policy: policy}
	m.rebuild()
	return m
}

func (m *reviewModel) rebuild() {
	m.visible = m.visible[:0]
	for i, j := range m.jobs {
		if m.only && !m.policy.Matches(j) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Header, detail pane, and footer take 8 rows.
		m.vp = viewport.New(msg.Width, max(msg.Height-8, 3))
		m.ready = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case "m":
			m.only = !m.only
			m.rebuild()
		}
	}

	if m.ready {
		m.vp.SetContent(m.listContent())
		// Keep the cursor line in view.
		if m.cursor < m.vp.YOffset {
			m.vp.SetYOffset(m.cursor)
		} else if m.cursor >= m.vp.YOffset+m.vp.Height {
			m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
		}
	}

	return m, nil
}

func (m reviewModel) listContent() string {
	var b strings.Builder
	for pos, idx := range m.visible {
		j := m.jobs[idx]

		badge := missBadge
		if m.policy.Matches(j) {
			badge = matchBadge
		}

		title := j.Title
		if !j.Active {
			title = staleStyle.Render(title)
		}
		line := fmt.Sprintf("%s %-28s %s", badge, truncate(j.Company, 28), title)
		if pos == m.cursor {
			line = cursorLineStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m reviewModel) View() string {
	if !m.ready {
		return "loading..."
	}

	matched := 0
	for _, j := range m.jobs {
		if m.policy.Matches(j) {
			matched++
		}
	}
	header := headerStyle.Render(
		fmt.Sprintf("Stored postings: %d   policy matches: %d", len(m.jobs), matched))

	detail := ""
	if len(m.visible) > 0 {
		j := m.jobs[m.visible[m.cursor]]
		firstSeen := j.FirstSeen.Format("2006-01-02")
		status := "active"
		if !j.Active {
			status = "stale"
		}
		detail = detailStyle.Render(fmt.Sprintf(
			"%s — %s\nlocation: %s   department: %s\nsource: %s   first seen: %s   status: %s\n%s",
			j.Company, j.Title, j.Location, j.Department, j.Source, firstSeen, status, j.URL,
		))
	}

	footer := footerStyle.Render("↑/↓/j/k navigate  m toggle matches-only  q quit")

	return header + "\n" + m.vp.View() + "\n" + detail + footer
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// Run launches the review TUI over the given postings.
func Run(jobs []model.Job, policy *filter.Policy) error {
	p := tea.NewProgram(newReviewModel(jobs, policy), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
