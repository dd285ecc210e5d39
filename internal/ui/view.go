package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerLines = 2
	footerLines = 2
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	)
}

// listHeight is the number of user rows that fit between header and footer,
// minus the error line when one is shown.
func (m Model) listHeight() int {
	rows := m.height - headerLines - footerLines
	if m.snapshot.Err != nil {
		rows--
	}
	return rows
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	status := m.snapshot.Status.String()

	left := styles.Logo.Render("roster") + " " + styles.MutedText.Render(truncate(m.sourceLabel, 48))
	right := styles.StatusStyle(status).Render(status)
	if m.snapshot.IsOffline() {
		right = styles.DangerText.Render("offline") + " " + right
	}
	if !m.snapshot.UpdatedAt.IsZero() {
		right = styles.FaintText.Render("updated "+m.snapshot.UpdatedAt.Format("15:04:05")) + " " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	line := left + strings.Repeat(" ", max(gap, 1)) + right

	columns := styles.MutedText.Render(fmt.Sprintf("  %s %s %s %s",
		cell("ID", 4), cell("NAME", 24), cell("EMAIL", 28), "COMPANY"))

	return styles.Header.Width(m.width).Render(line) + "\n" + columns
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	rows := m.listHeight()
	var lines []string

	if err := m.snapshot.Err; err != nil {
		lines = append(lines, styles.DangerText.Render("Error: ")+styles.Text.Render(truncate(err.Error(), max(m.width-8, 10))))
	}

	users := m.snapshot.Result.Users
	switch {
	case len(users) == 0 && m.snapshot.IsLoading():
		lines = append(lines, styles.MutedText.Render("  "+m.spinner.View()+" Loading users..."))
	case len(users) == 0:
		lines = append(lines, styles.MutedText.Render("  No users"))
	}

	end := min(m.offset+max(rows, 0), len(users))
	for i := m.offset; i < end; i++ {
		u := users[i]
		row := fmt.Sprintf("%s %s %s %s",
			cell(fmt.Sprintf("#%d", u.ID), 4),
			cell(u.Name, 24),
			cell(u.Email, 28),
			truncate(u.Company.Name, 24))
		if i == m.cursor {
			lines = append(lines, styles.Selected.Width(m.width).Render("> "+row))
		} else {
			lines = append(lines, styles.Text.Render("  "+row))
		}
	}

	body := strings.Join(lines, "\n")
	return lipgloss.NewStyle().Height(max(m.height-headerLines-footerLines, 0)).Render(body)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var activity string
	switch {
	case m.snapshot.IsLoading():
		activity = m.spinner.View() + " loading"
	case m.snapshot.IsReloading():
		activity = m.spinner.View() + " refreshing"
	case m.snapshot.IsLoadingMore():
		activity = m.spinner.View() + " loading more"
	case m.snapshot.IsPolling():
		activity = m.spinner.View() + " polling"
	}

	summary := fmt.Sprintf("%d users", m.snapshot.Result.Len())
	if m.snapshot.Result.HasMore {
		summary += " · more available"
	}
	if m.snapshot.PollActive {
		summary += " · polling on"
	}

	parts := []string{summary}
	if activity != "" {
		parts = append(parts, styles.InfoText.Render(activity))
	}
	if m.notice != "" {
		parts = append(parts, styles.WarningText.Render(m.notice))
	}

	status := styles.Footer.Width(m.width).Render(strings.Join(parts, "  "))
	return status + "\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
