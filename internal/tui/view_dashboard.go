package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"quoteterm/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	statCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			MarginRight(2)
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

func emailColumns(width int) []table.Column {
	const fixed = 14 + 10 + 6 // requirements + status columns + cell padding
	rest := max(width-fixed, 40)
	emailW := rest * 2 / 5
	nameW := rest / 5
	subjW := rest - emailW - nameW
	return []table.Column{
		{Title: "Email", Width: emailW},
		{Title: "Name", Width: nameW},
		{Title: "Subject", Width: subjW},
		{Title: "Requirements", Width: 14},
		{Title: "Status", Width: 10},
	}
}

// emailRows mirrors the record slice one row per record, in order, so the
// table cursor doubles as an index into records. The requirement count is
// read off the live slice each time rows are rebuilt, never cached.
func emailRows(records []model.EmailRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{
			r.SenderEmail,
			r.RecipientName,
			r.Subject,
			fmt.Sprintf("View (%d)", len(r.Requirements)),
			string(r.Status),
		}
	}
	return rows
}

func (m *AppModel) statsView() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Total Quotations", m.stats.Total),
		statCard("Fetched", m.stats.Fetched),
		statCard("Processed", m.stats.Processed),
	)
}

func statCard(title string, value int) string {
	return statCardStyle.Render(
		subtitleStyle.Render(title) + "\n" + statValueStyle.Render(strconv.Itoa(value)),
	)
}

func (m *AppModel) dashboardView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quotation Dashboard"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Email Management System"))
	b.WriteString("\n\n")
	b.WriteString(m.statsView())
	b.WriteString("\n\n")
	if len(m.records) == 0 {
		b.WriteString("No emails found\n")
		b.WriteString(subtitleStyle.Render("New emails will appear here automatically"))
	} else {
		b.WriteString(m.emailTable.View())
	}
	b.WriteString("\n")
	b.WriteString(dashboardFooter())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func dashboardFooter() string {
	return footerStyle.Render("enter: requirements  o: download quotation  r: reload  L: logout  q: quit")
}

func (m *AppModel) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome Back"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Sign in to continue to your dashboard"))
	b.WriteString("\n\n")
	if m.waitingProvider {
		b.WriteString("Waiting for the browser sign-in to finish...\n\n")
		b.WriteString("If no browser opened, visit this URL yourself:\n")
		b.WriteString(m.authURL)
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("enter: reopen browser  esc: cancel  q: quit"))
	} else {
		b.WriteString("Press enter to sign in with Google.\n")
		b.WriteString(footerStyle.Render("enter: sign in  q: quit"))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func (m *AppModel) errorView() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render(m.loadErr))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("r: retry  q: quit"))
	return b.String()
}
