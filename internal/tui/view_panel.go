package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"quoteterm/internal/model"
)

var panelBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(1, 2)

func panelWidth(total int) int {
	w := total - 8
	if w > 90 {
		w = 90
	}
	if w < 40 {
		w = 40
	}
	return w
}

func requirementColumns(width int) []table.Column {
	const fixed = 4 + 10 + 10 + 12 + 8 // numbered + qty + unit + price + padding
	descW := max(width-fixed, 20)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Description", Width: descW},
		{Title: "Quantity", Width: 10},
		{Title: "Unit", Width: 10},
		{Title: "Unit Price", Width: 12},
	}
}

// requirementRows derives every cell from the polymorphic item at render
// time; nothing about an item's display form is stored redundantly.
func requirementRows(items []model.RequirementItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			it.DisplayDescription(),
			it.DisplayQuantity(),
			it.DisplayUnit(),
			it.DisplayUnitPrice(),
		}
	}
	return rows
}

// renderPanelBox builds the modal. The footer count is computed from the
// owner record's live requirement slice, the same sequence the table shows,
// so it can never go stale after a deletion.
func (m *AppModel) renderPanelBox() string {
	subject := "Quotation Requirements"
	count := 0
	if rec := m.findRecord(m.panelID); rec != nil {
		subject = rec.Subject
		count = len(rec.Requirements)
	}

	body := m.panelTable.View()
	if count == 0 {
		body = "No requirements found"
	}

	content := titleStyle.Render("Requirements Details") + "\n" +
		subtitleStyle.Render(subject) + "\n\n" +
		body + "\n\n" +
		fmt.Sprintf("Total Items: %d", count) +
		footerStyle.Render("\nx: delete item  esc: close  q: quit")
	if m.status != "" {
		content += "\n" + statusStyle.Render(m.status)
	}

	return panelBoxStyle.Width(panelWidth(m.width)).Render(content)
}

func (m *AppModel) panelView() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderPanelBox())
}
