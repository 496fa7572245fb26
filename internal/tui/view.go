package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type uiStyles struct {
	titleStyle    lipgloss.Style
	mutedStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	warnStyle     lipgloss.Style
	promptBorder  lipgloss.Style
}

func pickerStyles() uiStyles {
	return uiStyles{
		titleStyle:    lipgloss.NewStyle().Bold(true),
		mutedStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warnStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		promptBorder:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
	}
}

func (model Model) View() string {
	styles := pickerStyles()
	if model.phase == phaseConfirming {
		return renderConfirm(model, styles)
	}
	return renderList(model, styles)
}

func renderList(model Model, styles uiStyles) string {
	var b strings.Builder

	b.WriteString(styles.titleStyle.Render("Select courses to download"))
	b.WriteString("\n\n")

	listHeight := model.listHeight()
	end := model.viewTop + listHeight
	if end > len(model.courses) {
		end = len(model.courses)
	}

	for i := model.viewTop; i < end; i++ {
		cursor := "  "
		if i == model.cursor {
			cursor = styles.cursorStyle.Render("› ")
		}

		checkbox := "[ ]"
		name := model.courses[i].Name()
		if model.selected[i] {
			checkbox = styles.selectedStyle.Render("[x]")
			name = styles.selectedStyle.Render(name)
		}

		id := styles.mutedStyle.Render(fmt.Sprintf(" (id %d)", model.courses[i].ID))
		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, checkbox, name, id))
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("%d of %d selected", model.selectedCount(), len(model.courses))
	if model.status != "" {
		summary = summary + "  " + styles.warnStyle.Render(model.status)
	}
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(styles.mutedStyle.Render("↑/↓ move  space toggle  a all  enter confirm  q quit"))

	return b.String()
}

func renderConfirm(model Model, styles uiStyles) string {
	prompt := fmt.Sprintf("Download %d of %d courses? (y/N)",
		model.selectedCount(), len(model.courses))
	return "\n" + styles.promptBorder.Render(styles.titleStyle.Render(prompt)) + "\n"
}
