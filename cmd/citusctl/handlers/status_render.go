package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorAmber = lipgloss.Color("#f59e0b")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

var statusColumns = []struct {
	title string
	width int
}{
	{"NAME", 24},
	{"NAMESPACE", 16},
	{"PHASE", 12},
	{"WORKERS", 8},
	{"STORAGE", 8},
	{"LAST RECONCILE", 16},
}

func statusRow(s ClusterStatus) []string {
	return []string{
		s.Name,
		s.Namespace,
		s.Phase,
		fmt.Sprintf("%d", s.Workers),
		fmt.Sprintf("%dGi", s.WorkerStorageGB),
		s.LastReconcile,
	}
}

// phaseStyle colors a phase by how healthy it is.
func phaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "Active":
		return lipgloss.NewStyle().Foreground(colorGreen)
	case "Failed":
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case "Pending", "Terminating":
		return lipgloss.NewStyle().Foreground(colorAmber)
	default:
		return dimStyle
	}
}

// renderStatusPlain produces fixed-width columns suitable for scripts.
func renderStatusPlain(statuses []ClusterStatus) string {
	var b strings.Builder

	for i, col := range statusColumns {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(fmt.Sprintf("%-*s", col.width, col.title))
	}
	b.WriteString("\n")

	for _, s := range statuses {
		for i, cell := range statusRow(s) {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fmt.Sprintf("%-*s", statusColumns[i].width, cell))
		}
		b.WriteString("\n")
		if s.LastError != "" {
			b.WriteString(fmt.Sprintf("  error (%d): %s\n", s.FailureCount, s.LastError))
		}
	}

	return b.String()
}

// renderStatusStyled produces a lipgloss-styled status table.
func renderStatusStyled(statuses []ClusterStatus) string {
	var b strings.Builder

	b.WriteString("\n")
	for _, col := range statusColumns {
		b.WriteString(headerStyle.Width(col.width + 1).Render(col.title))
	}
	b.WriteString("\n")

	total := 0
	for _, col := range statusColumns {
		total += col.width + 1
	}
	b.WriteString(dimStyle.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	for _, s := range statuses {
		for i, cell := range statusRow(s) {
			style := lipgloss.NewStyle()
			if statusColumns[i].title == "PHASE" {
				style = phaseStyle(cell)
			}
			b.WriteString(style.Width(statusColumns[i].width + 1).Render(cell))
		}
		b.WriteString("\n")
		if s.LastError != "" {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  ❌ %s (failures: %d)", s.LastError, s.FailureCount)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	return b.String()
}
