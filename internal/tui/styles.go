package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the browser views. The
// selection palette mirrors a classic curses pair scheme: selected rows
// yellow on blue, the cursor rendered in reverse video, and a row that
// is both selected and under the cursor white on red.
type Styles struct {
	Header         lipgloss.Style
	Directory      lipgloss.Style
	File           lipgloss.Style
	Unknown        lipgloss.Style
	Cursor         lipgloss.Style
	Selected       lipgloss.Style
	CursorSelected lipgloss.Style
	Status         lipgloss.Style
	Error          lipgloss.Style
	Footer         lipgloss.Style
	Dialog         lipgloss.Style
	DialogTitle    lipgloss.Style
	LogTitle       lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36")),
		Directory: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33")),
		File: lipgloss.NewStyle(),
		Unknown: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		Cursor: lipgloss.NewStyle().
			Reverse(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Background(lipgloss.Color("4")),
		CursorSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("1")).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(1, 2),
		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36")),
		LogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("36")),
	}
}
