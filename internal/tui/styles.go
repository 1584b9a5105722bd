// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8A8A8"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB000")).
			Bold(true)

	// Bar rows are coloured by height, bottom to top.
	barLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	barMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	barHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

// barStyle picks the colour of row (0 = bottom) in a chart of rows lines.
func barStyle(row, rows int) lipgloss.Style {
	switch {
	case row*3 >= rows*2:
		return barHighStyle
	case row*3 >= rows:
		return barMidStyle
	default:
		return barLowStyle
	}
}
