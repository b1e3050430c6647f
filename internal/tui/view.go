// ABOUTME: View rendering for the node monitor
// ABOUTME: Implements the Elm architecture View function
package tui

import "github.com/charmbracelet/lipgloss"

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.eventLog.View(),
		m.statusBar.View(),
	)
}
