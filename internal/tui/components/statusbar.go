// ABOUTME: StatusBar component for displaying node connection state
// ABOUTME: Shows the protocol state with colored indicators and keyboard shortcuts
package components

import (
	"fmt"
	"strings"

	"github.com/fastogt/fastocloud-go/internal/tui/theme"
	"github.com/fastogt/fastocloud-go/pkg/client"
)

type StatusBar struct {
	width       int
	theme       theme.Theme
	nodeAddress string
	state       client.Status
}

func NewStatusBar(width int, t theme.Theme) *StatusBar {
	return &StatusBar{
		width: width,
		theme: t,
		state: client.StatusInit,
	}
}

func (s *StatusBar) SetNodeAddress(address string) {
	s.nodeAddress = address
}

func (s *StatusBar) SetState(state client.Status) {
	s.state = state
}

func (s *StatusBar) SetSize(width int) {
	s.width = width
}

func (s *StatusBar) View() string {
	var statusIcon string
	switch s.state {
	case client.StatusActive:
		statusIcon = "🟢"
	case client.StatusConnected:
		statusIcon = "🟡"
	default:
		statusIcon = "🔴"
	}

	statusPart := fmt.Sprintf("[%s %s]", statusIcon, s.state)

	var nodePart string
	if s.nodeAddress != "" {
		nodePart = fmt.Sprintf("Node: %s", s.nodeAddress)
	} else {
		nodePart = "No node"
	}

	shortcuts := "p: Ping, g: Log, q: Quit"

	leftContent := fmt.Sprintf("%s %s", statusPart, nodePart)

	// Right-align the shortcuts within the bar
	padding := s.width - len(leftContent) - len(shortcuts) - 7
	if padding < 1 {
		padding = 1
	}

	spacer := strings.Repeat(" ", padding)
	fullContent := fmt.Sprintf("%s%s| %s", leftContent, spacer, shortcuts)

	return s.theme.StatusBarStyle().
		Width(s.width - 2).
		Render(fullContent)
}
