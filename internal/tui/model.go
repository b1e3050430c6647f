// ABOUTME: Core Bubbletea model and state management for the node monitor
// ABOUTME: Implements the Model interface with Init, Update, and View methods
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastogt/fastocloud-go/internal/tui/components"
	"github.com/fastogt/fastocloud-go/internal/tui/theme"
	"github.com/fastogt/fastocloud-go/pkg/client"
)

type Model struct {
	theme  theme.Theme
	width  int
	height int

	// Components
	eventLog  *components.EventLog
	statusBar *components.StatusBar

	// Connection
	monitor *Monitor
	state   client.Status
}

func NewModel(monitor *Monitor, themeName, nodeAddress string) Model {
	th := theme.GetTheme(themeName)

	// Sized on the first WindowSizeMsg
	eventLog := components.NewEventLog(80, 22, th)
	statusBar := components.NewStatusBar(80, th)
	statusBar.SetNodeAddress(nodeAddress)

	return Model{
		theme:     th,
		eventLog:  eventLog,
		statusBar: statusBar,
		monitor:   monitor,
		state:     client.StatusInit,
	}
}

func (m Model) Init() tea.Cmd {
	return m.monitor.WaitForEvent()
}
