// ABOUTME: Update logic for the node monitor (handles all messages and transitions)
// ABOUTME: Implements the Elm architecture Update function
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastogt/fastocloud-go/internal/tui/components"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentSizes()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.monitor.Stop()
			return m, tea.Quit

		case "p":
			m.monitor.Ping()
			m.addEvent(components.EventSystem, "ping requested")
			return m, nil

		case "g":
			m.monitor.GetLog("http://localhost/service.log")
			m.addEvent(components.EventSystem, "service log requested")
			return m, nil
		}

		// Everything else scrolls the event log
		var cmd tea.Cmd
		m.eventLog, cmd = m.eventLog.Update(msg)
		return m, cmd

	case NodeStateMsg:
		m.state = msg.State
		m.statusBar.SetState(msg.State)
		m.addEvent(components.EventSystem, fmt.Sprintf("state: %s", msg.State))
		return m, m.monitor.WaitForEvent()

	case NodeRequestMsg:
		m.addEvent(components.EventIncoming, msg.Raw)
		return m, m.monitor.WaitForEvent()

	case NodeResponseMsg:
		kind := components.EventIncoming
		if msg.IsErr {
			kind = components.EventError
		}
		summary := msg.Raw
		if msg.Method != "" {
			summary = fmt.Sprintf("%s: %s", msg.Method, msg.Raw)
		}
		m.addEvent(kind, summary)
		return m, m.monitor.WaitForEvent()

	case NodeErrorMsg:
		m.addEvent(components.EventError, msg.Err.Error())
		return m, m.monitor.WaitForEvent()

	case NodeClosedMsg:
		m.addEvent(components.EventSystem, "connection closed")
		return m, nil
	}

	var cmd tea.Cmd
	m.eventLog, cmd = m.eventLog.Update(msg)
	return m, cmd
}

func (m *Model) addEvent(kind components.EventKind, summary string) {
	m.eventLog.AddEvent(components.Event{
		Kind:      kind,
		Summary:   summary,
		Timestamp: time.Now(),
	})
}

// updateComponentSizes recalculates component sizes from the window
func (m *Model) updateComponentSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}

	statusBarHeight := 1
	m.eventLog.SetSize(m.width, m.height-statusBarHeight)
	m.statusBar.SetSize(m.width)
}
