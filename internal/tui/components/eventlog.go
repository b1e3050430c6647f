// ABOUTME: EventLog component for displaying protocol traffic with scrolling
// ABOUTME: Uses bubbles viewport for scrolling and formats events by direction
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastogt/fastocloud-go/internal/tui/theme"
)

type EventKind int

const (
	EventOutgoing EventKind = iota
	EventIncoming
	EventSystem
	EventError
)

// Event is one line in the traffic log.
type Event struct {
	Kind      EventKind
	Summary   string
	Timestamp time.Time
}

type EventLog struct {
	width    int
	height   int
	theme    theme.Theme
	viewport viewport.Model
	events   []Event
	maxLines int
}

func NewEventLog(width, height int, t theme.Theme) *EventLog {
	vp := viewport.New(width, height)
	vp.Style = t.EventLogStyle()

	el := &EventLog{
		width:    width,
		height:   height,
		theme:    t,
		viewport: vp,
		maxLines: 1000,
	}
	el.updateViewport()
	return el
}

func (el *EventLog) AddEvent(ev Event) {
	el.events = append(el.events, ev)
	if len(el.events) > el.maxLines {
		el.events = el.events[len(el.events)-el.maxLines:]
	}
	el.updateViewport()
	el.viewport.GotoBottom()
}

func (el *EventLog) Events() []Event {
	return el.events
}

func (el *EventLog) formatEvent(ev Event) string {
	timestamp := el.theme.DimStyle().Render(ev.Timestamp.Format("15:04:05"))

	var marker string
	var style = el.theme.DimStyle()

	switch ev.Kind {
	case EventOutgoing:
		marker = "→"
		style = el.theme.OutgoingStyle()
	case EventIncoming:
		marker = "←"
		style = el.theme.IncomingStyle()
	case EventError:
		marker = "✗"
		style = el.theme.ErrorStyle()
	default:
		marker = "•"
	}

	return fmt.Sprintf("%s %s %s", timestamp, marker, style.Render(ev.Summary))
}

func (el *EventLog) updateViewport() {
	if len(el.events) == 0 {
		el.viewport.SetContent(el.theme.DimStyle().Render("No traffic yet"))
		return
	}

	var sb strings.Builder
	for _, ev := range el.events {
		sb.WriteString(el.formatEvent(ev))
		sb.WriteString("\n")
	}
	el.viewport.SetContent(sb.String())
}

func (el *EventLog) SetSize(width, height int) {
	el.width = width
	el.height = height
	el.viewport.Width = width
	el.viewport.Height = height
	el.updateViewport()
}

func (el *EventLog) Update(msg tea.Msg) (*EventLog, tea.Cmd) {
	var cmd tea.Cmd
	el.viewport, cmd = el.viewport.Update(msg)
	return el, cmd
}

func (el *EventLog) View() string {
	return el.viewport.View()
}
