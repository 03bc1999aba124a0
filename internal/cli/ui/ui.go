// Package ui is the operator dev console: a bubbletea program that renders
// the coordinator's live RobotState, the stream-message log, host resource
// usage, and accepts the same command surface the hotkey dispatcher does.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"station/internal/codec"
	"station/internal/connection"
	"station/internal/coordinator"
	"station/internal/diagnostics"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57")).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	enabledStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	disabledStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("243"))
	estoppedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	redAllianceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	blueAllianceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	slotLockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	slotEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	logViewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
)

// snapshotMsg carries a newly-published RobotState into Update.
type snapshotMsg coordinator.RobotState

// logLineMsg is one line read from the coordinator's stdout event stream.
type logLineMsg string

// copyNoticeExpiredMsg clears the "copied to clipboard" notice after a
// short delay.
type copyNoticeExpiredMsg struct{}

// hostStatsMsg carries a new host resource usage sample into Update.
type hostStatsMsg diagnostics.HostStats

// Model is the dev console's bubbletea state.
type Model struct {
	Coord *coordinator.Coordinator

	state coordinator.RobotState

	logLines []string
	logView  viewport.Model

	width  int
	height int

	lastError  string
	showNotice bool

	host diagnostics.HostStats
}

// NewModel returns a Model driving coord. Call Init to start its
// subscriptions once a tea.Program owns it.
func NewModel(coord *coordinator.Coordinator) Model {
	return Model{
		Coord:   coord,
		logView: viewport.New(80, 10),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.Coord), waitForLogLine(m.Coord), sampleHostStats())
}

// waitForSnapshot blocks on the coordinator's Publisher until the next
// state change, then delivers it as a snapshotMsg. Any number of
// independent watchers can block on the same changed channel and each
// wakes on the latest published state rather than a queued backlog.
func waitForSnapshot(c *coordinator.Coordinator) tea.Cmd {
	return func() tea.Msg {
		_, changed := c.Pub.Latest()
		<-changed
		state, _ := c.Pub.Latest()
		return snapshotMsg(state)
	}
}

func waitForLogLine(c *coordinator.Coordinator) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-c.StdoutEvents()
		if !ok {
			return nil
		}
		return logLineMsg(line)
	}
}

// sampleHostStats polls this host's own CPU/memory usage on a fixed
// interval, distinct from the robot's wire-decoded telemetry.
func sampleHostStats() tea.Cmd {
	return tea.Tick(diagnostics.HostSamplePeriod, func(time.Time) tea.Msg {
		stats, err := diagnostics.SampleHostStats()
		if err != nil {
			return hostStatsMsg{}
		}
		return hostStatsMsg(stats)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		m.logView.Height = msg.Height - 10
		return m, nil

	case snapshotMsg:
		m.state = coordinator.RobotState(msg)
		if m.state.Status.Brownout {
			m.lastError = "robot reports brownout"
		}
		return m, waitForSnapshot(m.Coord)

	case logLineMsg:
		m.logLines = append(m.logLines, string(msg))
		if len(m.logLines) > 500 {
			m.logLines = m.logLines[len(m.logLines)-500:]
		}
		m.logView.SetContent(strings.Join(m.logLines, "\n"))
		m.logView.GotoBottom()
		return m, waitForLogLine(m.Coord)

	case copyNoticeExpiredMsg:
		m.showNotice = false
		return m, nil

	case hostStatsMsg:
		m.host = diagnostics.HostStats(msg)
		return m, sampleHostStats()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		m.Coord.EStop()
	case "r":
		m.Coord.ResetEStop()
	case "enter":
		m.Coord.Disable()
	case "e":
		m.Coord.Enable()
	case "a":
		m.Coord.AStop()
	case "p":
		m.Coord.StartPractice()
	case "s":
		m.Coord.StopPractice()
	case "f1":
		m.Coord.RescanJoysticks()
	case "c":
		if m.lastError == "" {
			return m, nil
		}
		if err := clipboard.WriteAll(m.lastError); err == nil {
			m.showNotice = true
			return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return copyNoticeExpiredMsg{} })
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf(" station · team %d · %s ", m.state.Team, m.state.ConnectionState)))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderPracticeLine())
	b.WriteString("\n\n")
	b.WriteString(m.renderSlots())
	b.WriteString("\n\n")

	if m.showNotice {
		b.WriteString(noticeStyle.Render("copied last error to clipboard"))
		b.WriteString("\n\n")
	}

	b.WriteString(logViewStyle.Render(m.logView.View()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(fmt.Sprintf("host cpu=%.0f%% mem=%.0f%%", m.host.CPUPercent, m.host.MemPercent)))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("space=EStop  r=reset  enter=Disable  e=Enable  a=AStop  p=practice start  s=practice stop  f1=rescan  c=copy error  q=quit"))

	return b.String()
}

func (m Model) renderStatusLine() string {
	var enabled string
	switch {
	case m.state.Control.EStop:
		enabled = estoppedStyle.Render("ESTOPPED")
	case m.state.Control.Enabled:
		enabled = enabledStyle.Render("ENABLED")
	default:
		enabled = disabledStyle.Render("disabled")
	}

	alliance := fmt.Sprintf("R%d", m.state.Alliance.Station)
	allianceStyle := redAllianceStyle
	if m.state.Alliance.Color == codec.AllianceBlue {
		alliance = fmt.Sprintf("B%d", m.state.Alliance.Station)
		allianceStyle = blueAllianceStyle
	}

	return fmt.Sprintf("%s  %s  %s  %.2fV  trip=%s  lost=%d",
		enabled,
		m.state.Control.Mode,
		allianceStyle.Render(alliance),
		m.state.Voltage,
		m.state.TripTime.Round(time.Millisecond),
		m.state.LostCount,
	)
}

func (m Model) renderPracticeLine() string {
	if !m.state.Practice.Running {
		return footerStyle.Render("practice: idle")
	}
	return fmt.Sprintf("practice: %s  elapsed=%s  remaining=%s",
		m.state.Practice.Phase,
		m.state.Practice.Elapsed.Round(time.Second),
		m.state.Practice.Remaining.Round(time.Second),
	)
}

func (m Model) renderSlots() string {
	var lines []string
	for _, slot := range m.state.Slots {
		if !slot.Connected {
			lines = append(lines, slotEmptyStyle.Render(fmt.Sprintf("%d: --", slot.Index)))
			continue
		}
		mark := ""
		if slot.Locked {
			mark = " [locked]"
		}
		line := fmt.Sprintf("%d: %s (%d axes, %d buttons)%s", slot.Index, slot.Name, slot.AxisCount, slot.ButtonCount, mark)
		if slot.Locked {
			line = slotLockedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// connStateLabel returns the string form of a connection state. View
// formats the header from the state directly and does not call it.
func connStateLabel(s connection.State) string {
	return s.String()
}
