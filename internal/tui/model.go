// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nullchimp/ai-agent-sub000/internal/chat"
	"github.com/nullchimp/ai-agent-sub000/internal/coordinator"
	"github.com/nullchimp/ai-agent-sub000/internal/domain"
	"github.com/nullchimp/ai-agent-sub000/internal/gateway"
	"github.com/nullchimp/ai-agent-sub000/internal/render"
)

const (
	statusClearAfter = 4 * time.Second
	debugPaneEvents  = 20
)

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctx    context.Context
	coord  *coordinator.Coordinator
	chat   *chat.Controller
	client *gateway.Client
	logger *zap.SugaredLogger

	transcript viewport.Model
	debugPane  viewport.Model
	input      textinput.Model
	spinner    spinner.Model

	ready       bool
	sending     bool
	debugOpen   bool
	debugEvents []domain.DebugEvent
	status      string
	statusIsErr bool
	statusSeq   int

	width  int
	height int

	theme  theme
	styles *render.Styles
}

type theme struct {
	header    lipgloss.Style
	userLabel lipgloss.Style
	botLabel  lipgloss.Style
	toolsNote lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	footer    lipgloss.Style
	debugHead lipgloss.Style
}

func newTheme() theme {
	muted := lipgloss.Color("245")
	return theme{
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		userLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		toolsNote: lipgloss.NewStyle().Foreground(muted).Italic(true),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		errStatus: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		footer:    lipgloss.NewStyle().Foreground(muted),
		debugHead: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
	}
}

type sendDoneMsg struct {
	err error
}

type sessionChangedMsg struct {
	status string
	err    error
}

type debugEventsMsg struct {
	events  []domain.DebugEvent
	enabled bool
	err     error
}

type debugToggledMsg struct {
	enabled bool
	err     error
}

type clearStatusMsg struct {
	seq int
}

// New builds the chat model. The context bounds every backend call the
// model issues.
func New(ctx context.Context, coord *coordinator.Coordinator, ctrl *chat.Controller, client *gateway.Client, logger *zap.SugaredLogger) Model {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message and press enter"
	input.CharLimit = chat.DefaultMaxMessageChars
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	transcript := viewport.New(0, 0)
	transcript.MouseWheelEnabled = true
	debugPane := viewport.New(0, 0)

	m := Model{
		ctx:        ctx,
		coord:      coord,
		chat:       ctrl,
		client:     client,
		logger:     logger,
		transcript: transcript,
		debugPane:  debugPane,
		input:      input,
		spinner:    sp,
		theme:      newTheme(),
		styles:     render.DefaultStyles(),
	}
	if current, ok := coord.Current(); ok {
		m.debugOpen = current.DebugPanelOpen
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.chat.Send(m.ctx, text)
		return sendDoneMsg{err: err}
	}
}

func (m Model) newSessionCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.coord.NewSession(m.ctx)
		if err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{status: "new session: " + s.Title}
	}
}

func (m Model) deleteSessionCmd() tea.Cmd {
	return func() tea.Msg {
		id := m.coord.CurrentID()
		if id == "" {
			return sessionChangedMsg{err: coordinator.ErrNoCurrentSession}
		}
		if err := m.coord.Delete(m.ctx, id); err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{status: "session deleted"}
	}
}

func (m Model) cycleSessionCmd() tea.Cmd {
	return func() tea.Msg {
		sessions := m.coord.Sessions()
		if len(sessions) < 2 {
			return sessionChangedMsg{status: "no other sessions"}
		}
		current := m.coord.CurrentID()
		next := sessions[0].LocalID
		for i, s := range sessions {
			if s.LocalID == current {
				next = sessions[(i+1)%len(sessions)].LocalID
				break
			}
		}
		if err := m.coord.Select(m.ctx, next); err != nil {
			return sessionChangedMsg{err: err}
		}
		return sessionChangedMsg{}
	}
}

func (m Model) fetchDebugCmd() tea.Cmd {
	return func() tea.Msg {
		localID := m.coord.CurrentID()
		if localID == "" {
			return debugEventsMsg{err: coordinator.ErrNoCurrentSession}
		}
		backendID, err := m.coord.EnsureLinked(m.ctx, localID)
		if err != nil {
			return debugEventsMsg{err: err}
		}
		listing, err := m.client.ListDebugEvents(m.ctx, backendID)
		if err != nil {
			return debugEventsMsg{err: err}
		}
		return debugEventsMsg{events: listing.Events, enabled: listing.Enabled}
	}
}

func (m Model) toggleDebugCmd() tea.Cmd {
	return func() tea.Msg {
		localID := m.coord.CurrentID()
		if localID == "" {
			return debugToggledMsg{err: coordinator.ErrNoCurrentSession}
		}
		backendID, err := m.coord.EnsureLinked(m.ctx, localID)
		if err != nil {
			return debugToggledMsg{err: err}
		}
		current, ok := m.coord.Current()
		if !ok {
			return debugToggledMsg{err: coordinator.ErrNoCurrentSession}
		}
		enabled := !current.DebugEnabled
		acked, err := m.client.SetDebugMode(m.ctx, backendID, enabled)
		if err != nil {
			return debugToggledMsg{err: err}
		}
		if err := m.coord.SetDebugEnabled(m.ctx, localID, acked); err != nil {
			return debugToggledMsg{err: err}
		}
		return debugToggledMsg{enabled: acked}
	}
}

// setStatus replaces the status line and schedules its clear. A later
// status bumps the sequence so a stale clear is ignored.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusIsErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusClearAfter, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.renderPanes()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case sendDoneMsg:
		m.sending = false
		if msg.err != nil {
			cmds = append(cmds, m.setStatus(sendErrorText(msg.err), true))
			m.renderPanes()
			break
		}
		m.renderPanes()
		m.transcript.GotoBottom()
		if m.debugOpen {
			cmds = append(cmds, m.fetchDebugCmd())
		}

	case sessionChangedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus(msg.err.Error(), true))
		} else if msg.status != "" {
			cmds = append(cmds, m.setStatus(msg.status, false))
		}
		m.debugEvents = nil
		m.syncDebugPane()
		if m.debugOpen {
			cmds = append(cmds, m.fetchDebugCmd())
		}
		m.renderPanes()
		m.transcript.GotoBottom()

	case debugEventsMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus("debug: "+msg.err.Error(), true))
			break
		}
		m.debugEvents = msg.events
		m.renderPanes()

	case debugToggledMsg:
		if msg.err != nil {
			cmds = append(cmds, m.setStatus("debug: "+msg.err.Error(), true))
			break
		}
		cmds = append(cmds, m.setStatus(fmt.Sprintf("debug capture enabled=%v", msg.enabled), false))
		if m.debugOpen {
			cmds = append(cmds, m.fetchDebugCmd())
		}

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.sending {
				break
			}
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				break
			}
			m.sending = true
			m.input.Reset()
			cmds = append(cmds, m.sendCmd(text))
			m.renderPanes()
			m.transcript.GotoBottom()
		case "ctrl+n":
			cmds = append(cmds, m.newSessionCmd())
		case "ctrl+x":
			cmds = append(cmds, m.deleteSessionCmd())
		case "tab":
			cmds = append(cmds, m.cycleSessionCmd())
		case "ctrl+d":
			m.debugOpen = !m.debugOpen
			localID := m.coord.CurrentID()
			if localID != "" {
				if err := m.coord.SetDebugPanelOpen(m.ctx, localID, m.debugOpen); err != nil {
					m.logger.Warnw("persist debug panel state", "error", err)
				}
			}
			m.resize()
			m.renderPanes()
			if m.debugOpen {
				cmds = append(cmds, m.fetchDebugCmd())
			}
		case "ctrl+t":
			cmds = append(cmds, m.toggleDebugCmd())
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			cmds = append(cmds, cmd)
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// syncDebugPane restores the pane open state the now-current session was
// saved with. No-op when there is no current session.
func (m *Model) syncDebugPane() {
	current, ok := m.coord.Current()
	if !ok || current.DebugPanelOpen == m.debugOpen {
		return
	}
	m.debugOpen = current.DebugPanelOpen
	m.resize()
}

func (m *Model) resize() {
	chrome := 4 // header, input, status, footer
	transcriptHeight := m.height - chrome
	if m.debugOpen {
		debugHeight := transcriptHeight / 2
		transcriptHeight -= debugHeight + 1
		m.debugPane.Width = m.width
		m.debugPane.Height = debugHeight
	}
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}
	m.transcript.Width = m.width
	m.transcript.Height = transcriptHeight
	m.input.Width = m.width - len(m.input.Prompt) - 1
}

func (m *Model) renderPanes() {
	m.transcript.SetContent(m.renderTranscript())
	if m.debugOpen {
		m.debugPane.SetContent(m.renderDebug())
	}
}

func (m *Model) renderTranscript() string {
	current, ok := m.coord.Current()
	if !ok {
		return "No session. Press ctrl+n to create one."
	}
	var b strings.Builder
	for _, msg := range current.Messages {
		label := m.theme.botLabel.Render("Agent")
		if msg.Role == domain.RoleUser {
			label = m.theme.userLabel.Render("You")
		}
		b.WriteString(label)
		b.WriteString("  ")
		b.WriteString(msg.Timestamp.Format("15:04:05"))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n")
		if len(msg.UsedTools) > 0 {
			b.WriteString(m.theme.toolsNote.Render("tools: " + strings.Join(msg.UsedTools, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.sending {
		b.WriteString(m.spinner.View())
		b.WriteString(" thinking...\n")
	}
	return b.String()
}

func (m *Model) renderDebug() string {
	events := m.debugEvents
	if len(events) > debugPaneEvents {
		events = events[len(events)-debugPaneEvents:]
	}
	if len(events) == 0 {
		return m.theme.footer.Render("no debug events (ctrl+t toggles capture)")
	}
	return render.RenderEvents(events, m.styles)
}

func (m *Model) renderHeader() string {
	current, ok := m.coord.Current()
	title := current.Title
	if !ok || title == "" {
		title = "agentchat"
	}
	count := len(m.coord.Sessions())
	line := fmt.Sprintf("%s  (%d session%s)", title, count, plural(count))
	if current.DebugEnabled {
		line += "  [debug on]"
	}
	return m.theme.header.Render(line)
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsErr {
		return m.theme.errStatus.Render(m.status)
	}
	return m.theme.status.Render(m.status)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	parts := []string{m.renderHeader(), m.transcript.View()}
	if m.debugOpen {
		parts = append(parts, m.theme.debugHead.Render("debug events"), m.debugPane.View())
	}
	parts = append(parts,
		m.input.View(),
		m.renderStatus(),
		m.theme.footer.Render("enter send · tab switch · ctrl+n new · ctrl+x delete · ctrl+d debug pane · ctrl+t capture · esc quit"),
	)
	return strings.Join(parts, "\n")
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrSendInProgress):
		return "still waiting for the previous reply"
	case errors.Is(err, chat.ErrMessageTooLong):
		return "message too long"
	case errors.Is(err, chat.ErrSuperseded):
		return "reply discarded: session changed"
	default:
		return "send failed: " + err.Error()
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
