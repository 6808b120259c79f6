// Package ui implements the interactive confirm flow for reclaiming a
// port: show who holds it, ask once, free it, report the outcome.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nvdan/portclaim/internal/netstat"
	"github.com/nvdan/portclaim/internal/owner"
	"github.com/nvdan/portclaim/internal/reclaim"
)

type state int

const (
	stateLoading state = iota
	stateList
	stateConfirm
	stateWorking
	stateResult
)

const autoRefreshInterval = 2 * time.Second

type tickMsg time.Time

// row pairs a socket binding with its owner's context.
type row struct {
	binding netstat.Binding
	owner   owner.Context
}

// Model is the Bubble Tea model for the reclaim TUI.
type Model struct {
	state     state
	port      int
	reclaimer *reclaim.Reclaimer
	rows      []row
	cursor    int
	message   string
	isError   bool
	width     int
	height    int
	quitting  bool
}

// New creates a model targeting one port.
func New(port int, r *reclaim.Reclaimer) Model {
	return Model{
		state:     stateLoading,
		port:      port,
		reclaimer: r,
	}
}

// Messages

type loadedMsg struct {
	rows []row
	err  error
}

type reclaimedMsg struct {
	res reclaim.Result
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(autoRefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func loadRows(port int) tea.Cmd {
	return func() tea.Msg {
		bindings, err := netstat.Lookup(netstat.Query{Port: port})
		if err != nil {
			return loadedMsg{err: err}
		}

		seen := make(map[int]bool)
		var rows []row
		for _, b := range bindings {
			if seen[b.PID] {
				continue
			}
			seen[b.PID] = true

			oc, err := owner.Detect(b.PID, b.Port)
			if err != nil {
				continue
			}
			rows = append(rows, row{binding: b, owner: oc})
		}

		return loadedMsg{rows: rows}
	}
}

func doReclaim(r *reclaim.Reclaimer, port int) tea.Cmd {
	return func() tea.Msg {
		return reclaimedMsg{res: r.Reclaim(port)}
	}
}

// Init starts the initial loading.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadRows(m.port), tickCmd())
}

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.state == stateList {
			return m, tea.Batch(loadRows(m.port), tickCmd())
		}
		return m, tickCmd()

	case loadedMsg:
		// Don't disrupt an active confirm dialog or a running reclaim
		if m.state == stateConfirm || m.state == stateWorking {
			return m, nil
		}
		if msg.err != nil {
			m.state = stateResult
			m.message = msg.err.Error()
			m.isError = true
			return m, nil
		}
		if len(msg.rows) == 0 {
			m.state = stateResult
			m.message = fmt.Sprintf("Port %d is free.", m.port)
			m.isError = false
			return m, nil
		}
		m.rows = msg.rows
		m.state = stateList
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		return m, nil

	case reclaimedMsg:
		m.state = stateResult
		res := msg.res
		switch {
		case res.Err != nil:
			m.message = fmt.Sprintf("Freed %d of %d on port %d — %v",
				len(res.KilledPIDs), len(m.rows), res.Port, res.Err)
			m.isError = true
		case len(res.KilledPIDs) == 0:
			m.message = fmt.Sprintf("Port %d was already free.", res.Port)
			m.isError = false
		default:
			m.message = fmt.Sprintf("Freed port %d (killed %s)", res.Port, joinPIDs(res.KilledPIDs))
			m.isError = false
		}
		if len(res.StillBound) > 0 {
			m.message += fmt.Sprintf(" — still bound by %s", joinPIDs(res.StillBound))
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateList:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j", "ctrl+n":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.state = stateConfirm
		case "r", "ctrl+r":
			m.state = stateLoading
			return m, loadRows(m.port)
		}

	case stateConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.state = stateWorking
			return m, doReclaim(m.reclaimer, m.port)
		case "n", "N", "esc":
			m.state = stateList
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateResult:
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.state = stateLoading
			m.cursor = 0
			return m, loadRows(m.port)
		}
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n  Scanning port %d...\n", m.port)
	case stateWorking:
		return fmt.Sprintf("\n  Freeing port %d...\n", m.port)
	case stateList:
		return m.viewList()
	case stateConfirm:
		return m.viewConfirm()
	case stateResult:
		return m.viewResult()
	}
	return ""
}

func (m Model) viewList() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Port %d", m.port)),
		m.buildTable(),
		m.buildDetailPanel(),
		helpStyle.Render("j/k navigate • enter free port • r refresh • q quit"),
		"",
	)
}

func (m Model) viewConfirm() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Port %d", m.port)),
		m.buildTable(),
		m.buildConfirmPrompt(),
		helpStyle.Render("y/enter confirm • n/esc cancel"),
		"",
	)
}

func (m Model) viewResult() string {
	var msg string
	if m.isError {
		msg = errorStyle.Render("  " + m.message)
	} else {
		msg = successStyle.Render("  " + m.message)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		msg,
		helpStyle.Render("  r rescan • enter/q quit"),
		"",
	)
}

func (m Model) buildTable() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	rows := make([][]string, len(m.rows))
	for i, r := range m.rows {
		rows[i] = m.buildRow(i, r, width)
	}

	t := table.New().
		Headers("", "PID", "PROTO", "COMMAND").
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderHeader(true).
		BorderColumn(false).
		BorderRow(false).
		Width(width).
		StyleFunc(m.tableStyleFunc)

	return t.Render()
}

func (m Model) tableStyleFunc(rowIdx, col int) lipgloss.Style {
	if rowIdx == table.HeaderRow {
		s := tableHeaderStyle
		if col == 0 {
			return s.Width(2)
		}
		return s
	}

	if rowIdx == m.cursor {
		s := tableSelectedStyle
		if col == 0 {
			return s.Width(2)
		}
		return s
	}

	s := tableCellStyle
	if col == 0 {
		return s.Width(2)
	}
	switch col {
	case 1: // PID
		return s.Foreground(colorYellow)
	case 2: // PROTO
		return s.Foreground(colorAccent)
	case 3: // COMMAND
		return s.Foreground(colorSubtle)
	}
	return s
}

func (m Model) buildRow(index int, r row, width int) []string {
	sel := " "
	if index == m.cursor {
		sel = ">"
	}

	cmd := r.owner.Proc.Command
	// Reserve space for selector(2) + pid(~8) + proto(~8) + borders(~10)
	maxCmd := width - 28
	if maxCmd < 20 {
		maxCmd = 20
	}
	if len(cmd) > maxCmd && maxCmd > 3 {
		cmd = cmd[:maxCmd-3] + "..."
	}

	return []string{sel, strconv.Itoa(r.binding.PID), r.binding.Protocol, cmd}
}

func (m Model) buildDetailPanel() string {
	if m.cursor >= len(m.rows) {
		return ""
	}
	r := m.rows[m.cursor]
	info := r.owner.Proc

	var lines []string

	if info.User != "" {
		lines = append(lines, detailLabelStyle.Render("User")+detailValueStyle.Render(info.User))
	}
	if info.MemoryKB > 0 {
		memStr := fmt.Sprintf("%d KB", info.MemoryKB)
		if info.MemoryKB > 1024 {
			memStr = fmt.Sprintf("%d MB", info.MemoryKB/1024)
		}
		lines = append(lines, detailLabelStyle.Render("Memory")+detailValueStyle.Render(memStr))
	}
	if uptime := info.Uptime(); uptime > 0 {
		lines = append(lines, detailLabelStyle.Render("Uptime")+detailValueStyle.Render(formatDuration(uptime)))
	}

	action := reclaim.Plan(r.owner, m.reclaimer.Force)
	lines = append(lines, detailLabelStyle.Render("Action")+actionStyle.Render(action.Describe()))

	var warnings []string
	if info.IsPrivileged() {
		warnings = append(warnings, "needs sudo")
	}
	if len(info.Children) > 0 {
		warnings = append(warnings, fmt.Sprintf("%d children affected", len(info.Children)))
	}
	if m.reclaimer.Force {
		warnings = append(warnings, "FORCE mode")
	}
	if len(warnings) > 0 {
		lines = append(lines, detailLabelStyle.Render("Warning")+warningStyle.Render(strings.Join(warnings, ", ")))
	}

	var tags []string
	if r.owner.Containerized() {
		c := r.owner.Container
		name := c.Name
		if name == "" {
			name = owner.ShortID(c.ID)
		}
		tags = append(tags, tagContainerStyle.Render(fmt.Sprintf("%s:%s", c.Runtime, name)))
	}
	if r.owner.SystemdManaged() {
		tags = append(tags, tagSystemdStyle.Render(r.owner.SystemdUnit))
	}
	if info.IsPrivileged() {
		tags = append(tags, tagSudoStyle.Render("sudo"))
	}
	if len(tags) > 0 {
		lines = append(lines, detailLabelStyle.Render("")+strings.Join(tags, " "))
	}

	content := strings.Join(lines, "\n")
	if m.width > 0 {
		// Account for border (2 chars) and padding (2 chars)
		return detailPanelStyle.Width(m.width - 4).Render(content)
	}
	return detailPanelStyle.Render(content)
}

func (m Model) buildConfirmPrompt() string {
	var lines []string
	lines = append(lines, confirmPromptStyle.Render(fmt.Sprintf("Free port %d? ", m.port))+
		fmt.Sprintf("%d process(es) will be terminated [y/n]", len(m.rows)))

	for _, r := range m.rows {
		action := reclaim.Plan(r.owner, m.reclaimer.Force)
		lines = append(lines, "  "+actionStyle.Render(action.Describe()))
	}

	var children int
	for _, r := range m.rows {
		children += len(r.owner.Proc.Children)
	}
	if children > 0 {
		lines = append(lines, warningStyle.Render(
			fmt.Sprintf("Warning: %d child processes will be affected", children)))
	}

	content := strings.Join(lines, "\n")
	if m.width > 0 {
		return confirmPanelStyle.Width(m.width - 4).Render(content)
	}
	return confirmPanelStyle.Render(content)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	if h >= 24 {
		return fmt.Sprintf("%dd", h/24)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	if mins := int(d.Minutes()); mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func joinPIDs(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = strconv.Itoa(pid)
	}
	return "PID " + strings.Join(parts, ", ")
}
