package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/heist-engine/internal/handlers"
	"github.com/jwebster45206/heist-engine/internal/storage"
	"github.com/jwebster45206/heist-engine/pkg/heist"
)

const PlaceHolderText = "Type a command, or /help..."

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	save         *storage.SaveGame
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool
	logLines     []string

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type runReportMsg struct {
	report *heist.Report
	err    error
}

type marketResultMsg struct {
	result *handlers.MarketResponse
	err    error
}

type heistsLoadedMsg struct {
	summaries []handlers.HeistSummary
	err       error
}

type saveRefreshedMsg struct {
	save *storage.SaveGame
	err  error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, sg *storage.SaveGame) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		save:         sg,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
		logLines: []string{
			"Campaign " + sg.ID.String()[:8] + " loaded.",
			"Use /heists to see available jobs, /run to send the crew out.",
		},
	}
}

func writeMetadata(sg *storage.SaveGame) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CAMPAIGN") + "\n\n")

	content.WriteString("Save ID:\n")
	content.WriteString(sg.ID.String()[:8] + "...\n\n")

	w := sg.World
	content.WriteString(fmt.Sprintf("Treasury: %d\n", w.Treasury))
	content.WriteString(fmt.Sprintf("Notoriety: %d\n", w.Notoriety))
	content.WriteString(fmt.Sprintf("Fear/Respect: %d/%d\n", w.Reputation.Fear, w.Reputation.Respect))
	content.WriteString(fmt.Sprintf("Heists done: %d\n\n", w.HeistsCompleted))

	content.WriteString("Crew:\n")
	for _, spec := range sg.Crew {
		status := spec.Status
		if status == "" {
			status = "active"
		}
		content.WriteString(fmt.Sprintf("• %s L%d %s (%s)\n",
			titleCaser.String(spec.Name), spec.Level, titleCaser.String(spec.Role), status))
	}
	content.WriteString("\n")

	if len(w.Factions) > 0 {
		content.WriteString("Factions:\n")
		for _, id := range w.FactionIDs() {
			f := w.Factions[id]
			content.WriteString(fmt.Sprintf("• %s: %d\n", f.Name, f.Standing))
		}
		content.WriteString("\n")
	}

	if len(w.Loot) > 0 {
		content.WriteString("Stash:\n")
		for _, item := range w.Loot {
			content.WriteString(fmt.Sprintf("• %s (%d)\n", item.Item, item.Value))
		}
		content.WriteString("\n")
	}

	if len(w.ToolInventory) > 0 {
		content.WriteString("Tools:\n")
		for id, count := range w.ToolInventory {
			content.WriteString(fmt.Sprintf("• %s x%d\n", id, count))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeLogContent rebuilds the log viewport for the current width.
func (m *ConsoleUI) writeLogContent() {
	logWidth := m.logViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("HEIST ENGINE") + "\n\n")
	content.WriteString("Plan jobs, send the crew out, fence the take.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(logWidth-6, 10))) + "\n\n")

	for _, line := range m.logLines {
		content.WriteString(wordwrap.String(line, max(logWidth-2, 20)) + "\n")
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) appendLog(lines ...string) {
	m.logLines = append(m.logLines, lines...)
	m.writeLogContent()
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(logWidth - 4)

		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(writeMetadata(m.save))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleCommand(input)
		}

	case runReportMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(failureStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLog("")
		m.appendLog(titleStyle.Render(msg.report.HeistName))
		for _, line := range msg.report.Lines {
			m.appendLog(line)
		}
		if msg.report.Success {
			m.appendLog(successStyle.Render("The job is done."))
		} else {
			m.appendLog(failureStyle.Render("The job went sideways."))
		}
		return m, m.refreshSave()

	case marketResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(failureStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		switch msg.result.Action {
		case "fence":
			m.appendLog(successStyle.Render(fmt.Sprintf("Fenced for %d coin. Treasury: %d.", msg.result.Proceeds, msg.result.Treasury)))
		case "bribe":
			m.appendLog(successStyle.Render(fmt.Sprintf("%s walks free. Treasury: %d.", titleCaser.String(msg.result.Freed), msg.result.Treasury)))
		default:
			m.appendLog(successStyle.Render(fmt.Sprintf("Done. Treasury: %d.", msg.result.Treasury)))
		}
		return m, m.refreshSave()

	case heistsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(failureStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.appendLog("", titleStyle.Render("Available Heists"))
		for _, s := range msg.summaries {
			locked := ""
			if !m.save.World.IsUnlocked(s.ID) {
				locked = promptStyle.Render("  [locked]")
			}
			m.appendLog(fmt.Sprintf("• %s - %s (%d events)%s", s.ID, s.Name, s.Events, locked))
		}

	case saveRefreshedMsg:
		if msg.err == nil && msg.save != nil {
			m.save = msg.save
			m.metaViewport.SetContent(writeMetadata(m.save))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		m.appendLog("",
			titleStyle.Render("Commands"),
			"• /heists - list heists",
			"• /run <heist_id> <op1,op2,...> [op=tool ...] - send the crew out",
			"• /fence <faction_id> - sell the whole stash",
			"• /heal <operative_id> - patch up an injured operative",
			"• /buy <tool_id> - buy a tool",
			"• /bribe - free an arrested operative",
			"• Ctrl+C - quit")
		return m, nil

	case "/heists":
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.loadHeists(), progressTick())

	case "/run":
		if len(args) < 2 {
			m.appendLog(infoStyle.Render("Usage: /run <heist_id> <op1,op2,...> [op=tool ...]"))
			return m, nil
		}
		heistID := args[0]
		participants := strings.Split(args[1], ",")
		tools := make(map[string]string)
		for _, assignment := range args[2:] {
			parts := strings.SplitN(assignment, "=", 2)
			if len(parts) == 2 {
				tools[parts[0]] = parts[1]
			}
		}
		m.loading = true
		m.progressTick = 0
		m.appendLog("", infoStyle.Render(fmt.Sprintf("Sending %s after %s...", args[1], heistID)))
		return m, tea.Batch(m.launchRun(heistID, participants, tools), progressTick())

	case "/fence":
		if len(args) != 1 {
			m.appendLog(infoStyle.Render("Usage: /fence <faction_id>"))
			return m, nil
		}
		return m.launchMarket("fence", handlers.MarketRequest{SaveID: m.save.ID, FactionID: args[0]})

	case "/heal":
		if len(args) != 1 {
			m.appendLog(infoStyle.Render("Usage: /heal <operative_id>"))
			return m, nil
		}
		return m.launchMarket("heal", handlers.MarketRequest{SaveID: m.save.ID, OperativeID: args[0]})

	case "/buy":
		if len(args) != 1 {
			m.appendLog(infoStyle.Render("Usage: /buy <tool_id>"))
			return m, nil
		}
		return m.launchMarket("buy", handlers.MarketRequest{SaveID: m.save.ID, ToolID: args[0]})

	case "/bribe":
		return m.launchMarket("bribe", handlers.MarketRequest{SaveID: m.save.ID})

	default:
		m.appendLog(infoStyle.Render("Unknown command. Try /help."))
		return m, nil
	}
}

func (m ConsoleUI) launchMarket(action string, req handlers.MarketRequest) (tea.Model, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.writeLogContent()
	return m, tea.Batch(func() tea.Msg {
		result, err := marketAction(m.client, m.config.APIBaseURL, action, req)
		return marketResultMsg{result, err}
	}, progressTick())
}

func (m ConsoleUI) launchRun(heistID string, participants []string, tools map[string]string) tea.Cmd {
	return func() tea.Msg {
		report, err := runHeist(m.client, m.config.APIBaseURL, handlers.RunRequest{
			SaveID:          m.save.ID,
			HeistID:         heistID,
			Participants:    participants,
			ToolAssignments: tools,
		})
		return runReportMsg{report, err}
	}
}

func (m ConsoleUI) loadHeists() tea.Cmd {
	return func() tea.Msg {
		summaries, err := listHeists(m.client, m.config.APIBaseURL)
		return heistsLoadedMsg{summaries, err}
	}
}

func (m ConsoleUI) refreshSave() tea.Cmd {
	return func() tea.Msg {
		sg, err := getSave(m.client, m.config.APIBaseURL, m.save.ID)
		return saveRefreshedMsg{sg, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Table?"))
	content.WriteString("\n\n")
	content.WriteString("The campaign is saved on the server.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 10))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar animates a bar while a request is in flight.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return loadingStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
