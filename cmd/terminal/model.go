package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/gitutil"
)

const asciiLogo = `
╔══════════════════════════════════════════════════════════════╗
║                                                              ║
║   ██╗  ██╗██╗   ██╗██████╗ ██████╗ ██╗██████╗                ║
║   ██║  ██║╚██╗ ██╔╝██╔══██╗██╔══██╗██║██╔══██╗               ║
║   ███████║ ╚████╔╝ ██████╔╝██████╔╝██║██║  ██║               ║
║   ██╔══██║  ╚██╔╝  ██╔══██╗██╔══██╗██║██║  ██║               ║
║   ██║  ██║   ██║   ██████╔╝██║  ██║██║██████╔╝  WARDEN       ║
║   ╚═╝  ╚═╝   ╚═╝   ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝                ║
║                                                              ║
║           RULES + MODEL VULNERABILITY TRIAGE                 ║
║                                                              ║
╚══════════════════════════════════════════════════════════════╝
`

type model struct {
	styles styles
	cli    *app.CLI

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool

	// Session State
	lastTarget  string
	lastOverall string
	history     []string
}

func initialModel(st styles) *model {
	ta := textarea.New()
	ta.Placeholder = "Enter a command, /help for the list..."
	ta.Focus()
	ta.Prompt = st.prompt.Render("► ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = st.ascii

	return &model{
		styles:    st,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		history:   []string{st.ascii.Render(asciiLogo), "", "⚙ LOADING RULES AND MODEL..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializeCLICmd(), m.spinner.Tick)
}

// print appends lines to the transcript and scrolls to them.
func (m *model) print(lines ...string) {
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case cliInitializedMsg:
		m.isLoading = false
		if msg.err != nil {
			fmt.Fprintf(os.Stderr, "ERROR initializing: %v\n", msg.err)
			m.print("", m.styles.error.Render(msg.err.Error()))
			return m, nil
		}
		m.cli = msg.cli
		m.print("", m.styles.success.Render("✓ SYSTEM ONLINE"), "", "Type /help for commands.")
		return m, nil

	case analyzeCompleteMsg:
		m.isLoading = false
		m.lastTarget = fmt.Sprintf("%d file(s)", len(msg.results))
		overall := core.OverallSeverity(msg.results)
		m.lastOverall = overall.String()

		lines := []string{""}
		for _, r := range msg.results {
			lines = append(lines, m.renderResult(r)...)
		}
		lines = append(lines, "", "OVERALL "+m.styles.severity(overall.String()).Render(overall.String()))
		m.print(lines...)
		return m, nil

	case scanCompleteMsg:
		m.isLoading = false
		if msg.err != nil {
			fmt.Fprintf(os.Stderr, "SCAN FAILED: %v\n", msg.err)
			m.print("", m.styles.error.Render("SCAN FAILED: "+msg.err.Error()))
			return m, nil
		}
		m.lastTarget = msg.repoPath
		m.lastOverall = msg.outcome.Report.OverallSeverity.String()

		lines := []string{"", m.styles.success.Render(fmt.Sprintf("✓ SCAN COMPLETE: %s (%s)", msg.repoPath, msg.diff))}
		for _, r := range msg.outcome.Report.Files {
			lines = append(lines, m.renderResult(r)...)
		}
		if msg.comment != "" {
			lines = append(lines, "", m.renderMarkdown(msg.comment))
		}
		m.print(lines...)
		return m, nil

	case historyLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.print("", m.styles.error.Render("Could not load history: "+msg.err.Error()))
			return m, nil
		}
		if len(msg.records) == 0 {
			m.print("", m.styles.inactive.Render("No analysis records for "+msg.repoFullName+"."))
			return m, nil
		}

		var b strings.Builder
		b.WriteString(m.styles.success.Render("HISTORY: " + msg.repoFullName))
		for _, r := range msg.records {
			fmt.Fprintf(&b, "\n  %s  #%-4d %-40s %s  ml=%.2f",
				r.Timestamp.Local().Format("2006-01-02 15:04"),
				r.RequestNumber,
				r.FilePath,
				m.styles.severity(r.Severity).Render(fmt.Sprintf("%-10s", r.Severity)),
				r.MLProbability,
			)
		}
		m.print("", b.String())
		return m, nil

	case errorMsg:
		m.isLoading = false
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", msg.err)
		m.print("", m.styles.error.Render("⚠ "+msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) renderResult(r core.FileAnalysisResult) []string {
	if !r.Analyzed {
		return []string{
			m.styles.inactive.Render("[N/A]    ") + " " + r.FilePath,
			"    " + m.styles.error.Render(r.Error),
		}
	}
	lines := []string{
		m.styles.severity(r.Severity.String()).Render(fmt.Sprintf("[%s]", r.Severity)) + " " + r.FilePath,
		"    " + m.styles.inactive.Render(r.Explanation),
	}
	for _, f := range r.Findings {
		lines = append(lines, fmt.Sprintf("    %s %s %s",
			m.styles.command.Render(fmt.Sprintf("L%d:%d", f.Line, f.Column)),
			f.RuleID,
			m.styles.inactive.Render(f.Snippet),
		))
	}
	return lines
}

func (m *model) renderMarkdown(md string) string {
	width := m.viewport.Width
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *model) View() string {
	if m.cli == nil && m.isLoading {
		return fmt.Sprintf("\n  %s BOOTING SYSTEM...\n\n", m.spinner.View())
	}

	var statusParts []string
	if m.cli != nil {
		cfg := m.cli.Config
		statusParts = append(statusParts, fmt.Sprintf("THRESHOLD: %.2f", m.cli.Engine.Threshold()))
		statusParts = append(statusParts, "EXT: "+strings.Join(cfg.Detector.Extensions, ","))
		if cfg.Database.Enabled() {
			statusParts = append(statusParts, m.styles.success.Render("● DB"))
		} else {
			statusParts = append(statusParts, m.styles.inactive.Render("○ NO DB"))
		}
	}
	if m.lastTarget != "" {
		statusParts = append(statusParts, fmt.Sprintf("LAST: %s %s", m.lastTarget, m.styles.severity(m.lastOverall).Render(m.lastOverall)))
	}

	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("PROCESSING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) processCommand(input string) tea.Cmd {
	m.print(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/help", "/h":
		helpText := m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /analyze [file...]               Run the detector on local files.
  /scan [path] [base] [head]       Review the diff between two commits (default HEAD~1 HEAD).
  /history [owner/repo] [pr]       Show stored analysis records.
  /help                            Show this help message.
  /exit, /quit                     Exit Hybrid Warden.`
		m.print("", helpText)
		return nil

	case "/exit", "/quit":
		return tea.Quit
	}

	if m.cli == nil {
		m.print("", m.styles.error.Render("Not initialized. Fix the configuration and restart."))
		return nil
	}
	if m.isLoading {
		m.print(m.styles.inactive.Render("Still working on the previous command..."))
		return nil
	}

	switch command {
	case "/analyze", "/a":
		if len(args) == 0 {
			m.print("", m.styles.error.Render("USAGE: /analyze [file...]"))
			return nil
		}
		m.isLoading = true
		m.print("", m.styles.command.Render(fmt.Sprintf("→ Analyzing %d file(s)...", len(args))))
		return tea.Batch(m.spinner.Tick, analyzeFilesCmd(m.cli, args))

	case "/scan", "/s":
		if len(args) == 0 || len(args) > 3 {
			m.print("", m.styles.error.Render("USAGE: /scan [path] [base] [head]"))
			return nil
		}
		base, head := "HEAD~1", "HEAD"
		if len(args) > 1 {
			base = args[1]
		}
		if len(args) > 2 {
			head = args[2]
		}
		m.isLoading = true
		m.print("", m.styles.command.Render(fmt.Sprintf("→ Scanning %s (%s..%s)...", args[0], base, head)))
		return tea.Batch(m.spinner.Tick, scanRepoCmd(m.cli, args[0], base, head))

	case "/history":
		if len(args) == 0 || len(args) > 2 {
			m.print("", m.styles.error.Render("USAGE: /history [owner/repo] [pr]"))
			return nil
		}
		owner, repo, err := gitutil.ParseRepoFullName(args[0])
		if err != nil {
			m.print("", m.styles.error.Render(err.Error()))
			return nil
		}
		prNumber := 0
		if len(args) == 2 {
			if prNumber, err = strconv.Atoi(args[1]); err != nil || prNumber <= 0 {
				m.print("", m.styles.error.Render("Invalid PR number: "+args[1]))
				return nil
			}
		}
		m.isLoading = true
		return tea.Batch(m.spinner.Tick, loadHistoryCmd(m.cli, owner+"/"+repo, prNumber))

	default:
		m.print("", m.styles.error.Render(fmt.Sprintf("UNKNOWN COMMAND: %s", command)), m.styles.inactive.Render("Type /help for assistance."))
		return nil
	}
}
