package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/diillson/aws-cost-optimizer-go/internal/application/usecase"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/pterm/pterm"
)

const (
	fieldAccessKey = iota
	fieldSecretKey
	fieldRegion
	fieldCount
)

// Options configures the interactive client.
type Options struct {
	Profile    string
	Region     string
	ReportName string
	Dir        string
	Logger     *pterm.Logger
}

// Model is the bubbletea model of the interactive client. All session
// mutation happens in Update; remote calls run as commands and come back
// as *DoneMsg values carrying their ticket.
type Model struct {
	uc      *usecase.OptimizerUseCase
	session *workflow.Session
	opts    Options
	logger  *pterm.Logger

	inputs    []textinput.Model
	focus     int
	regionIdx int

	modeCursor int
	cursor     int
	confirm    textinput.Model
	spinner    spinner.Model

	notice string
	status string
	width  int
}

// New creates the model around the use case's session.
func New(uc *usecase.OptimizerUseCase, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}

	access := textinput.New()
	access.Placeholder = "AKIA..."
	access.CharLimit = 128
	access.Focus()

	secret := textinput.New()
	secret.Placeholder = "secret access key"
	secret.CharLimit = 128
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'

	confirm := textinput.New()
	confirm.CharLimit = 128
	confirm.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	m := Model{
		uc:      uc,
		session: uc.Session(),
		opts:    opts,
		logger:  logger,
		inputs:  []textinput.Model{access, secret},
		confirm: confirm,
		spinner: sp,
	}
	m.regionIdx = regionIndex(m.session.Region())
	if opts.Region != "" {
		m.regionIdx = regionIndex(opts.Region)
	}
	return m
}

// Run starts the interactive client on the alternate screen.
func Run(uc *usecase.OptimizerUseCase, opts Options) error {
	_, err := tea.NewProgram(New(uc, opts), tea.WithAltScreen()).Run()
	return err
}

func regionIndex(region string) int {
	for i, r := range types.SupportedRegions {
		if r == region {
			return i
		}
	}
	return 0
}

func (m Model) region() string {
	return types.SupportedRegions[m.regionIdx]
}

// Init restores saved credentials and loads the catalog.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, textinput.Blink}
	if t, err := m.session.Begin(workflow.CallCheck); err == nil {
		cmds = append(cmds, m.checkCmd(t))
	}
	if len(m.session.Techniques()) == 0 {
		if t, err := m.session.Begin(workflow.CallTechniques); err == nil {
			cmds = append(cmds, m.techniquesCmd(t))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case checkDoneMsg:
		// A failed check only means there are no saved credentials.
		if err := m.session.CompleteCheck(msg.ticket, msg.status, msg.err); err != nil {
			m.debug("credential check ignored", "error", err)
		} else if c := m.session.Credentials(); c != nil {
			m.status = fmt.Sprintf("Restored saved credentials for %s", userLabel(c))
		}
		return m, nil

	case validateDoneMsg:
		if err := m.session.CompleteValidate(msg.ticket, msg.input, msg.creds, msg.err); err != nil {
			m.debug("validate", "error", err)
			return m, nil
		}
		m.inputs[fieldSecretKey].SetValue("")
		m.modeCursor = 0
		m.status = fmt.Sprintf("Logged in as %s", userLabel(m.session.Credentials()))
		return m, nil

	case techniquesDoneMsg:
		if err := m.session.CompleteTechniques(msg.ticket, msg.techniques, msg.err); err != nil {
			m.debug("techniques", "error", err)
		}
		return m, nil

	case analyzeDoneMsg:
		if err := m.session.CompleteAnalyze(msg.ticket, msg.result, msg.err); err != nil {
			m.debug("analyze", "error", err)
			return m, nil
		}
		m.cursor = 0
		return m, nil

	case optimizeDoneMsg:
		if err := m.session.CompleteOptimize(msg.ticket, msg.result, msg.err); err != nil {
			m.debug("optimize", "error", err)
			return m, nil
		}
		if r := msg.result; r != nil {
			m.status = fmt.Sprintf("%s finished: %d succeeded, %d failed", runLabel(r.DryRun), r.Summary.Success, r.Summary.Failed)
		}
		return m, nil

	case clearDoneMsg:
		if err := m.session.CompleteClear(msg.ticket, msg.err); err != nil {
			m.debug("clear", "error", err)
			return m, nil
		}
		return m.resetForm(), nil

	case profileLoadedMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.inputs[fieldAccessKey].SetValue(msg.input.AccessKey)
		m.inputs[fieldSecretKey].SetValue(msg.input.SecretKey)
		if msg.input.Region != "" {
			m.regionIdx = regionIndex(msg.input.Region)
		}
		m.status = "Keys loaded from AWS profile " + m.profile()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.status = "Saved " + strings.Join(msg.paths, ", ")
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.notice = ""
		switch m.session.State().(type) {
		case workflow.Idle:
			return m.updateForm(msg)
		case workflow.ChoosingMode:
			return m.updateModeChoice(msg)
		case workflow.Browsing:
			if m.session.Analysis() != nil {
				return m.updateFindings(msg)
			}
			return m.updateCatalog(msg)
		case workflow.Confirming:
			return m.updateConfirm(msg)
		case workflow.Executing:
			return m, nil
		}
	}
	return m, nil
}

// --- Credential form ---

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil
	case "ctrl+p":
		if m.session.Busy(workflow.CallValidate) {
			return m, nil
		}
		m.status = "Loading AWS profile " + m.profile() + "..."
		return m, m.profileCmd(m.profile())
	case "enter":
		return m.submitCredentials()
	}

	if m.focus == fieldRegion {
		switch msg.String() {
		case "left", "h":
			m.regionIdx = (m.regionIdx + len(types.SupportedRegions) - 1) % len(types.SupportedRegions)
		case "right", "l", " ", "space":
			m.regionIdx = (m.regionIdx + 1) % len(types.SupportedRegions)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) setFocus(field int) Model {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m Model) submitCredentials() (tea.Model, tea.Cmd) {
	input := entity.CredentialInput{
		AccessKey: strings.TrimSpace(m.inputs[fieldAccessKey].Value()),
		SecretKey: strings.TrimSpace(m.inputs[fieldSecretKey].Value()),
		Region:    m.region(),
	}
	t, err := m.session.BeginValidate(input)
	if err != nil {
		// Local failures are already in session.ValidationError.
		m.debug("validate not started", "error", err)
		return m, nil
	}
	m.status = ""
	return m, m.validateCmd(t, input)
}

func (m Model) resetForm() Model {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.cursor = 0
	m.status = "Logged out"
	return m.setFocus(fieldAccessKey)
}

func (m Model) profile() string {
	if m.opts.Profile != "" {
		return m.opts.Profile
	}
	return "default"
}

// --- Mode choice ---

func (m Model) updateModeChoice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "down", "k", "j", "tab":
		m.modeCursor = 1 - m.modeCursor
	case "d":
		return m.chooseMode(workflow.ModeDryRun)
	case "l":
		return m.chooseMode(workflow.ModeLive)
	case "enter":
		if m.modeCursor == 1 {
			return m.chooseMode(workflow.ModeLive)
		}
		return m.chooseMode(workflow.ModeDryRun)
	}
	return m, nil
}

func (m Model) chooseMode(mode workflow.Mode) (tea.Model, tea.Cmd) {
	if err := m.session.ChooseMode(mode); err != nil {
		m.notice = err.Error()
	}
	m.cursor = 0
	return m, nil
}

// --- Catalog ---

func (m Model) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if _, analyzing := m.session.Analyzing(); analyzing {
		switch msg.String() {
		case "esc", "backspace":
			m.session.Back()
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	techniques := m.session.Techniques()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(techniques)-1 {
			m.cursor++
		}
	case "enter":
		if len(techniques) == 0 {
			return m, nil
		}
		call, err := m.session.BeginAnalyze(techniques[m.cursor])
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.analyzeCmd(call)
	case "r":
		if len(techniques) > 0 {
			return m, nil
		}
		if t, err := m.session.Begin(workflow.CallTechniques); err == nil {
			return m, m.techniquesCmd(t)
		}
	case "m":
		return m.toggleMode(), nil
	case "x":
		m.session.DismissBanner()
	case "L":
		return m.logout()
	}
	return m, nil
}

func (m Model) toggleMode() Model {
	next := workflow.ModeLive
	if m.session.Mode() == workflow.ModeLive {
		next = workflow.ModeDryRun
	}
	if err := m.session.SetMode(next); err != nil {
		m.notice = err.Error()
	}
	return m
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	t, err := m.session.Begin(workflow.CallClear)
	if err != nil {
		return m, nil
	}
	return m, m.clearCmd(t)
}

// --- Findings ---

func (m Model) updateFindings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	findings := m.session.Analysis().Findings
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "b":
		m.session.Back()
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(findings)-1 {
			m.cursor++
		}
	case " ", "space":
		if len(findings) > 0 {
			if err := m.session.Toggle(findings[m.cursor].ResourceID); err != nil {
				m.notice = err.Error()
			}
		}
	case "a":
		if err := m.session.SelectAll(); err != nil {
			m.notice = err.Error()
		}
	case "o", "enter":
		if err := m.session.RequestConfirmation(); err != nil {
			m.notice = noticeText(err)
			return m, nil
		}
		m.confirm.SetValue("")
		m.confirm.Placeholder = m.session.Analysis().Technique.Name
		return m, m.confirm.Focus()
	case "J":
		return m.export("json")
	case "C":
		return m.export("csv")
	case "P":
		return m.export("pdf")
	case "m":
		return m.toggleMode(), nil
	case "x":
		m.session.DismissBanner()
	}
	return m, nil
}

func (m Model) export(kind string) (tea.Model, tea.Cmd) {
	report, err := m.session.Report(time.Now())
	if err != nil {
		m.notice = noticeText(err)
		return m, nil
	}
	return m, m.exportCmd(report, kind)
}

// --- Confirmation ---

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	live := m.session.Mode() == workflow.ModeLive
	switch msg.String() {
	case "esc":
		return m.cancelConfirm()
	case "enter":
		if live {
			_ = m.session.SetConfirmationInput(m.confirm.Value())
		}
		call, err := m.session.Confirm()
		if err != nil {
			// A mismatch stays in Confirming and is shown in the modal.
			m.debug("confirm", "error", err)
			return m, nil
		}
		m.confirm.SetValue("")
		m.confirm.Blur()
		m.status = ""
		return m, m.optimizeCmd(call)
	}

	if !live {
		switch msg.String() {
		case "y":
			return m.updateConfirm(tea.KeyMsg{Type: tea.KeyEnter})
		case "n":
			return m.cancelConfirm()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	_ = m.session.SetConfirmationInput(m.confirm.Value())
	return m, cmd
}

func (m Model) cancelConfirm() (tea.Model, tea.Cmd) {
	_ = m.session.Cancel()
	m.confirm.SetValue("")
	m.confirm.Blur()
	return m, nil
}

// --- helpers ---

func (m Model) debug(msg string, args ...any) {
	m.logger.Debug(msg, m.logger.Args(args...))
}

func noticeText(err error) string {
	switch {
	case errors.Is(err, workflow.ErrEmptySelection):
		return "Please select resources to optimize"
	case errors.Is(err, workflow.ErrNoFindings):
		return "No findings to act on"
	}
	return err.Error()
}

func userLabel(c *entity.Credentials) string {
	if c == nil || c.User == "" {
		return "unknown user"
	}
	return c.User
}

func runLabel(dryRun bool) string {
	if dryRun {
		return "Dry run"
	}
	return "Optimization"
}
