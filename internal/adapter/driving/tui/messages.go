package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
)

// Results of remote calls. Each carries the ticket its call was started
// with; the session decides whether the result still applies.

type checkDoneMsg struct {
	ticket workflow.Ticket
	status *entity.CredentialStatus
	err    error
}

type validateDoneMsg struct {
	ticket workflow.Ticket
	input  entity.CredentialInput
	creds  *entity.Credentials
	err    error
}

type techniquesDoneMsg struct {
	ticket     workflow.Ticket
	techniques []entity.Technique
	err        error
}

type analyzeDoneMsg struct {
	ticket workflow.Ticket
	result *entity.AnalysisResult
	err    error
}

type optimizeDoneMsg struct {
	ticket workflow.Ticket
	result *entity.OptimizationResult
	err    error
}

type clearDoneMsg struct {
	ticket workflow.Ticket
	err    error
}

type profileLoadedMsg struct {
	input entity.CredentialInput
	err   error
}

type exportDoneMsg struct {
	paths []string
	err   error
}

func (m Model) checkCmd(t workflow.Ticket) tea.Cmd {
	return func() tea.Msg {
		status, err := m.uc.Remote().CheckCredentials(context.Background())
		return checkDoneMsg{ticket: t, status: status, err: err}
	}
}

func (m Model) validateCmd(t workflow.Ticket, input entity.CredentialInput) tea.Cmd {
	return func() tea.Msg {
		creds, err := m.uc.Remote().ValidateCredentials(context.Background(), input)
		return validateDoneMsg{ticket: t, input: input, creds: creds, err: err}
	}
}

func (m Model) techniquesCmd(t workflow.Ticket) tea.Cmd {
	return func() tea.Msg {
		techniques, err := m.uc.Remote().ListTechniques(context.Background())
		return techniquesDoneMsg{ticket: t, techniques: techniques, err: err}
	}
}

func (m Model) analyzeCmd(call workflow.AnalyzeCall) tea.Cmd {
	return func() tea.Msg {
		result, err := m.uc.Remote().Analyze(context.Background(), call.Technique.ID, call.Region)
		return analyzeDoneMsg{ticket: call.Ticket, result: result, err: err}
	}
}

func (m Model) optimizeCmd(call workflow.OptimizeCall) tea.Cmd {
	return func() tea.Msg {
		result, err := m.uc.Remote().Optimize(context.Background(), call.TechniqueID, call.Request)
		return optimizeDoneMsg{ticket: call.Ticket, result: result, err: err}
	}
}

func (m Model) clearCmd(t workflow.Ticket) tea.Cmd {
	return func() tea.Msg {
		return clearDoneMsg{ticket: t, err: m.uc.Remote().ClearCredentials(context.Background())}
	}
}

func (m Model) profileCmd(profile string) tea.Cmd {
	return func() tea.Msg {
		input, err := m.uc.Profiles().LoadCredentials(context.Background(), profile)
		return profileLoadedMsg{input: input, err: err}
	}
}

func (m Model) exportCmd(report entity.FindingsReport, kind string) tea.Cmd {
	return func() tea.Msg {
		paths, err := m.uc.ExportReport(report, []string{kind}, m.opts.ReportName, m.opts.Dir)
		return exportDoneMsg{paths: paths, err: err}
	}
}
