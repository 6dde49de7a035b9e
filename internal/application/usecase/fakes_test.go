package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
)

// fakeOptimizer is an in-memory API. Calls counts every request by name.
type fakeOptimizer struct {
	saved      *entity.CredentialStatus
	techniques []entity.Technique
	findings   map[string][]entity.Finding

	validateErr error
	analyzeErr  error
	optimizeErr error
	healthErr   error

	lastOptimize entity.OptimizeRequest
	calls        map[string]int
}

func newFakeOptimizer() *fakeOptimizer {
	return &fakeOptimizer{
		techniques: []entity.Technique{
			{ID: "ebs", Name: "Unused EBS Volumes", Icon: "💾"},
			{ID: "elastic-ip", Name: "Unassociated Elastic IPs", Icon: "🌐"},
		},
		findings: map[string][]entity.Finding{
			"elastic-ip": {
				{ResourceID: "eipalloc-1", ResourceType: "Elastic IP", Details: json.RawMessage(`{"public_ip":"1.2.3.4"}`), EstimatedSavings: 3.6},
				{ResourceID: "eipalloc-2", ResourceType: "Elastic IP", Details: json.RawMessage(`{"public_ip":"5.6.7.8"}`), EstimatedSavings: 3.65},
			},
		},
		calls: map[string]int{},
	}
}

func (f *fakeOptimizer) CheckCredentials(ctx context.Context) (*entity.CredentialStatus, error) {
	f.calls["check"]++
	if f.saved == nil {
		return &entity.CredentialStatus{Valid: false}, nil
	}
	return f.saved, nil
}

func (f *fakeOptimizer) ValidateCredentials(ctx context.Context, input entity.CredentialInput) (*entity.Credentials, error) {
	f.calls["validate"]++
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	f.saved = &entity.CredentialStatus{Valid: true, User: "alice", AccountID: "123456789012"}
	return &entity.Credentials{Valid: true, User: "alice", AccountID: "123456789012", Region: input.Region}, nil
}

func (f *fakeOptimizer) ClearCredentials(ctx context.Context) error {
	f.calls["clear"]++
	f.saved = nil
	return nil
}

func (f *fakeOptimizer) ListTechniques(ctx context.Context) ([]entity.Technique, error) {
	f.calls["techniques"]++
	return f.techniques, nil
}

func (f *fakeOptimizer) Analyze(ctx context.Context, techniqueID, region string) (*entity.AnalysisResult, error) {
	f.calls["analyze"]++
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	findings := f.findings[techniqueID]
	total := 0.0
	for _, fd := range findings {
		total += fd.EstimatedSavings
	}
	return &entity.AnalysisResult{
		Technique:           entity.Technique{ID: techniqueID},
		Count:               len(findings),
		TotalMonthlySavings: total,
		Findings:            findings,
	}, nil
}

func (f *fakeOptimizer) Optimize(ctx context.Context, techniqueID string, req entity.OptimizeRequest) (*entity.OptimizationResult, error) {
	f.calls["optimize"]++
	f.lastOptimize = req
	if f.optimizeErr != nil {
		return nil, f.optimizeErr
	}
	result := &entity.OptimizationResult{Technique: techniqueID, DryRun: req.DryRun}
	for _, id := range req.ResourceIDs {
		result.Results = append(result.Results, entity.ResourceOutcome{ResourceID: id, Status: entity.StatusSuccess, Message: "released"})
	}
	result.Summary = entity.OptimizationSummary{Total: len(req.ResourceIDs), Success: len(req.ResourceIDs)}
	return result, nil
}

func (f *fakeOptimizer) Health(ctx context.Context) error {
	f.calls["health"]++
	return f.healthErr
}

// fakeExport records the reports it was asked to write.
type fakeExport struct {
	written []string
}

func (e *fakeExport) record(kind string, report entity.FindingsReport, filename, dir string) (string, error) {
	name := filename
	if name == "" {
		name = "cost-optimizer-" + report.TechniqueID
	}
	path := fmt.Sprintf("%s/%s.%s", dir, name, kind)
	e.written = append(e.written, path)
	return path, nil
}

func (e *fakeExport) ExportFindingsToJSON(report entity.FindingsReport, filename, dir string) (string, error) {
	return e.record("json", report, filename, dir)
}

func (e *fakeExport) ExportFindingsToCSV(report entity.FindingsReport, filename, dir string) (string, error) {
	return e.record("csv", report, filename, dir)
}

func (e *fakeExport) ExportFindingsToPDF(report entity.FindingsReport, filename, dir string) (string, error) {
	return e.record("pdf", report, filename, dir)
}

type fakeProfiles struct {
	creds map[string]entity.CredentialInput
}

func (p *fakeProfiles) GetAWSProfiles() []string {
	var names []string
	for n := range p.creds {
		names = append(names, n)
	}
	return names
}

func (p *fakeProfiles) LoadCredentials(ctx context.Context, profile string) (entity.CredentialInput, error) {
	c, ok := p.creds[profile]
	if !ok {
		return entity.CredentialInput{}, types.ErrProfileNotFound
	}
	return c, nil
}

// recordingConsole keeps every message instead of printing it.
type recordingConsole struct {
	lines []string
	bars  [][]types.SavingsGroup
}

func (c *recordingConsole) add(level, format string, a ...interface{}) {
	c.lines = append(c.lines, level+": "+fmt.Sprintf(format, a...))
}

func (c *recordingConsole) Print(a ...interface{}) {
	c.lines = append(c.lines, fmt.Sprint(a...))
}

func (c *recordingConsole) Printf(format string, a ...interface{}) {
	c.add("print", format, a...)
}

func (c *recordingConsole) Println(a ...interface{}) {
	c.lines = append(c.lines, fmt.Sprint(a...))
}

func (c *recordingConsole) LogInfo(format string, a ...interface{}) {
	c.add("info", format, a...)
}

func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.add("warning", format, a...)
}

func (c *recordingConsole) LogError(format string, a ...interface{}) {
	c.add("error", format, a...)
}

func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.add("success", format, a...)
}

func (c *recordingConsole) Status(message string) types.StatusHandle {
	return nopStatus{}
}

func (c *recordingConsole) CreateTable() types.TableInterface {
	return &textTable{}
}

func (c *recordingConsole) DisplaySavingsBars(groups []types.SavingsGroup) {
	c.bars = append(c.bars, groups)
}

func (c *recordingConsole) output() string { return strings.Join(c.lines, "\n") }

type nopStatus struct{}

func (nopStatus) Update(string) {}

func (nopStatus) Stop() {}

type textTable struct {
	rows []string
}

func (t *textTable) AddColumn(name string, options ...interface{}) {
	t.rows = append(t.rows, name)
}

func (t *textTable) AddRow(cells ...interface{}) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, strings.Join(parts, " | "))
}

func (t *textTable) Render() string { return strings.Join(t.rows, "\n") }
