package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/dustin/go-humanize"
)

// OptimizerUseCase drives the optimizer workflow for one-shot commands. It
// owns the session; every step goes through the same state machine the
// interactive client uses.
type OptimizerUseCase struct {
	optimizerRepo repository.OptimizerRepository
	exportRepo    repository.ExportRepository
	profileRepo   repository.ProfileRepository
	console       types.ConsoleInterface
	session       *workflow.Session
	now           func() time.Time
}

// NewOptimizerUseCase creates a new optimizer use case.
func NewOptimizerUseCase(
	optimizerRepo repository.OptimizerRepository,
	exportRepo repository.ExportRepository,
	profileRepo repository.ProfileRepository,
	console types.ConsoleInterface,
	session *workflow.Session,
) *OptimizerUseCase {
	if session == nil {
		session = workflow.NewSession()
	}
	return &OptimizerUseCase{
		optimizerRepo: optimizerRepo,
		exportRepo:    exportRepo,
		profileRepo:   profileRepo,
		console:       console,
		session:       session,
		now:           time.Now,
	}
}

// Session returns the workflow session.
func (uc *OptimizerUseCase) Session() *workflow.Session { return uc.session }

// Remote returns the API repository, for callers running calls themselves.
func (uc *OptimizerUseCase) Remote() repository.OptimizerRepository { return uc.optimizerRepo }

// Profiles returns the local AWS profile source.
func (uc *OptimizerUseCase) Profiles() repository.ProfileRepository { return uc.profileRepo }

// --- Credentials ---

// EnsureLoggedIn restores credentials saved on the API side.
func (uc *OptimizerUseCase) EnsureLoggedIn(ctx context.Context) error {
	if uc.session.LoggedIn() {
		return nil
	}
	t, err := uc.session.Begin(workflow.CallCheck)
	if err != nil {
		return err
	}
	status, callErr := uc.optimizerRepo.CheckCredentials(ctx)
	if err := uc.session.CompleteCheck(t, status, callErr); err != nil {
		return err
	}
	if !uc.session.LoggedIn() {
		return workflow.ErrNotLoggedIn
	}
	return nil
}

// ResolveCredentials completes the form input: keys come from the AWS
// profile when not typed, the region falls back to the profile's, then to
// the session default.
func (uc *OptimizerUseCase) ResolveCredentials(ctx context.Context, input entity.CredentialInput, profile string) (entity.CredentialInput, error) {
	if input.AccessKey == "" && input.SecretKey == "" && profile != "" {
		fromProfile, err := uc.profileRepo.LoadCredentials(ctx, profile)
		if err != nil {
			return input, err
		}
		if input.Region == "" {
			input.Region = fromProfile.Region
		}
		input.AccessKey = fromProfile.AccessKey
		input.SecretKey = fromProfile.SecretKey
	}
	if input.Region == "" {
		input.Region = uc.session.Region()
	}
	if strings.TrimSpace(input.AccessKey) == "" || strings.TrimSpace(input.SecretKey) == "" {
		return input, types.ErrMissingKeys
	}
	return input, nil
}

// Login validates credentials with the API, which stores them.
func (uc *OptimizerUseCase) Login(ctx context.Context, input entity.CredentialInput, profile string) (*entity.Credentials, error) {
	input, err := uc.ResolveCredentials(ctx, input, profile)
	if err != nil {
		return nil, err
	}

	t, err := uc.session.BeginValidate(input)
	if err != nil {
		return nil, err
	}
	creds, callErr := uc.optimizerRepo.ValidateCredentials(ctx, input)
	if err := uc.session.CompleteValidate(t, input, creds, callErr); err != nil {
		return nil, err
	}

	c := uc.session.Credentials()
	uc.console.LogSuccess("Credentials validated for %s (account %s, region %s)", displayUser(c), c.AccountID, c.Region)
	return c, nil
}

// Logout makes the API forget the credentials and resets the session.
func (uc *OptimizerUseCase) Logout(ctx context.Context) error {
	t, err := uc.session.Begin(workflow.CallClear)
	if err != nil {
		return err
	}
	if err := uc.session.CompleteClear(t, uc.optimizerRepo.ClearCredentials(ctx)); err != nil {
		return err
	}
	uc.console.LogSuccess("Credentials cleared")
	return nil
}

// Status reports API health and the saved credentials.
func (uc *OptimizerUseCase) Status(ctx context.Context) error {
	if err := uc.optimizerRepo.Health(ctx); err != nil {
		uc.console.LogError("API: %v", err)
		return err
	}
	uc.console.LogSuccess("API is reachable")

	err := uc.EnsureLoggedIn(ctx)
	if errors.Is(err, workflow.ErrNotLoggedIn) {
		uc.console.LogWarning("No saved credentials. Run 'aws-optimizer login' first.")
		return nil
	}
	if err != nil {
		return err
	}
	c := uc.session.Credentials()
	table := uc.console.CreateTable()
	table.AddColumn("User")
	table.AddColumn("Account ID")
	table.AddColumn("ARN")
	table.AddColumn("Region")
	table.AddRow(displayUser(c), c.AccountID, c.ARN, c.Region)
	uc.console.Println(table.Render())
	return nil
}

// --- Catalog ---

// LoadTechniques fetches the catalog once per session.
func (uc *OptimizerUseCase) LoadTechniques(ctx context.Context) ([]entity.Technique, error) {
	if techniques := uc.session.Techniques(); len(techniques) > 0 {
		return techniques, nil
	}
	t, err := uc.session.Begin(workflow.CallTechniques)
	if err != nil {
		return nil, err
	}
	techniques, callErr := uc.optimizerRepo.ListTechniques(ctx)
	if err := uc.session.CompleteTechniques(t, techniques, callErr); err != nil {
		return nil, err
	}
	return uc.session.Techniques(), nil
}

// ShowTechniques prints the catalog.
func (uc *OptimizerUseCase) ShowTechniques(ctx context.Context) error {
	techniques, err := uc.LoadTechniques(ctx)
	if err != nil {
		return err
	}
	if len(techniques) == 0 {
		uc.console.LogWarning("The API offers no optimization techniques")
		return nil
	}
	uc.console.Println(renderTechniques(uc.console.CreateTable(), techniques))
	uc.console.LogInfo("%s techniques available", humanize.Comma(int64(len(techniques))))
	return nil
}

// ResolveTechnique finds a technique of the catalog by id.
func (uc *OptimizerUseCase) ResolveTechnique(ctx context.Context, id string) (entity.Technique, error) {
	techniques, err := uc.LoadTechniques(ctx)
	if err != nil {
		return entity.Technique{}, err
	}
	if t, ok := uc.session.Technique(id); ok {
		return t, nil
	}
	ids := make([]string, 0, len(techniques))
	for _, t := range techniques {
		ids = append(ids, t.ID)
	}
	return entity.Technique{}, fmt.Errorf("%w %q (available: %s)", types.ErrUnknownTechnique, id, strings.Join(ids, ", "))
}

// --- Analysis ---

// Analyze runs a technique, prints the findings and exports them when
// args asks for a report.
func (uc *OptimizerUseCase) Analyze(ctx context.Context, techniqueID string, args *types.CLIArgs) (*entity.AnalysisResult, error) {
	if err := uc.EnsureLoggedIn(ctx); err != nil {
		return nil, err
	}
	technique, err := uc.ResolveTechnique(ctx, techniqueID)
	if err != nil {
		return nil, err
	}

	uc.session.Back()
	call, err := uc.session.BeginAnalyze(technique)
	if err != nil {
		return nil, err
	}

	status := uc.console.Status(fmt.Sprintf("Analyzing %s in %s...", technique.Name, call.Region))
	result, callErr := uc.optimizerRepo.Analyze(ctx, technique.ID, call.Region)
	status.Stop()
	if err := uc.session.CompleteAnalyze(call.Ticket, result, callErr); err != nil {
		return nil, err
	}

	analysis := uc.session.Analysis()
	uc.displayAnalysis(analysis)

	if args != nil && args.WantsExport() {
		if !analysis.HasFindings() {
			uc.console.LogWarning("Nothing to export: no findings")
		} else if _, err := uc.Export(args); err != nil {
			return analysis, err
		}
	}
	return analysis, nil
}

// --- Export ---

// Export writes the current findings in every requested format.
func (uc *OptimizerUseCase) Export(args *types.CLIArgs) ([]string, error) {
	report, err := uc.session.Report(uc.now())
	if err != nil {
		return nil, err
	}
	paths, err := uc.ExportReport(report, args.ReportType, args.ReportName, args.Dir)
	for _, p := range paths {
		uc.console.LogSuccess("Report saved: %s (%s)", p, fileSize(p))
	}
	return paths, err
}

// ExportReport writes an already captured report. It doesn't touch the
// session, so it may run off the control thread.
func (uc *OptimizerUseCase) ExportReport(report entity.FindingsReport, reportTypes []string, name, dir string) ([]string, error) {
	if len(report.Findings) == 0 {
		return nil, workflow.ErrNoFindings
	}
	var paths []string
	for _, rt := range reportTypes {
		var (
			path string
			err  error
		)
		switch strings.ToLower(rt) {
		case "json":
			path, err = uc.exportRepo.ExportFindingsToJSON(report, name, dir)
		case "csv":
			path, err = uc.exportRepo.ExportFindingsToCSV(report, name, dir)
		case "pdf":
			path, err = uc.exportRepo.ExportFindingsToPDF(report, name, dir)
		default:
			err = fmt.Errorf("%w: %q", types.ErrUnsupportedReportType, rt)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// --- Optimization ---

// OptimizeOptions selects resources and confirms a one-shot optimization.
type OptimizeOptions struct {
	IDs     []string
	All     bool
	Confirm string
}

// Optimize analyzes, selects, confirms and executes in one go.
func (uc *OptimizerUseCase) Optimize(ctx context.Context, techniqueID string, opts OptimizeOptions, args *types.CLIArgs) (*entity.OptimizationResult, error) {
	if !opts.All && len(opts.IDs) == 0 {
		return nil, types.ErrNothingSelected
	}

	analysis, err := uc.Analyze(ctx, techniqueID, args)
	if err != nil {
		return nil, err
	}
	if !analysis.HasFindings() {
		return nil, workflow.ErrNoFindings
	}

	mode := workflow.ModeDryRun
	if args != nil && args.Live {
		mode = workflow.ModeLive
	}
	if err := uc.session.SetMode(mode); err != nil {
		return nil, err
	}

	if err := uc.selectResources(opts); err != nil {
		return nil, err
	}
	if err := uc.session.RequestConfirmation(); err != nil {
		return nil, err
	}

	sel := uc.session.Selection()
	verb := "Previewing"
	if mode == workflow.ModeLive {
		verb = "Optimizing"
		uc.console.LogWarning("LIVE mode: %s resource(s) of %s will be changed", humanize.Comma(int64(sel.Len())), analysis.Technique.Name)
		if err := uc.session.SetConfirmationInput(opts.Confirm); err != nil {
			return nil, err
		}
	}

	call, err := uc.session.Confirm()
	if err != nil {
		var mismatch *workflow.MismatchError
		if errors.As(err, &mismatch) {
			_ = uc.session.Cancel()
			return nil, fmt.Errorf("%w: %v", types.ErrConfirmationRequired, err)
		}
		return nil, err
	}

	status := uc.console.Status(fmt.Sprintf("%s %d resource(s), $%s/month...", verb, sel.Len(), workflow.FormatMoney(uc.session.SelectedSavings())))
	result, callErr := uc.optimizerRepo.Optimize(ctx, call.TechniqueID, call.Request)
	status.Stop()
	if err := uc.session.CompleteOptimize(call.Ticket, result, callErr); err != nil {
		return nil, err
	}

	merged := uc.session.Analysis().OptimizationResults
	uc.displayOutcomes(merged)
	return merged, nil
}

func (uc *OptimizerUseCase) selectResources(opts OptimizeOptions) error {
	if opts.All {
		if uc.session.Selection().AllSelected() {
			return nil
		}
		return uc.session.SelectAll()
	}
	for _, id := range opts.IDs {
		id = strings.TrimSpace(id)
		if id == "" || uc.session.Selection().Contains(id) {
			continue
		}
		if err := uc.session.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}

func displayUser(c *entity.Credentials) string {
	if c == nil || c.User == "" {
		return "unknown user"
	}
	return c.User
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}

// ReportTypesValid reports whether every report type is supported.
func ReportTypesValid(reportTypes []string) error {
	for _, rt := range reportTypes {
		if !slices.Contains(types.SupportedReportTypes, strings.ToLower(rt)) {
			return fmt.Errorf("%w: %q", types.ErrUnsupportedReportType, rt)
		}
	}
	return nil
}
