package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	api     *fakeOptimizer
	export  *fakeExport
	console *recordingConsole
	uc      *OptimizerUseCase
}

func newFixture(opts ...workflow.Option) *fixture {
	f := &fixture{
		api:     newFakeOptimizer(),
		export:  &fakeExport{},
		console: &recordingConsole{},
	}
	profiles := &fakeProfiles{creds: map[string]entity.CredentialInput{
		"finops": {AccessKey: "AKIAPROFILE", SecretKey: "profilesecret", Region: "eu-west-1"},
	}}
	f.uc = NewOptimizerUseCase(f.api, f.export, profiles, f.console, workflow.NewSession(opts...))
	return f
}

func (f *fixture) withSavedCredentials() *fixture {
	f.api.saved = &entity.CredentialStatus{Valid: true, User: "alice", AccountID: "123456789012"}
	return f
}

func TestLogin(t *testing.T) {
	f := newFixture()

	creds, err := f.uc.Login(context.Background(), entity.CredentialInput{AccessKey: "AKIA", SecretKey: "s", Region: "us-west-2"}, "")
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.User)
	assert.Equal(t, "us-west-2", creds.Region)
	assert.Equal(t, workflow.PhaseModeChoice, f.uc.Session().Phase())
	assert.Contains(t, f.console.output(), "Credentials validated for alice")
}

func TestLoginFromProfile(t *testing.T) {
	f := newFixture()

	creds, err := f.uc.Login(context.Background(), entity.CredentialInput{}, "finops")
	require.NoError(t, err)
	assert.Equal(t, "AKIAPROFILE", creds.AccessKey)
	assert.Equal(t, "eu-west-1", creds.Region)
}

func TestLoginErrors(t *testing.T) {
	t.Run("missing keys never reach the api", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Login(context.Background(), entity.CredentialInput{AccessKey: "AKIA"}, "")
		assert.ErrorIs(t, err, types.ErrMissingKeys)
		assert.Zero(t, f.api.calls["validate"])
	})

	t.Run("unknown profile", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Login(context.Background(), entity.CredentialInput{}, "prod")
		assert.ErrorIs(t, err, types.ErrProfileNotFound)
	})

	t.Run("rejected by the api", func(t *testing.T) {
		f := newFixture()
		f.api.validateErr = errors.New("The security token included in the request is invalid")
		_, err := f.uc.Login(context.Background(), entity.CredentialInput{AccessKey: "a", SecretKey: "b"}, "")
		require.Error(t, err)
		assert.False(t, f.uc.Session().LoggedIn())
		assert.Equal(t, err, f.uc.Session().ValidationError())
	})
}

func TestEnsureLoggedIn(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.uc.EnsureLoggedIn(context.Background()), workflow.ErrNotLoggedIn)

	f.withSavedCredentials()
	require.NoError(t, f.uc.EnsureLoggedIn(context.Background()))
	assert.Equal(t, workflow.PhaseBrowsing, f.uc.Session().Phase())
	assert.Equal(t, workflow.ModeDryRun, f.uc.Session().Mode())

	require.NoError(t, f.uc.EnsureLoggedIn(context.Background()))
	assert.Equal(t, 2, f.api.calls["check"], "a restored session is not checked again")
}

func TestLogoutResetsSession(t *testing.T) {
	f := newFixture().withSavedCredentials()
	_, err := f.uc.Analyze(context.Background(), "elastic-ip", nil)
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(context.Background()))

	s := f.uc.Session()
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.Analysis())
	assert.Nil(t, s.Selection())
	assert.Equal(t, workflow.PhaseIdle, s.Phase())
	assert.Equal(t, 1, f.api.calls["clear"])
}

func TestStatus(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.uc.Status(context.Background()))
	assert.Contains(t, f.console.output(), "No saved credentials")

	f.withSavedCredentials()
	require.NoError(t, f.uc.Status(context.Background()))
	assert.Contains(t, f.console.output(), "alice | 123456789012")

	f.api.healthErr = errors.New("Cost optimizer API is not reachable")
	assert.Error(t, f.uc.Status(context.Background()))
}

func TestTechniques(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.uc.ShowTechniques(context.Background()))
	require.NoError(t, f.uc.ShowTechniques(context.Background()))
	assert.Equal(t, 1, f.api.calls["techniques"], "catalog is fetched once per session")
	assert.Contains(t, f.console.output(), "elastic-ip | 🌐 Unassociated Elastic IPs")

	_, err := f.uc.ResolveTechnique(context.Background(), "nat")
	assert.ErrorIs(t, err, types.ErrUnknownTechnique)
	assert.ErrorContains(t, err, "ebs, elastic-ip")
}

func TestAnalyze(t *testing.T) {
	f := newFixture(workflow.WithDefaultRegion("eu-central-1")).withSavedCredentials()

	result, err := f.uc.Analyze(context.Background(), "elastic-ip", &types.CLIArgs{})
	require.NoError(t, err)
	assert.Equal(t, "Unassociated Elastic IPs", result.Technique.Name)
	assert.Len(t, result.Findings, 2)
	assert.Empty(t, f.export.written)

	require.Len(t, f.console.bars, 1)
	assert.Equal(t, []types.SavingsGroup{{ResourceType: "Elastic IP", Count: 2, Savings: 7.25}}, f.console.bars[0])
	assert.Contains(t, f.console.output(), "estimated savings $7.25/month")
}

func TestAnalyzeTwiceReplacesFindings(t *testing.T) {
	f := newFixture().withSavedCredentials()

	_, err := f.uc.Analyze(context.Background(), "elastic-ip", nil)
	require.NoError(t, err)
	result, err := f.uc.Analyze(context.Background(), "ebs", nil)
	require.NoError(t, err)
	assert.Equal(t, "ebs", result.Technique.ID)
	assert.False(t, result.HasFindings())
}

func TestAnalyzeNotLoggedIn(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Analyze(context.Background(), "elastic-ip", nil)
	assert.ErrorIs(t, err, workflow.ErrNotLoggedIn)
	assert.Zero(t, f.api.calls["analyze"])
}

func TestAnalyzeFailureKeepsSessionUsable(t *testing.T) {
	f := newFixture().withSavedCredentials()
	f.api.analyzeErr = errors.New("Failed to analyze resources")

	_, err := f.uc.Analyze(context.Background(), "elastic-ip", nil)
	require.Error(t, err)
	assert.Equal(t, err, f.uc.Session().Banner())

	f.api.analyzeErr = nil
	_, err = f.uc.Analyze(context.Background(), "elastic-ip", nil)
	require.NoError(t, err)
}

func TestAnalyzeExports(t *testing.T) {
	f := newFixture().withSavedCredentials()

	_, err := f.uc.Analyze(context.Background(), "elastic-ip", &types.CLIArgs{ReportType: []string{"json", "csv"}, Dir: "/tmp/out"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/out/cost-optimizer-elastic-ip.json", "/tmp/out/cost-optimizer-elastic-ip.csv"}, f.export.written)
}

func TestZeroFindingsNeverOptimizesOrExports(t *testing.T) {
	f := newFixture().withSavedCredentials()
	args := &types.CLIArgs{ReportType: []string{"json"}, Live: true}

	_, err := f.uc.Optimize(context.Background(), "ebs", OptimizeOptions{All: true, Confirm: "ebs"}, args)
	assert.ErrorIs(t, err, workflow.ErrNoFindings)
	assert.Zero(t, f.api.calls["optimize"])
	assert.Empty(t, f.export.written)

	_, err = f.uc.Export(args)
	assert.ErrorIs(t, err, workflow.ErrNoFindings)
	assert.Empty(t, f.export.written)
}

func TestOptimizeDryRun(t *testing.T) {
	f := newFixture().withSavedCredentials()

	result, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{IDs: []string{"eipalloc-2"}}, &types.CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.api.calls["optimize"])
	assert.Equal(t, entity.OptimizeRequest{ResourceIDs: []string{"eipalloc-2"}, DryRun: true, Region: workflow.DefaultRegion}, f.api.lastOptimize)
	assert.Equal(t, 1, result.Summary.Success)
	assert.Equal(t, workflow.PhaseBrowsing, f.uc.Session().Phase())
	assert.Len(t, f.uc.Session().Analysis().Findings, 2, "findings are untouched by an optimization")
	assert.Contains(t, f.console.output(), "Dry run finished: 1 succeeded, 0 failed")
}

func TestOptimizeLive(t *testing.T) {
	tests := []struct {
		name    string
		confirm string
		strict  bool
		wantErr bool
	}{
		{name: "full name", confirm: "  unassociated elastic ips "},
		{name: "id", confirm: "elastic-ip"},
		{name: "first word", confirm: "Unassociated"},
		{name: "first word refused when strict", confirm: "Unassociated", strict: true, wantErr: true},
		{name: "empty", confirm: "", wantErr: true},
		{name: "wrong", confirm: "delete", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(workflow.WithStrictConfirmation(tt.strict)).withSavedCredentials()

			_, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{All: true, Confirm: tt.confirm}, &types.CLIArgs{Live: true})
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrConfirmationRequired)
				assert.ErrorContains(t, err, `please type "Unassociated Elastic IPs" to confirm`)
				assert.Zero(t, f.api.calls["optimize"])
				assert.Equal(t, workflow.PhaseBrowsing, f.uc.Session().Phase())
				return
			}
			require.NoError(t, err)
			assert.False(t, f.api.lastOptimize.DryRun)
			assert.Equal(t, []string{"eipalloc-1", "eipalloc-2"}, f.api.lastOptimize.ResourceIDs)
		})
	}
}

func TestOptimizeSelectionErrors(t *testing.T) {
	t.Run("nothing chosen", func(t *testing.T) {
		f := newFixture().withSavedCredentials()
		_, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{}, nil)
		assert.ErrorIs(t, err, types.ErrNothingSelected)
		assert.Zero(t, f.api.calls["analyze"])
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture().withSavedCredentials()
		_, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{IDs: []string{"eipalloc-9"}}, nil)
		assert.ErrorIs(t, err, workflow.ErrUnknownResource)
		assert.Zero(t, f.api.calls["optimize"])
	})

	t.Run("blank ids", func(t *testing.T) {
		f := newFixture().withSavedCredentials()
		_, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{IDs: []string{" "}}, nil)
		assert.ErrorIs(t, err, workflow.ErrEmptySelection)
	})
}

func TestOptimizeFailureShowsBanner(t *testing.T) {
	f := newFixture().withSavedCredentials()
	f.api.optimizeErr = errors.New("Failed to optimize resources")

	_, err := f.uc.Optimize(context.Background(), "elastic-ip", OptimizeOptions{All: true}, nil)
	require.Error(t, err)
	assert.Equal(t, workflow.PhaseBrowsing, f.uc.Session().Phase())
	assert.Equal(t, err, f.uc.Session().Banner())
	assert.Nil(t, f.uc.Session().Analysis().OptimizationResults)
}

func TestExportReportRejectsUnknownType(t *testing.T) {
	f := newFixture()
	report := entity.FindingsReport{TechniqueID: "ebs", Findings: []entity.Finding{{ResourceID: "vol-1"}}}

	paths, err := f.uc.ExportReport(report, []string{"json", "xlsx"}, "", "/out")
	assert.ErrorIs(t, err, types.ErrUnsupportedReportType)
	assert.Equal(t, []string{"/out/cost-optimizer-ebs.json"}, paths)
}

func TestReportTypesValid(t *testing.T) {
	assert.NoError(t, ReportTypesValid([]string{"JSON", "csv", "pdf"}))
	assert.ErrorIs(t, ReportTypesValid([]string{"xml"}), types.ErrUnsupportedReportType)
}

func TestSavingsByType(t *testing.T) {
	groups := SavingsByType([]entity.Finding{
		{ResourceType: "Snapshot", EstimatedSavings: 0.1},
		{ResourceType: "Volume", EstimatedSavings: 5},
		{ResourceType: "Snapshot", EstimatedSavings: 0.2},
	})
	assert.Equal(t, []types.SavingsGroup{
		{ResourceType: "Volume", Count: 1, Savings: 5},
		{ResourceType: "Snapshot", Count: 2, Savings: 0.3},
	}, groups)
}
