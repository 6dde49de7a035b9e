package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/api"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-optimizer-go/internal/application/usecase"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/diillson/aws-cost-optimizer-go/pkg/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned answers and records the optimize requests.
type fakeAPI struct {
	mu        sync.Mutex
	hits      map[string]int
	optimized []map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	f := &fakeAPI{hits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/credentials/check", func(w http.ResponseWriter, r *http.Request) {
		f.hit("check")
		_, _ = io.WriteString(w, `{"valid":true,"user":"alice","account_id":"123456789012"}`)
	})
	mux.HandleFunc("/techniques", func(w http.ResponseWriter, r *http.Request) {
		f.hit("techniques")
		_, _ = io.WriteString(w, `[{"id":"elastic-ip","name":"Unassociated Elastic IPs","icon":"🌐"}]`)
	})
	mux.HandleFunc("/analyze/elastic-ip", func(w http.ResponseWriter, r *http.Request) {
		f.hit("analyze")
		_, _ = io.WriteString(w, `{"count":2,"total_monthly_savings":7.25,"findings":[
			{"resource_id":"eipalloc-1","resource_type":"Elastic IP","details":{"public_ip":"1.2.3.4"},"estimated_savings":3.6},
			{"resource_id":"eipalloc-2","resource_type":"Elastic IP","details":{"public_ip":"5.6.7.8"},"estimated_savings":3.65}]}`)
	})
	mux.HandleFunc("/optimize/elastic-ip", func(w http.ResponseWriter, r *http.Request) {
		f.hit("optimize")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.optimized = append(f.optimized, body)
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"summary":{"success":1,"failed":0},"results":[{"resource_id":"eipalloc-1","status":"success","message":"released"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[name]
}

// newTestApp builds the app with a real use case stack; built receives the
// merged arguments.
func newTestApp(t *testing.T, built **types.CLIArgs) *CLIApp {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	factory := func(args *types.CLIArgs, logWriter io.Writer) *usecase.OptimizerUseCase {
		*built = args
		session := workflow.NewSession(
			workflow.WithStrictConfirmation(args.StrictConfirmation),
			workflow.WithDefaultRegion(args.Region),
		)
		return usecase.NewOptimizerUseCase(
			api.NewOptimizerRepository(args.APIURL, api.WithLogger(console.NewLogger(io.Discard, false))),
			export.NewExportRepository(),
			aws.NewProfileRepository(),
			console.NewConsole(),
			session,
		)
	}
	return NewCLIApp("0.0.0-dev", config.NewConfigRepository(t.TempDir()), factory)
}

func run(app *CLIApp, args ...string) error {
	app.Root().SetArgs(args)
	app.Root().SetOut(io.Discard)
	app.Root().SetErr(io.Discard)
	return app.Execute(context.Background())
}

func TestMergeConfig(t *testing.T) {
	args := &types.CLIArgs{Region: "us-west-2", TimeoutSeconds: DefaultTimeoutSeconds}
	cfg := &types.Config{
		APIURL:             "http://optimizer:5000/api",
		Region:             "eu-west-1",
		ReportType:         []string{"csv"},
		StrictConfirmation: true,
		TimeoutSeconds:     60,
	}
	changed := func(name string) bool { return name == "region" }

	mergeConfig(args, cfg, changed)

	assert.Equal(t, "http://optimizer:5000/api", args.APIURL)
	assert.Equal(t, "us-west-2", args.Region, "explicit flag wins")
	assert.Equal(t, []string{"csv"}, args.ReportType)
	assert.True(t, args.StrictConfirmation)
	assert.Equal(t, 60, args.TimeoutSeconds)
	assert.False(t, args.Live)
}

func TestConfigFileAndFlags(t *testing.T) {
	_, srv := newFakeAPI(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "optimizer.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"api_url = \""+srv.URL+"\"\nregion = \"eu-central-1\"\ntimeout_seconds = 30\nstrict_confirmation = true\n"), 0o600))

	var built *types.CLIArgs
	app := newTestApp(t, &built)
	require.NoError(t, run(app, "techniques", "-C", cfgPath, "-r", "ap-northeast-1", "-d", dir))

	require.NotNil(t, built)
	assert.Equal(t, srv.URL, built.APIURL)
	assert.Equal(t, "ap-northeast-1", built.Region)
	assert.Equal(t, 30, built.TimeoutSeconds)
	assert.True(t, built.StrictConfirmation)
	assert.Equal(t, dir, built.Dir)
}

func TestDefaults(t *testing.T) {
	_, srv := newFakeAPI(t)
	var built *types.CLIArgs
	app := newTestApp(t, &built)
	require.NoError(t, run(app, "techniques", "-u", srv.URL))

	assert.Equal(t, DefaultTimeoutSeconds, built.TimeoutSeconds)
	assert.False(t, built.Live)
	assert.Empty(t, built.ReportType)
	assert.NotEmpty(t, built.Dir)
}

func TestInvalidReportType(t *testing.T) {
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	err := run(app, "analyze", "elastic-ip", "-y", "xml")
	assert.ErrorIs(t, err, types.ErrUnsupportedReportType)
	assert.Nil(t, built)
}

func TestAnalyzeExportsReport(t *testing.T) {
	fake, srv := newFakeAPI(t)
	dir := t.TempDir()
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	require.NoError(t, run(app, "analyze", "elastic-ip", "-u", srv.URL, "-y", "json,csv", "-d", dir))

	assert.Equal(t, 1, fake.count("analyze"))
	assert.Zero(t, fake.count("optimize"))
	assert.FileExists(t, filepath.Join(dir, "cost-optimizer-elastic-ip.json"))
	assert.FileExists(t, filepath.Join(dir, "cost-optimizer-elastic-ip.csv"))
}

func TestAnalyzeRequiresTechnique(t *testing.T) {
	var built *types.CLIArgs
	app := newTestApp(t, &built)
	assert.Error(t, run(app, "analyze"))
}

func TestOptimizeDryRun(t *testing.T) {
	fake, srv := newFakeAPI(t)
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	require.NoError(t, run(app, "optimize", "elastic-ip", "-u", srv.URL, "--ids", "eipalloc-1"))

	require.Len(t, fake.optimized, 1)
	assert.Equal(t, true, fake.optimized[0]["dry_run"])
	assert.Equal(t, []any{"eipalloc-1"}, fake.optimized[0]["resource_ids"])
	assert.Equal(t, workflow.DefaultRegion, fake.optimized[0]["region"])
}

func TestOptimizeLiveNeedsConfirmation(t *testing.T) {
	fake, srv := newFakeAPI(t)
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	err := run(app, "optimize", "elastic-ip", "-u", srv.URL, "--all", "--live", "--confirm", "elastic")
	assert.ErrorIs(t, err, types.ErrConfirmationRequired)
	assert.Zero(t, fake.count("optimize"))
}

func TestOptimizeLiveConfirmed(t *testing.T) {
	fake, srv := newFakeAPI(t)
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	require.NoError(t, run(app, "optimize", "elastic-ip", "-u", srv.URL, "--all", "--live", "--confirm", "Unassociated", "-r", "eu-west-1"))

	require.Len(t, fake.optimized, 1)
	assert.Equal(t, false, fake.optimized[0]["dry_run"])
	assert.Len(t, fake.optimized[0]["resource_ids"], 2)
	assert.Equal(t, "eu-west-1", fake.optimized[0]["region"])
}

func TestOptimizeNeedsSelection(t *testing.T) {
	fake, srv := newFakeAPI(t)
	var built *types.CLIArgs
	app := newTestApp(t, &built)

	err := run(app, "optimize", "elastic-ip", "-u", srv.URL)
	assert.ErrorIs(t, err, types.ErrNothingSelected)
	assert.Zero(t, fake.count("analyze"))
}
