package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driving/tui"
	"github.com/diillson/aws-cost-optimizer-go/internal/application/usecase"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/diillson/aws-cost-optimizer-go/pkg/console"
	"github.com/diillson/aws-cost-optimizer-go/pkg/version"
	"github.com/spf13/cobra"
)

// DefaultTimeoutSeconds bounds API calls unless configured otherwise.
const DefaultTimeoutSeconds = 300

// UseCaseFactory builds the use case once flags and config are known.
// logWriter receives the diagnostic log.
type UseCaseFactory func(args *types.CLIArgs, logWriter io.Writer) *usecase.OptimizerUseCase

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	newUseCase UseCaseFactory
	version    string

	args    *types.CLIArgs
	useCase *usecase.OptimizerUseCase
	logFile *os.File
}

// NewCLIApp creates the CLI application.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, factory UseCaseFactory) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
		newUseCase: factory,
	}

	rootCmd := &cobra.Command{
		Use:   "aws-optimizer",
		Short: "AWS Cost Optimizer client",
		Long: "Find and clean up idle AWS resources through the cost optimizer API.\n" +
			"Without a subcommand the interactive client is started.",
		Version:            version.FormatVersion(),
		SilenceUsage:       true,
		PersistentPreRunE:  app.prepare,
		PersistentPostRunE: app.cleanup,
		RunE:               app.runInteractive,
	}
	rootCmd.SetVersionTemplate(`{{printf "AWS Cost Optimizer version: %s\n" .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	pf.StringP("api-url", "u", "", "Base URL of the cost optimizer API (default http://localhost:5000/api)")
	pf.StringP("region", "r", "", "AWS region to analyze (default us-east-1)")
	pf.StringP("profile", "p", "", "AWS profile to read credentials from")
	pf.StringP("report-name", "n", "", "Base name for the report file (without extension)")
	pf.StringSliceP("report-type", "y", nil, "Export findings as: json, csv, pdf")
	pf.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	pf.Bool("live", false, "Execute changes instead of a dry run")
	pf.Bool("strict-confirmation", false, "Require the full technique name or id to confirm live runs")
	pf.Int("timeout", DefaultTimeoutSeconds, "Timeout in seconds for API calls")
	pf.Bool("debug", false, "Write debug logs")

	rootCmd.AddCommand(
		app.loginCommand(),
		app.logoutCommand(),
		app.statusCommand(),
		app.techniquesCommand(),
		app.analyzeCommand(),
		app.optimizeCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// Root exposes the root command, e.g. to run it with custom args.
func (app *CLIApp) Root() *cobra.Command {
	return app.rootCmd
}

// prepare merges config and flags and builds the use case.
func (app *CLIApp) prepare(cmd *cobra.Command, _ []string) error {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return err
	}
	if err := usecase.ReportTypesValid(args.ReportType); err != nil {
		return err
	}
	app.args = args

	var logWriter io.Writer = os.Stderr
	if cmd == app.rootCmd {
		// The TUI owns the screen, so logs go to a file.
		logWriter, err = app.openLogFile(args)
		if err != nil {
			return err
		}
	} else {
		displayWelcomeBanner()
		go version.CheckLatestVersion(app.version)
	}

	app.useCase = app.newUseCase(args, logWriter)
	return nil
}

func (app *CLIApp) cleanup(*cobra.Command, []string) error {
	if app.logFile != nil {
		return app.logFile.Close()
	}
	return nil
}

func (app *CLIApp) openLogFile(args *types.CLIArgs) (io.Writer, error) {
	if !args.Debug && os.Getenv(console.EnvLogLevel) == "" {
		return io.Discard, nil
	}
	path := filepath.Join(os.TempDir(), "aws-optimizer.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	app.logFile = f
	return f, nil
}

// parseArgs parses command-line arguments into a CLIArgs struct. Flags set
// on the command line win over the config file.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	apiURL, _ := flags.GetString("api-url")
	region, _ := flags.GetString("region")
	profile, _ := flags.GetString("profile")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	live, _ := flags.GetBool("live")
	strict, _ := flags.GetBool("strict-confirmation")
	timeout, _ := flags.GetInt("timeout")
	debug, _ := flags.GetBool("debug")

	args := &types.CLIArgs{
		ConfigFile:         configFile,
		APIURL:             apiURL,
		Region:             region,
		Profile:            profile,
		Live:               live,
		StrictConfirmation: strict,
		Debug:              debug,
		TimeoutSeconds:     timeout,
		ReportName:         reportName,
		ReportType:         reportType,
		Dir:                dir,
	}

	if args.ConfigFile == "" && app.configRepo != nil {
		args.ConfigFile = app.configRepo.FindConfigFile()
	}
	if args.ConfigFile != "" {
		cfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(args, cfg, func(name string) bool { return flags.Changed(name) })
	}

	// Set default directory to current working directory if not specified
	if args.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		args.Dir = cwd
	} else {
		absDir, err := filepath.Abs(args.Dir)
		if err != nil {
			return nil, err
		}
		args.Dir = absDir
	}
	if args.TimeoutSeconds <= 0 {
		args.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return args, nil
}

// mergeConfig copies config values into args for every flag not set
// explicitly.
func mergeConfig(args *types.CLIArgs, cfg *types.Config, changed func(string) bool) {
	if cfg == nil {
		return
	}
	if !changed("api-url") && cfg.APIURL != "" {
		args.APIURL = cfg.APIURL
	}
	if !changed("region") && cfg.Region != "" {
		args.Region = cfg.Region
	}
	if !changed("profile") && cfg.Profile != "" {
		args.Profile = cfg.Profile
	}
	if !changed("report-name") && cfg.ReportName != "" {
		args.ReportName = cfg.ReportName
	}
	if !changed("report-type") && len(cfg.ReportType) > 0 {
		args.ReportType = cfg.ReportType
	}
	if !changed("dir") && cfg.Dir != "" {
		args.Dir = cfg.Dir
	}
	if !changed("live") && cfg.Live {
		args.Live = true
	}
	if !changed("strict-confirmation") && cfg.StrictConfirmation {
		args.StrictConfirmation = true
	}
	if !changed("timeout") && cfg.TimeoutSeconds > 0 {
		args.TimeoutSeconds = cfg.TimeoutSeconds
	}
}

// runInteractive runs when no subcommand is given: it opens the TUI.
func (app *CLIApp) runInteractive(cmd *cobra.Command, _ []string) error {
	logger := console.NewLogger(app.logWriter(), app.args.Debug)
	return tui.Run(app.useCase, tui.Options{
		Profile:    app.args.Profile,
		Region:     app.args.Region,
		ReportName: app.args.ReportName,
		Dir:        app.args.Dir,
		Logger:     logger,
	})
}

func (app *CLIApp) logWriter() io.Writer {
	if app.logFile != nil {
		return app.logFile
	}
	return io.Discard
}

func (app *CLIApp) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Validate AWS credentials with the API",
		Long: "Validate AWS credentials with the API, which keeps them for later commands.\n" +
			"Keys are taken from --access-key/--secret-key or, when absent, from the AWS profile.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accessKey, _ := cmd.Flags().GetString("access-key")
			secretKey, _ := cmd.Flags().GetString("secret-key")
			profile := app.args.Profile
			if accessKey == "" && secretKey == "" && profile == "" {
				profile = "default"
			}
			input := entity.CredentialInput{
				AccessKey: strings.TrimSpace(accessKey),
				SecretKey: strings.TrimSpace(secretKey),
				Region:    app.args.Region,
			}
			_, err := app.useCase.Login(cmd.Context(), input, profile)
			return err
		},
	}
	cmd.Flags().String("access-key", "", "AWS access key id")
	cmd.Flags().String("secret-key", "", "AWS secret access key")
	return cmd
}

func (app *CLIApp) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Make the API forget the saved credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.useCase.Logout(cmd.Context())
		},
	}
}

func (app *CLIApp) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show API health and the saved credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.useCase.Status(cmd.Context())
		},
	}
}

func (app *CLIApp) techniquesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "techniques",
		Aliases: []string{"list"},
		Short:   "List the optimization techniques offered by the API",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.useCase.ShowTechniques(cmd.Context())
		},
	}
}

func (app *CLIApp) analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <technique>",
		Short: "Analyze resources with a technique and list the findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			_, err := app.useCase.Analyze(cmd.Context(), posArgs[0], app.args)
			return err
		},
	}
}

func (app *CLIApp) optimizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize <technique>",
		Short: "Optimize selected findings (dry run unless --live)",
		Long: "Analyze, select --ids or --all, confirm and execute.\n" +
			"Live runs need --confirm with the technique name, its id or the first word of its name.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			ids, _ := cmd.Flags().GetStringSlice("ids")
			all, _ := cmd.Flags().GetBool("all")
			confirm, _ := cmd.Flags().GetString("confirm")
			if app.args.Live {
				displayLiveWarning()
			}
			_, err := app.useCase.Optimize(cmd.Context(), posArgs[0], usecase.OptimizeOptions{
				IDs:     ids,
				All:     all,
				Confirm: confirm,
			}, app.args)
			return err
		},
	}
	cmd.Flags().StringSlice("ids", nil, "Resource ids to optimize (comma-separated)")
	cmd.Flags().BoolP("all", "a", false, "Optimize every finding")
	cmd.Flags().String("confirm", "", "Confirmation phrase for live runs")
	return cmd
}
