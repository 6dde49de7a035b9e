package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/api"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-optimizer-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-optimizer-go/internal/application/usecase"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/diillson/aws-cost-optimizer-go/pkg/console"
	"github.com/diillson/aws-cost-optimizer-go/pkg/version"
)

func main() {
	configRepo := config.NewConfigRepository()

	// Os repositórios dependem das flags; são criados depois do parse.
	factory := func(args *types.CLIArgs, logWriter io.Writer) *usecase.OptimizerUseCase {
		logger := console.NewLogger(logWriter, args.Debug)

		optimizerRepo := api.NewOptimizerRepository(args.APIURL,
			api.WithTimeout(time.Duration(args.TimeoutSeconds)*time.Second),
			api.WithLogger(logger),
		)
		session := workflow.NewSession(
			workflow.WithStrictConfirmation(args.StrictConfirmation),
			workflow.WithDefaultRegion(args.Region),
		)

		return usecase.NewOptimizerUseCase(
			optimizerRepo,
			export.NewExportRepository(),
			aws.NewProfileRepository(),
			console.NewConsole(),
			session,
		)
	}

	app := cli.NewCLIApp(version.Version, configRepo, factory)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
