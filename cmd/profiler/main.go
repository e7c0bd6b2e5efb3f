package main

import (
	"context"
	"fmt"
	"log/slog"

	"profiler/config"
	"profiler/internal/domain/service"
	"profiler/internal/infra/export"
	logs "profiler/internal/infra/log"
	"profiler/internal/infra/oplog"
	"profiler/internal/infra/persistence/memory"
	"profiler/internal/usecase"
	"profiler/internal/usecase/impl"

	"go.uber.org/fx"
)

type runParams struct {
	fx.In
	fx.Lifecycle

	Shutdowner fx.Shutdowner
	Cfg        *config.Config
	Logger     *slog.Logger
	Classifier usecase.ClassifierUsecase
	Scenario   usecase.ScenarioUsecase
	Exporter   service.ProfileExporter
	OpLog      *oplog.Writer
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		fx.Invoke(run),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			memory.NewProfileStore,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newOperationLog,
			func(w *oplog.Writer) service.OperationLogger { return w },
			newProfileExporter,
		),
	)
}

// newOperationLog opens the structured operation log configured for the
// scenario run.
func newOperationLog(cfg *config.Config) (*oplog.Writer, error) {
	return oplog.NewWriter(cfg.Scenario.LogFile)
}

// newProfileExporter creates the exporter for live profiles.
func newProfileExporter(cfg *config.Config, logger *slog.Logger) (service.ProfileExporter, error) {
	return export.NewJSONExporter(cfg.Export.ProfilesDir, "profile", logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewClassifierService,
			impl.NewScenarioService,
		),
	)
}

func run(ctx context.Context, params runParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				if err := pipeline(ctx, params); err != nil {
					params.Logger.Error("profiling run failed", slog.Any("error", err))
					code = 1
				}
				if err := params.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					params.Logger.Error("shutdown failed", slog.Any("error", err))
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			return params.OpLog.Close()
		},
	})
}

// pipeline runs the configured scenarios through the live classifier,
// exports every resulting profile and prints the summary report.
func pipeline(ctx context.Context, params runParams) error {
	if params.Cfg.Scenario.Enabled {
		if err := params.Scenario.Run(ctx); err != nil {
			return err
		}
	}

	profiles, err := params.Classifier.ListProfiles(ctx)
	if err != nil {
		return err
	}

	if len(profiles) > 0 {
		if _, err := params.Exporter.ExportAll(ctx, profiles); err != nil {
			params.Logger.Warn("profile export incomplete", slog.Any("error", err))
		}
	}

	report, err := params.Classifier.SummaryReport(ctx)
	if err != nil {
		return err
	}
	fmt.Println(report)

	return nil
}
