package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vtavares/claimfetch/internal/config"
	"github.com/vtavares/claimfetch/internal/core/ports"
	"github.com/vtavares/claimfetch/internal/core/usecase"
	"github.com/vtavares/claimfetch/internal/infrastructure/browser"
	"github.com/vtavares/claimfetch/internal/infrastructure/download"
	"github.com/vtavares/claimfetch/internal/infrastructure/insurer"
	"github.com/vtavares/claimfetch/internal/infrastructure/progress"
	"github.com/vtavares/claimfetch/internal/infrastructure/repository/postgres"
	"github.com/vtavares/claimfetch/internal/infrastructure/resilience"
	"github.com/vtavares/claimfetch/internal/infrastructure/spreadsheet"
	"github.com/vtavares/claimfetch/internal/infrastructure/storage/localfs"
	"github.com/vtavares/claimfetch/internal/observability/logging"
	"github.com/vtavares/claimfetch/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Runner  *usecase.Orchestrator
	Sheets  ports.ClaimSheetReader
	Runs    ports.RunStore
	Metrics *metrics.BatchMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logging.NewJSONLogger("claimfetch", cfg.LogLevel)

	output, err := localfs.New(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init output store: %w", err)
	}

	gateway := insurer.New(insurer.Config{
		AuthBaseURL:        cfg.AuthBaseURL,
		UploadBaseURL:      cfg.UploadBaseURL,
		ResidentialBaseURL: cfg.ResidentialBaseURL,
		ClientCode:         cfg.ClientCode,
		UploadProfile:      cfg.UploadProfile,
		SystemName:         cfg.SystemName,
		ResolveInterval:    cfg.ResolveInterval,
		ElectricalInterval: cfg.ElectricalInterval,
		HTTPTimeout:        cfg.HTTPTimeout,
	}, resilience.NewExecutor(resilience.DefaultConfig()))

	pilot := browser.NewPilot(browser.Config{
		Headless:     cfg.BrowserHeadless,
		FieldTimeout: cfg.BrowserFieldTimeout,
		ClickTimeout: cfg.BrowserClickTimeout,
	}, cfg.PortalLoginURL, browser.DefaultFlowTiming())

	autoDL := download.NewAutoDownloader(output, download.AutoConfig{
		SettleDelay: cfg.DownloadSettleDelay,
		BackoffUnit: cfg.DownloadBackoffUnit,
		MaxAttempts: cfg.DownloadMaxAttempts,
	}, log)
	electricalDL := download.NewElectricalDownloader(output, download.ElectricalConfig{
		AttemptDelay: cfg.ElectricalFetchDelay,
	}, log)

	batchMetrics := metrics.NewBatchMetrics("claimfetch")
	reporters := progress.MultiReporter{
		progress.NewConsoleReporter(os.Stdout),
		batchMetrics,
	}

	closers := []func(){}

	if cfg.NATSURL != "" {
		publisher, err := progress.NewPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, fmt.Errorf("init progress publisher: %w", err)
		}
		reporters = append(reporters, publisher)
		closers = append(closers, publisher.Close)
	}

	var runs ports.RunStore
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		runs = repo
		closers = append(closers, func() { _ = db.Close() })
	}

	runner := usecase.NewOrchestrator(
		gateway,
		pilot,
		output,
		autoDL,
		electricalDL,
		reporters,
		log,
		usecase.Timing{
			PostLoginSettle: cfg.PostLoginSettle,
			StageSettle:     cfg.StageSettle,
		},
	)

	return &App{
		Config:  cfg,
		Log:     log,
		Runner:  runner,
		Sheets:  spreadsheet.NewReader(),
		Runs:    runs,
		Metrics: batchMetrics,

		closeFn: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
