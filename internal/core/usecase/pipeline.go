package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

// Timing holds the settle delays between pipeline stages. The portal backend
// is rate-sensitive; the defaults match the pacing the portal tolerates.
type Timing struct {
	PostLoginSettle time.Duration
	StageSettle     time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		PostLoginSettle: 3 * time.Second,
		StageSettle:     2 * time.Second,
	}
}

// Orchestrator runs claim batches sequentially: claims one at a time, in
// input order, each claim owning its session or browser exclusively. Stage
// failures convert into per-claim problem outcomes; nothing short of context
// cancellation aborts the batch.
type Orchestrator struct {
	gateway      ports.PortalGateway
	pilot        ports.BrowserPilot
	output       ports.OutputStore
	autoDL       ports.DocumentDownloader
	electricalDL ports.DocumentDownloader
	reporter     ports.ProgressReporter
	log          *slog.Logger
	timing       Timing
}

func NewOrchestrator(
	gateway ports.PortalGateway,
	pilot ports.BrowserPilot,
	output ports.OutputStore,
	autoDL ports.DocumentDownloader,
	electricalDL ports.DocumentDownloader,
	reporter ports.ProgressReporter,
	log *slog.Logger,
	timing Timing,
) *Orchestrator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		gateway:      gateway,
		pilot:        pilot,
		output:       output,
		autoDL:       autoDL,
		electricalDL: electricalDL,
		reporter:     reporter,
		log:          log,
		timing:       timing,
	}
}

func (o *Orchestrator) Run(ctx context.Context, req ports.RunRequest) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Category:  req.Category,
		StartedAt: time.Now().UTC(),
	}

	for _, claimID := range req.Claims {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		o.reporter.ClaimStarted(claimID)
		outcome := o.processClaim(ctx, req, claimID)
		report.Outcomes = append(report.Outcomes, outcome)
		o.reporter.ClaimFinished(outcome)
	}

	report.FinishedAt = time.Now().UTC()
	o.reporter.BatchFinished(report)
	return report, nil
}

func (o *Orchestrator) processClaim(ctx context.Context, req ports.RunRequest, claimID string) domain.ClaimOutcome {
	switch {
	case req.Category == domain.CategoryElectrical:
		return o.processElectrical(ctx, req, claimID)
	case req.Driver == domain.DriverAPI:
		return o.processAutoAPI(ctx, req, claimID)
	default:
		return o.processAutoBrowser(ctx, req, claimID)
	}
}

func (o *Orchestrator) problem(claimID string, downloaded int, err error) domain.ClaimOutcome {
	o.log.Warn("claim isolated", "claim", claimID, "error", err)
	return domain.ClaimOutcome{
		ClaimID:             claimID,
		DocumentsDownloaded: downloaded,
		Problem:             true,
		Reason:              err.Error(),
	}
}

type nopReporter struct{}

func (nopReporter) ClaimStarted(string)               {}
func (nopReporter) ClaimStage(string, string)         {}
func (nopReporter) ClaimFinished(domain.ClaimOutcome) {}
func (nopReporter) BatchFinished(domain.RunReport)    {}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
