package usecase

import (
	"context"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

// processAutoBrowser walks an AUTO claim through the browser-driven path.
// The browser is owned by this claim only and always torn down before
// returning. A budget export failure marks the claim as a problem but does
// not abandon it: the browser is rebuilt once and the documents phase still
// runs. That one-shot rebuild exists only for this budget sub-step.
func (o *Orchestrator) processAutoBrowser(ctx context.Context, req ports.RunRequest, claimID string) domain.ClaimOutcome {
	dir, err := o.output.ClaimDir(claimID)
	if err != nil {
		return o.problem(claimID, 0, err)
	}

	flow, err := o.openPositioned(ctx, req, claimID, dir)
	if err != nil {
		return o.problem(claimID, 0, err)
	}

	budgetProblem := false
	if req.IncludeBudget {
		if err := flow.ExportBudget(ctx); err != nil {
			o.log.Warn("budget export failed, rebuilding browser", "claim", claimID, "error", err)
			budgetProblem = true
			_ = flow.Quit(ctx)

			flow, err = o.openPositioned(ctx, req, claimID, dir)
			if err != nil {
				return o.problem(claimID, 0, err)
			}
		} else {
			o.reporter.ClaimStage(claimID, "budget exported")
		}
	}

	downloaded, err := flow.DownloadDocuments(ctx)
	_ = flow.Quit(ctx)
	if err != nil {
		return o.problem(claimID, downloaded, err)
	}
	o.reporter.ClaimStage(claimID, "downloaded")

	return domain.ClaimOutcome{
		ClaimID:             claimID,
		DocumentsDownloaded: downloaded,
		Problem:             budgetProblem,
		Reason:              budgetReason(budgetProblem),
	}
}

// openPositioned opens a browser, logs in and lands on the claim's page.
// The flow is quit on any failure.
func (o *Orchestrator) openPositioned(ctx context.Context, req ports.RunRequest, claimID, dir string) (ports.BrowserFlow, error) {
	flow, err := o.pilot.Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	if err := flow.Login(ctx, req.Credentials); err != nil {
		_ = flow.Quit(ctx)
		return nil, err
	}
	o.reporter.ClaimStage(claimID, "authenticated")
	if err := flow.LocateClaim(ctx, claimID); err != nil {
		_ = flow.Quit(ctx)
		return nil, err
	}
	o.reporter.ClaimStage(claimID, "claim located")
	return flow, nil
}

func budgetReason(problem bool) string {
	if problem {
		return "budget export failed"
	}
	return ""
}
