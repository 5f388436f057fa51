package usecase

import (
	"context"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

// processAutoAPI walks an AUTO claim through the request-driven path:
// authenticate, discover, resolve every record, then download
// transactionally. The session is re-established per claim on purpose.
func (o *Orchestrator) processAutoAPI(ctx context.Context, req ports.RunRequest, claimID string) domain.ClaimOutcome {
	sess, err := o.gateway.Login(ctx, req.Credentials)
	if err != nil {
		return o.problem(claimID, 0, err)
	}
	defer sess.Close()
	o.reporter.ClaimStage(claimID, "authenticated")

	if err := sleep(ctx, o.timing.PostLoginSettle); err != nil {
		return o.problem(claimID, 0, err)
	}

	records, err := sess.DiscoverAuto(ctx, claimID)
	if err != nil {
		return o.problem(claimID, 0, err)
	}
	o.reporter.ClaimStage(claimID, "discovered")

	if err := sleep(ctx, o.timing.StageSettle); err != nil {
		return o.problem(claimID, 0, err)
	}

	// An invalid extension on any record aborts the claim's remaining work:
	// every output filename depends on resolved extensions.
	for i, rec := range records {
		resolved, err := sess.Resolve(ctx, claimID, rec)
		if err != nil {
			return o.problem(claimID, 0, err)
		}
		records[i] = resolved
	}
	o.reporter.ClaimStage(claimID, "resolved")

	if err := sleep(ctx, o.timing.StageSettle); err != nil {
		return o.problem(claimID, 0, err)
	}

	downloaded, err := o.autoDL.Download(ctx, sess, claimID, records)
	if err != nil {
		return o.problem(claimID, 0, err)
	}
	o.reporter.ClaimStage(claimID, "downloaded")

	return domain.ClaimOutcome{ClaimID: claimID, DocumentsDownloaded: downloaded}
}

// processElectrical runs the electrical-damage path. The downloader skips
// failed documents instead of failing the claim, so a claim only surfaces as
// a problem when authentication or discovery breaks.
func (o *Orchestrator) processElectrical(ctx context.Context, req ports.RunRequest, claimID string) domain.ClaimOutcome {
	sess, err := o.gateway.Login(ctx, req.Credentials)
	if err != nil {
		return o.problem(claimID, 0, err)
	}
	defer sess.Close()
	o.reporter.ClaimStage(claimID, "authenticated")

	if err := sleep(ctx, o.timing.PostLoginSettle); err != nil {
		return o.problem(claimID, 0, err)
	}

	records, err := sess.DiscoverElectrical(ctx, claimID)
	if err != nil {
		return o.problem(claimID, 0, err)
	}
	o.reporter.ClaimStage(claimID, "discovered")

	downloaded, err := o.electricalDL.Download(ctx, sess, claimID, records)
	if err != nil {
		// Only context expiry reaches here; per-document failures were
		// already absorbed.
		return o.problem(claimID, downloaded, err)
	}
	o.reporter.ClaimStage(claimID, "downloaded")

	return domain.ClaimOutcome{ClaimID: claimID, DocumentsDownloaded: downloaded}
}
