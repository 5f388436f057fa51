// Package download implements the per-category document downloaders. The
// AUTO downloader is transactional per claim: retries exhausted on any single
// document remove the claim's whole output directory. The electrical
// downloader logs and skips per document, leaving partial output on purpose.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
	"github.com/vtavares/claimfetch/internal/infrastructure/resilience"
)

type AutoConfig struct {
	// Settle delay before the first attempt of each document.
	SettleDelay time.Duration
	// Backoff unit: attempt k (0-indexed) waits k times this before the
	// request.
	BackoffUnit time.Duration
	MaxAttempts int
}

type AutoDownloader struct {
	output   ports.OutputStore
	executor *resilience.Executor
	cfg      AutoConfig
	log      *slog.Logger
}

func NewAutoDownloader(output ports.OutputStore, cfg AutoConfig, log *slog.Logger) *AutoDownloader {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &AutoDownloader{
		output:   output,
		executor: resilience.NewExecutor(resilience.LinearConfig(cfg.MaxAttempts, cfg.BackoffUnit)),
		cfg:      cfg,
		log:      log,
	}
}

// Download fetches and persists every resolved record. Exhausting retries on
// any document, or any other failure mid-loop, wipes the claim directory
// before returning ErrDownloadFailed; remaining documents are abandoned.
func (d *AutoDownloader) Download(ctx context.Context, sess ports.PortalSession, claimID string, records []domain.DocumentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if _, err := d.output.ClaimDir(claimID); err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range records {
		if err := d.downloadOne(ctx, sess, claimID, rec); err != nil {
			if cleanupErr := d.output.RemoveClaimDir(claimID); cleanupErr != nil {
				d.log.Error("claim dir cleanup failed", "claim", claimID, "error", cleanupErr)
			}
			return 0, domain.WrapError(domain.ErrDownloadFailed, fmt.Sprintf("download documents of claim %s", claimID), err)
		}
		written++
	}
	return written, nil
}

func (d *AutoDownloader) downloadOne(ctx context.Context, sess ports.PortalSession, claimID string, rec domain.DocumentRecord) error {
	if err := sleep(ctx, d.cfg.SettleDelay); err != nil {
		return err
	}

	call := func(callCtx context.Context) error {
		data, err := sess.FetchAuto(callCtx, rec)
		if err != nil {
			return err
		}
		return d.output.WriteDocument(claimID, rec.FileName(), data)
	}
	return d.executor.Execute(ctx, "portal.fetch_auto", call, classifyAttempt)
}

// classifyAttempt retries every failure short of context expiry: the download
// contract retries any non-200 up to the attempt budget.
func classifyAttempt(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	return resilience.ErrorClassification{
		Retryable:     true,
		RecordFailure: true,
	}
}

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
