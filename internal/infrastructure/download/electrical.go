package download

import (
	"context"
	"log/slog"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

type ElectricalConfig struct {
	// Delay after every document attempt, success or failure.
	AttemptDelay time.Duration
}

type ElectricalDownloader struct {
	output ports.OutputStore
	cfg    ElectricalConfig
	log    *slog.Logger
}

func NewElectricalDownloader(output ports.OutputStore, cfg ElectricalConfig, log *slog.Logger) *ElectricalDownloader {
	return &ElectricalDownloader{output: output, cfg: cfg, log: log}
}

// Download fetches each document and persists it under the claim directory.
// Failures are logged and skipped per document; the claim keeps whatever was
// written. This is deliberately looser than the AUTO policy and does not
// feed the claim-level problem flag.
func (d *ElectricalDownloader) Download(ctx context.Context, sess ports.PortalSession, claimID string, records []domain.DocumentRecord) (int, error) {
	written := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := d.downloadOne(ctx, sess, claimID, rec); err != nil {
			d.log.Warn("electrical document skipped",
				"claim", claimID,
				"document", rec.Name,
				"sequence", rec.Sequence,
				"error", err,
			)
		} else {
			written++
		}
		if err := sleep(ctx, d.cfg.AttemptDelay); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (d *ElectricalDownloader) downloadOne(ctx context.Context, sess ports.PortalSession, claimID string, rec domain.DocumentRecord) error {
	data, ext, err := sess.FetchElectrical(ctx, claimID, rec)
	if err != nil {
		return err
	}
	rec.Extension = ext
	return d.output.WriteDocument(claimID, rec.FileName(), data)
}
