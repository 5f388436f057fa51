package ports

import (
	"context"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

// RunRequest describes one batch run as supplied by the operator surface.
type RunRequest struct {
	Credentials   domain.Credentials
	Category      domain.Category
	Claims        []string
	Driver        domain.Driver
	IncludeBudget bool
}

// BatchRunner processes a batch of claims sequentially and reports per-claim
// outcomes. A failing claim never aborts the batch.
type BatchRunner interface {
	Run(ctx context.Context, req RunRequest) (domain.RunReport, error)
}
