package insurer

import (
	"context"
	"errors"
	"fmt"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

type resolveResponse struct {
	D struct {
		Result string `json:"Result"`
	} `json:"d"`
}

// Resolve materializes a downloadable link for the record and derives its
// extension. Consecutive calls are throttled by the configured resolve
// interval. An invalid extension propagates as ErrInvalidExtension: every
// later filename depends on it, so it is fatal for the claim's whole batch.
func (s *Session) Resolve(ctx context.Context, claimID string, rec domain.DocumentRecord) (domain.DocumentRecord, error) {
	if err := s.resolveLimit.Wait(ctx); err != nil {
		return rec, err
	}

	payload := map[string]any{
		"codDocumento":              rec.TypeCode,
		"idOnBase":                  rec.StorageID,
		"pAqvGrd":                   false,
		"pCodigoClienteOperacional": s.client.cfg.ClientCode,
		"pMaterializar":             false,
		"pNumeroOcorrencia":         claimValue(claimID),
		"pUploadPerfil":             s.client.cfg.UploadProfile,
	}

	var resp resolveResponse
	call := func(callCtx context.Context) error {
		return s.postJSON(callCtx, s.client.cfg.UploadBaseURL+resolvePath, payload, &resp, "resolve")
	}
	if err := s.client.execute(ctx, "portal.resolve", call); err != nil {
		return rec, domain.WrapError(domain.ErrResolutionFailed, fmt.Sprintf("resolve document %d of claim %s", rec.StorageID, claimID), err)
	}
	if resp.D.Result == "" {
		return rec, domain.WrapError(domain.ErrResolutionFailed, fmt.Sprintf("resolve document %d of claim %s", rec.StorageID, claimID), errors.New("response missing d.Result"))
	}

	ext, err := domain.ClassifyExtension(resp.D.Result)
	if err != nil {
		return rec, err
	}
	rec.DownloadLink = resp.D.Result
	rec.Extension = ext
	return rec, nil
}
