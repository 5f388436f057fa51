package insurer

import (
	"context"
	"errors"
	"fmt"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

// FetchAuto downloads a resolved AUTO document's bytes from the upload file
// store. Non-200 responses surface as *HTTPStatusError so the caller's retry
// policy can decide.
func (s *Session) FetchAuto(ctx context.Context, rec domain.DocumentRecord) ([]byte, error) {
	url := fmt.Sprintf("%s/file_upload/%d_api.%s", s.client.cfg.UploadBaseURL, rec.StorageID, rec.Extension)
	return s.getBytes(ctx, url, "fetch_auto")
}

type displayResponse struct {
	Message string `json:"message"`
}

// FetchElectrical asks the display endpoint for an indirect link, downloads
// the link's bytes and derives the extension from the link. Consecutive
// fetches are throttled by the configured electrical interval.
func (s *Session) FetchElectrical(ctx context.Context, claimID string, rec domain.DocumentRecord) ([]byte, string, error) {
	if err := s.electricalLimit.Wait(ctx); err != nil {
		return nil, "", err
	}

	url := fmt.Sprintf("%s/tipoDocOcorrencia/exibir/%s/%d/2/%d",
		s.client.cfg.ResidentialBaseURL, claimID, rec.TypeCode, rec.StorageID)

	var resp displayResponse
	if err := s.getJSON(ctx, url, &resp, "display_electrical"); err != nil {
		return nil, "", domain.WrapError(domain.ErrDownloadFailed, fmt.Sprintf("display document %d of claim %s", rec.StorageID, claimID), err)
	}
	if resp.Message == "" {
		return nil, "", domain.WrapError(domain.ErrDownloadFailed, fmt.Sprintf("display document %d of claim %s", rec.StorageID, claimID), errors.New("response missing download link"))
	}

	ext, err := domain.ClassifyExtension(resp.Message)
	if err != nil {
		return nil, "", err
	}

	data, err := s.getBytes(ctx, resp.Message, "fetch_electrical")
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrDownloadFailed, fmt.Sprintf("fetch document %d of claim %s", rec.StorageID, claimID), err)
	}
	return data, ext, nil
}
