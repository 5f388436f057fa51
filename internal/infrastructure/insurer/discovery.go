package insurer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

type autoDiscoveryResponse struct {
	D []autoDocumentDescriptor `json:"d"`
}

type autoDocumentDescriptor struct {
	Name      string `json:"NomeDocumento"`
	TypeCode  int64  `json:"CodigoTipoDocumento"`
	StorageID int64  `json:"IDOnbase"`
}

// DiscoverAuto enumerates the required documents of an AUTO claim. Records
// without a materialized storage id are dropped and per-name sequence numbers
// assigned over the eligible set, in response order.
func (s *Session) DiscoverAuto(ctx context.Context, claimID string) ([]domain.DocumentRecord, error) {
	payload := map[string]any{
		"pCodigoClienteOperacional": s.client.cfg.ClientCode,
		"pNumeroOcorrencia":         claimValue(claimID),
		"pUploadPerfil":             s.client.cfg.UploadProfile,
	}

	var resp autoDiscoveryResponse
	call := func(callCtx context.Context) error {
		return s.postJSON(callCtx, s.client.cfg.UploadBaseURL+discoverPath, payload, &resp, "discover_auto")
	}
	if err := s.client.execute(ctx, "portal.discover_auto", call); err != nil {
		return nil, domain.WrapError(domain.ErrDiscoveryFailed, fmt.Sprintf("discover documents for claim %s", claimID), err)
	}
	if resp.D == nil {
		return nil, domain.WrapError(domain.ErrDiscoveryFailed, fmt.Sprintf("discover documents for claim %s", claimID), errors.New("response missing field d"))
	}

	records := make([]domain.DocumentRecord, 0, len(resp.D))
	for _, d := range resp.D {
		records = append(records, domain.DocumentRecord{
			Name:      d.Name,
			TypeCode:  d.TypeCode,
			StorageID: d.StorageID,
		})
	}
	return domain.AssignSequences(domain.FilterEligible(records)), nil
}

type electricalGroup struct {
	Description  string                   `json:"descricao"`
	TypeCode     int64                    `json:"codigo"`
	SubDocuments *[]electricalSubDocument `json:"documentosOcorrencia"`
}

type electricalSubDocument struct {
	StorageID *int64 `json:"idOnbase"`
}

// DiscoverElectrical enumerates electrical-damage claim documents. Each group
// explodes into one record per sub-document; descriptions are stripped of
// forward slashes so they are usable as filename stems.
func (s *Session) DiscoverElectrical(ctx context.Context, claimID string) ([]domain.DocumentRecord, error) {
	url := fmt.Sprintf("%s/tipodocumento/solicitados/2/1400/2/%s/%s",
		s.client.cfg.ResidentialBaseURL, claimID, s.client.cfg.ClientCode)

	var groups []electricalGroup
	call := func(callCtx context.Context) error {
		return s.getJSON(callCtx, url, &groups, "discover_electrical")
	}
	if err := s.client.execute(ctx, "portal.discover_electrical", call); err != nil {
		return nil, domain.WrapError(domain.ErrDiscoveryFailed, fmt.Sprintf("discover electrical documents for claim %s", claimID), err)
	}

	var records []domain.DocumentRecord
	for _, g := range groups {
		if g.SubDocuments == nil {
			return nil, domain.WrapError(
				domain.ErrDiscoveryFailed,
				fmt.Sprintf("discover electrical documents for claim %s", claimID),
				errors.New("group missing field documentosOcorrencia"),
			)
		}
		description := strings.ReplaceAll(g.Description, "/", "")
		for _, sub := range *g.SubDocuments {
			rec := domain.DocumentRecord{
				Name:     description,
				TypeCode: g.TypeCode,
			}
			if sub.StorageID != nil {
				rec.StorageID = *sub.StorageID
			}
			records = append(records, rec)
		}
	}
	return domain.AssignSequences(domain.FilterEligible(records)), nil
}
