package domain

import (
	"fmt"
	"time"
)

// Category selects which portal flow a batch runs through.
type Category string

const (
	CategoryAuto       Category = "AUTO"
	CategoryElectrical Category = "DANOS ELÉTRICOS"
)

// Driver selects how AUTO claims are processed. Electrical claims are always
// API-driven.
type Driver string

const (
	DriverBrowser Driver = "browser"
	DriverAPI     Driver = "api"
)

// Credentials authenticate against the portal. The secret is held in memory
// for the duration of a run and never persisted or logged.
type Credentials struct {
	Login  string
	Secret string
}

// DocumentRecord is one downloadable document discovered for a claim.
// StorageID zero means the document is not yet materialized in the document
// store; such records are discarded at discovery time.
type DocumentRecord struct {
	Name         string
	TypeCode     int64
	StorageID    int64
	Sequence     int
	Extension    string
	DownloadLink string
}

func (r DocumentRecord) Eligible() bool {
	return r.StorageID != 0
}

// FileName is the output name for the persisted document. Sequence plus Name
// is unique within a claim's output set.
func (r DocumentRecord) FileName() string {
	return fmt.Sprintf("%s_%d.%s", r.Name, r.Sequence, r.Extension)
}

// FilterEligible drops records without a materialized storage id, preserving
// order.
func FilterEligible(records []DocumentRecord) []DocumentRecord {
	out := make([]DocumentRecord, 0, len(records))
	for _, r := range records {
		if r.Eligible() {
			out = append(out, r)
		}
	}
	return out
}

// AssignSequences numbers records per document name, 1-based, in first-seen
// order.
func AssignSequences(records []DocumentRecord) []DocumentRecord {
	counts := make(map[string]int, len(records))
	out := make([]DocumentRecord, 0, len(records))
	for _, r := range records {
		counts[r.Name]++
		r.Sequence = counts[r.Name]
		out = append(out, r)
	}
	return out
}

// ClaimOutcome is the per-claim result collected by the orchestrator. A
// problem claim was isolated, not aborted on.
type ClaimOutcome struct {
	ClaimID             string `json:"claim_id"`
	DocumentsDownloaded int    `json:"documents_downloaded"`
	Problem             bool   `json:"problem"`
	Reason              string `json:"reason,omitempty"`
}

// RunReport aggregates one batch run, in input order.
type RunReport struct {
	RunID      string         `json:"run_id"`
	Category   Category       `json:"category"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Outcomes   []ClaimOutcome `json:"outcomes"`
}

func (r RunReport) ProblemClaims() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if o.Problem {
			ids = append(ids, o.ClaimID)
		}
	}
	return ids
}
