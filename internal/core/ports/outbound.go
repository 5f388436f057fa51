package ports

import (
	"context"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

// PortalGateway authenticates against the portal backend.
type PortalGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (PortalSession, error)
}

// PortalSession is an authenticated handle on the portal backend. A session
// is owned by one claim's processing at a time.
type PortalSession interface {
	// DiscoverAuto enumerates the required documents of an AUTO claim.
	// Ineligible records (no storage id) are already dropped and sequence
	// numbers assigned.
	DiscoverAuto(ctx context.Context, claimID string) ([]domain.DocumentRecord, error)

	// DiscoverElectrical enumerates the documents of an electrical-damage
	// claim, one record per sub-document.
	DiscoverElectrical(ctx context.Context, claimID string) ([]domain.DocumentRecord, error)

	// Resolve materializes a download link for the record and derives its
	// extension.
	Resolve(ctx context.Context, claimID string, rec domain.DocumentRecord) (domain.DocumentRecord, error)

	// FetchAuto downloads a resolved AUTO document's bytes.
	FetchAuto(ctx context.Context, rec domain.DocumentRecord) ([]byte, error)

	// FetchElectrical obtains the indirect link for an electrical document
	// and downloads its bytes, returning the extension derived from the link.
	FetchElectrical(ctx context.Context, claimID string, rec domain.DocumentRecord) ([]byte, string, error)

	Close()
}

// DocumentDownloader persists a claim's documents to its output directory.
// Implementations differ in retry and failure policy per claim category.
type DocumentDownloader interface {
	Download(ctx context.Context, sess PortalSession, claimID string, records []domain.DocumentRecord) (int, error)
}

// OutputStore manages per-claim output directories.
type OutputStore interface {
	ClaimDir(claimID string) (string, error)
	WriteDocument(claimID, filename string, data []byte) error
	RemoveClaimDir(claimID string) error
}

// BrowserDriver is the minimal automation capability the browser-driven flow
// needs. Selectors are XPath expressions. Waits are bounded by the driver's
// configured timeouts unless an explicit one is given.
type BrowserDriver interface {
	Navigate(ctx context.Context, url string) error
	SendKeys(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	WaitClickable(ctx context.Context, selector string, timeout time.Duration) error
	ScrollClick(ctx context.Context, selector string) error
	SwitchToTab(ctx context.Context, index int) error
	CloseCurrentTab(ctx context.Context) error
	Quit(ctx context.Context) error
}

// BrowserPilot opens a browser whose downloads land in the given directory.
type BrowserPilot interface {
	Open(ctx context.Context, downloadDir string) (BrowserFlow, error)
}

// BrowserFlow drives the claim portal UI for a single claim. The flow owns
// the underlying browser until Quit.
type BrowserFlow interface {
	Login(ctx context.Context, creds domain.Credentials) error
	LocateClaim(ctx context.Context, claimID string) error
	ExportBudget(ctx context.Context) error
	// DownloadDocuments scans the documents panel and clicks every present
	// slot; the browser itself persists the files. Returns the number of
	// triggered downloads.
	DownloadDocuments(ctx context.Context) (int, error)
	Quit(ctx context.Context) error
}

// ClaimSheetReader reads claim numbers from an operator-supplied spreadsheet.
type ClaimSheetReader interface {
	ReadClaims(path string) ([]string, error)
}

// ProgressReporter receives per-claim status lines and the final report.
type ProgressReporter interface {
	ClaimStarted(claimID string)
	ClaimStage(claimID, stage string)
	ClaimFinished(outcome domain.ClaimOutcome)
	BatchFinished(report domain.RunReport)
}

// RunStore persists finished run reports.
type RunStore interface {
	SaveRun(ctx context.Context, report domain.RunReport) error
}
