package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
	"github.com/vtavares/claimfetch/internal/core/ports"
)

// Structural locators tied to the portal's current markup. Expected to break
// if the target application's presentation changes.
const (
	loginFieldXPath  = "/html/body/app-root/app-login-prestador/div[2]/div/div/div[2]/div[2]/div/div[1]/input"
	secretFieldXPath = "/html/body/app-root/app-login-prestador/div[2]/div/div/div[2]/div[2]/div/div[2]/input"
	loginSubmitXPath = "/html/body/app-root/app-login-prestador/div[2]/div/div/div[2]/div[2]/div/div[3]/input"

	claimSearchFieldXPath  = `//*[@id="pesquisa"]`
	claimSearchSubmitXPath = "/html/body/app-root/app-pesquisa/div[2]/div[3]/div[2]/button[1]"

	footerBudgetXPath      = "/html/body/app-root/app-ressarcimento/app-footer/footer/button[4]"
	budgetReportLinkXPath  = `//*[@id="budget_report"]/div/div[2]/a/center`
	budgetPDFExportXPath   = `//*[@id="btn_pdf_report"]`
	photosMenuXPath        = `//*[@id="photos_menu"]`
	photosSelectAllXPath   = `//*[@id="budgeting-photos-content"]/div[1]/div[2]/div/label`
	photosPrintXPath       = `//*[@id="budgeting-photos-print"]/div/a[2]`
	footerDocumentsXPath   = "/html/body/app-root/app-ressarcimento/app-footer/footer/button[6]"
	documentSlotXPathTempl = `//*[@id="documento-necessario"]/div[%d]/div[2]/div/div`

	// Documents panel slot positions scanned for downloadable rows.
	firstDocumentSlot = 2
	lastDocumentSlot  = 19
	// Consecutive misses tolerated before the scan decides no more documents
	// are present.
	slotMissBudget = 2
)

type FlowTiming struct {
	BudgetOpenSettle   time.Duration
	BudgetTabSettle    time.Duration
	BudgetExportSettle time.Duration
	DocumentsSettle    time.Duration
	SlotDelay          time.Duration
	SlotTimeout        time.Duration
	FinishSettle       time.Duration
}

func DefaultFlowTiming() FlowTiming {
	return FlowTiming{
		BudgetOpenSettle:   7 * time.Second,
		BudgetTabSettle:    5 * time.Second,
		BudgetExportSettle: 8 * time.Second,
		DocumentsSettle:    10 * time.Second,
		SlotDelay:          3 * time.Second,
		SlotTimeout:        10 * time.Second,
		FinishSettle:       2 * time.Second,
	}
}

// Flows drives the portal pages for a single claim over a BrowserDriver.
type Flows struct {
	drv      ports.BrowserDriver
	loginURL string
	timing   FlowTiming
}

func NewFlows(drv ports.BrowserDriver, loginURL string, timing FlowTiming) *Flows {
	return &Flows{drv: drv, loginURL: loginURL, timing: timing}
}

func (f *Flows) Login(ctx context.Context, creds domain.Credentials) error {
	if err := f.drv.Navigate(ctx, f.loginURL); err != nil {
		return err
	}
	if err := f.drv.SendKeys(ctx, loginFieldXPath, creds.Login); err != nil {
		return err
	}
	if err := f.drv.SendKeys(ctx, secretFieldXPath, creds.Secret); err != nil {
		return err
	}
	return f.drv.Click(ctx, loginSubmitXPath)
}

func (f *Flows) LocateClaim(ctx context.Context, claimID string) error {
	if err := f.drv.SendKeys(ctx, claimSearchFieldXPath, claimID); err != nil {
		return err
	}
	return f.drv.Click(ctx, claimSearchSubmitXPath)
}

// ExportBudget walks the budget report and photos print flows, each in its
// own tab, and returns to the main tab.
func (f *Flows) ExportBudget(ctx context.Context) error {
	if err := sleep(ctx, f.timing.BudgetOpenSettle); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, footerBudgetXPath); err != nil {
		return err
	}
	if err := sleep(ctx, f.timing.BudgetTabSettle); err != nil {
		return err
	}
	if err := f.drv.SwitchToTab(ctx, 1); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, budgetReportLinkXPath); err != nil {
		return err
	}
	if err := f.drv.SwitchToTab(ctx, 2); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, budgetPDFExportXPath); err != nil {
		return err
	}
	if err := sleep(ctx, f.timing.BudgetExportSettle); err != nil {
		return err
	}
	if err := f.drv.CloseCurrentTab(ctx); err != nil {
		return err
	}
	if err := f.drv.SwitchToTab(ctx, 1); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, photosMenuXPath); err != nil {
		return err
	}
	if err := sleep(ctx, f.timing.BudgetTabSettle); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, photosSelectAllXPath); err != nil {
		return err
	}
	if err := f.drv.Click(ctx, photosPrintXPath); err != nil {
		return err
	}
	if err := sleep(ctx, f.timing.BudgetExportSettle); err != nil {
		return err
	}
	if err := f.drv.CloseCurrentTab(ctx); err != nil {
		return err
	}
	return f.drv.SwitchToTab(ctx, 0)
}

// DownloadDocuments opens the documents panel in its tab and clicks every
// present slot; the browser persists each file itself, so there is no
// per-document filename control here. Slots that never become clickable
// count as misses, and the scan stops once the miss budget is exceeded —
// that is "no more documents", not an error.
func (f *Flows) DownloadDocuments(ctx context.Context) (int, error) {
	if err := f.drv.Click(ctx, footerDocumentsXPath); err != nil {
		return 0, err
	}
	if err := f.drv.SwitchToTab(ctx, 1); err != nil {
		return 0, err
	}
	if err := sleep(ctx, f.timing.DocumentsSettle); err != nil {
		return 0, err
	}

	downloaded := 0
	misses := 0
	for slot := firstDocumentSlot; slot <= lastDocumentSlot; slot++ {
		if err := sleep(ctx, f.timing.SlotDelay); err != nil {
			return downloaded, err
		}
		selector := fmt.Sprintf(documentSlotXPathTempl, slot)
		if err := f.drv.WaitClickable(ctx, selector, f.timing.SlotTimeout); err != nil {
			misses++
			if misses > slotMissBudget {
				break
			}
			continue
		}
		if err := f.drv.ScrollClick(ctx, selector); err != nil {
			misses++
			if misses > slotMissBudget {
				break
			}
			continue
		}
		downloaded++
	}

	if err := sleep(ctx, f.timing.FinishSettle); err != nil {
		return downloaded, err
	}
	return downloaded, nil
}

func (f *Flows) Quit(ctx context.Context) error {
	return f.drv.Quit(ctx)
}

// Pilot opens browsers pre-configured for a claim's download directory.
type Pilot struct {
	cfg      Config
	loginURL string
	timing   FlowTiming
}

func NewPilot(cfg Config, loginURL string, timing FlowTiming) *Pilot {
	return &Pilot{cfg: cfg, loginURL: loginURL, timing: timing}
}

func (p *Pilot) Open(ctx context.Context, downloadDir string) (ports.BrowserFlow, error) {
	drv, err := NewDriver(ctx, p.cfg, downloadDir)
	if err != nil {
		return nil, err
	}
	return NewFlows(drv, p.loginURL, p.timing), nil
}
