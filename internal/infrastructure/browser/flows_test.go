package browser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

type driverFake struct {
	clickable map[string]bool
	calls     []string
	tab       int
}

func newDriverFake() *driverFake {
	return &driverFake{clickable: make(map[string]bool)}
}

func (d *driverFake) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *driverFake) Navigate(_ context.Context, url string) error {
	d.record("navigate %s", url)
	return nil
}

func (d *driverFake) SendKeys(_ context.Context, selector, text string) error {
	d.record("sendkeys %s=%s", selector, text)
	return nil
}

func (d *driverFake) Click(_ context.Context, selector string) error {
	d.record("click %s", selector)
	return nil
}

func (d *driverFake) WaitClickable(_ context.Context, selector string, _ time.Duration) error {
	if d.clickable[selector] {
		return nil
	}
	return domain.WrapError(domain.ErrElementTimeout, "wait clickable", fmt.Errorf("no element %s", selector))
}

func (d *driverFake) ScrollClick(_ context.Context, selector string) error {
	d.record("scrollclick %s", selector)
	return nil
}

func (d *driverFake) SwitchToTab(_ context.Context, index int) error {
	d.tab = index
	d.record("tab %d", index)
	return nil
}

func (d *driverFake) CloseCurrentTab(context.Context) error {
	d.record("closetab")
	return nil
}

func (d *driverFake) Quit(context.Context) error {
	d.record("quit")
	return nil
}

func slotSelector(i int) string {
	return fmt.Sprintf(documentSlotXPathTempl, i)
}

func TestDownloadDocumentsCountsClickedSlots(t *testing.T) {
	drv := newDriverFake()
	for i := 2; i <= 5; i++ {
		drv.clickable[slotSelector(i)] = true
	}

	flows := NewFlows(drv, "https://portal.example/login", FlowTiming{})
	n, err := flows.DownloadDocuments(context.Background())
	if err != nil {
		t.Fatalf("DownloadDocuments error: %v", err)
	}
	if n != 4 {
		t.Fatalf("downloaded = %d, want 4", n)
	}
	if drv.tab != 1 {
		t.Fatalf("expected scan to happen on tab 1, got %d", drv.tab)
	}
}

func TestDownloadDocumentsStopsAfterMissBudget(t *testing.T) {
	drv := newDriverFake()
	drv.clickable[slotSelector(2)] = true
	// Slot 10 is clickable but unreachable: misses on 3, 4 and 5 exhaust the
	// budget first.
	drv.clickable[slotSelector(10)] = true

	flows := NewFlows(drv, "https://portal.example/login", FlowTiming{})
	n, err := flows.DownloadDocuments(context.Background())
	if err != nil {
		t.Fatalf("DownloadDocuments error: %v", err)
	}
	if n != 1 {
		t.Fatalf("downloaded = %d, want 1", n)
	}
}

func TestDownloadDocumentsToleratesScatteredMisses(t *testing.T) {
	drv := newDriverFake()
	for i := 2; i <= 12; i++ {
		if i != 4 && i != 8 {
			drv.clickable[slotSelector(i)] = true
		}
	}

	flows := NewFlows(drv, "https://portal.example/login", FlowTiming{})
	n, err := flows.DownloadDocuments(context.Background())
	if err != nil {
		t.Fatalf("DownloadDocuments error: %v", err)
	}
	// Slots 2..12 minus two missing, then 13..19 all missing: the third miss
	// (slot 13) ends the scan.
	if n != 9 {
		t.Fatalf("downloaded = %d, want 9", n)
	}
}

func TestLoginFillsCredentialsAndSubmits(t *testing.T) {
	drv := newDriverFake()
	flows := NewFlows(drv, "https://portal.example/login", FlowTiming{})

	err := flows.Login(context.Background(), domain.Credentials{Login: "user", Secret: "pass"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	want := []string{
		"navigate https://portal.example/login",
		"sendkeys " + loginFieldXPath + "=user",
		"sendkeys " + secretFieldXPath + "=pass",
		"click " + loginSubmitXPath,
	}
	if len(drv.calls) != len(want) {
		t.Fatalf("calls = %v", drv.calls)
	}
	for i, w := range want {
		if drv.calls[i] != w {
			t.Fatalf("call %d = %q, want %q", i, drv.calls[i], w)
		}
	}
}

func TestExportBudgetReturnsToMainTab(t *testing.T) {
	drv := newDriverFake()
	flows := NewFlows(drv, "https://portal.example/login", FlowTiming{})

	if err := flows.ExportBudget(context.Background()); err != nil {
		t.Fatalf("ExportBudget error: %v", err)
	}
	if drv.tab != 0 {
		t.Fatalf("expected flow to finish on tab 0, got %d", drv.tab)
	}
}
