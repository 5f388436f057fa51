// Package browser drives the claim portal's single-page application. The
// Driver wraps a real Chrome instance behind the minimal automation
// capability the pipeline needs; Flows encodes the portal's page structure
// on top of it.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

type Config struct {
	Headless bool
	// Wait budget for a field to become present.
	FieldTimeout time.Duration
	// Wait budget for an element to become clickable.
	ClickTimeout time.Duration
	// Wait budget for an expected tab to appear.
	TabTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.FieldTimeout <= 0 {
		c.FieldTimeout = 10 * time.Second
	}
	if c.ClickTimeout <= 0 {
		c.ClickTimeout = 20 * time.Second
	}
	if c.TabTimeout <= 0 {
		c.TabTimeout = 10 * time.Second
	}
	return c
}

type tabHandle struct {
	id     target.ID
	ctx    context.Context
	cancel context.CancelFunc
}

// Driver owns one Chrome instance and its tabs. Tab indexes follow
// first-seen order, index 0 being the initial tab.
type Driver struct {
	cfg Config

	allocCancel context.CancelFunc
	browserCtx  context.Context

	tabs    []*tabHandle
	current int
}

// NewDriver launches Chrome with downloads routed to downloadDir.
func NewDriver(ctx context.Context, cfg Config, downloadDir string) (*Driver, error) {
	cfg = cfg.withDefaults()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	err := chromedp.Run(browserCtx,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	d := &Driver{
		cfg:         cfg,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
	}
	d.tabs = append(d.tabs, &tabHandle{
		id:     chromedp.FromContext(browserCtx).Target.TargetID,
		ctx:    browserCtx,
		cancel: browserCancel,
	})
	return d, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, d.cfg.ClickTimeout, "navigate", chromedp.Navigate(url))
}

func (d *Driver) SendKeys(ctx context.Context, selector, text string) error {
	return d.run(ctx, d.cfg.FieldTimeout, "fill field",
		chromedp.SendKeys(selector, text, chromedp.BySearch),
	)
}

func (d *Driver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, d.cfg.ClickTimeout, "click", chromedp.Click(selector, chromedp.BySearch))
}

func (d *Driver) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	return d.run(ctx, timeout, "wait clickable",
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.WaitEnabled(selector, chromedp.BySearch),
	)
}

func (d *Driver) ScrollClick(ctx context.Context, selector string) error {
	return d.run(ctx, d.cfg.ClickTimeout, "scroll and click",
		chromedp.ScrollIntoView(selector, chromedp.BySearch),
		chromedp.Click(selector, chromedp.BySearch),
	)
}

// SwitchToTab waits for the tab at the given first-seen index to exist and
// makes it current.
func (d *Driver) SwitchToTab(ctx context.Context, index int) error {
	deadline := time.Now().Add(d.cfg.TabTimeout)
	for {
		if err := d.refreshTabs(ctx); err != nil {
			return err
		}
		if index < len(d.tabs) {
			d.current = index
			return nil
		}
		if time.Now().After(deadline) {
			return domain.WrapError(domain.ErrElementTimeout, "switch tab",
				fmt.Errorf("tab %d not present after %s", index, d.cfg.TabTimeout))
		}
		if err := sleep(ctx, 200*time.Millisecond); err != nil {
			return err
		}
	}
}

// CloseCurrentTab closes the current tab and makes the last remaining tab
// current.
func (d *Driver) CloseCurrentTab(ctx context.Context) error {
	if len(d.tabs) <= 1 {
		return errors.New("refusing to close the last tab")
	}
	handle := d.tabs[d.current]
	if err := d.run(ctx, d.cfg.ClickTimeout, "close tab", page.Close()); err != nil {
		return err
	}
	handle.cancel()
	d.tabs = append(d.tabs[:d.current], d.tabs[d.current+1:]...)
	d.current = len(d.tabs) - 1
	return nil
}

func (d *Driver) Quit(context.Context) error {
	for _, t := range d.tabs {
		t.cancel()
	}
	d.allocCancel()
	return nil
}

// refreshTabs appends any page targets not seen before, preserving first-seen
// order so indexes behave like window handles.
func (d *Driver) refreshTabs(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	infosCtx, cancel := context.WithTimeout(d.browserCtx, d.cfg.TabTimeout)
	defer cancel()

	infos, err := chromedp.Targets(infosCtx)
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}

	known := make(map[target.ID]bool, len(d.tabs))
	for _, t := range d.tabs {
		known[t.id] = true
	}
	for _, info := range infos {
		if info.Type != "page" || known[info.TargetID] {
			continue
		}
		tabCtx, tabCancel := chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(info.TargetID))
		d.tabs = append(d.tabs, &tabHandle{id: info.TargetID, ctx: tabCtx, cancel: tabCancel})
	}
	return nil
}

func (d *Driver) run(ctx context.Context, timeout time.Duration, operation string, actions ...chromedp.Action) error {
	tab := d.tabs[d.current]
	runCtx := tab.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(domain.ErrElementTimeout, operation, err)
		}
		return err
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
