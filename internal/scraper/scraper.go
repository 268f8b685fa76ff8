// Package scraper drives a headless browser session against the court's
// case-status form. Each lookup launches its own isolated browser process
// and tears it down before returning, on every exit path.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"courtlookup/internal/config"
	"courtlookup/internal/extractor"
	"courtlookup/pkg/logger"
)

// ErrBrowserInit is returned when the browser process cannot be launched or
// connected to; its text is the client-visible message.
var ErrBrowserInit = errors.New("Failed to initialize browser")

// Form controls on the case-status page.
const (
	caseTypeSelector   = `select[name="case_type"]`
	caseNumberSelector = `input[name="case_no"]`
	filingYearSelector = `input[name="case_year"]`
	captchaSelector    = `[name="captcha"]`
	submitSelector     = `[name="Submit"]`
)

const lookupPath = "/case_status.asp"

// Client performs case lookups against the court website.
type Client struct {
	cfg    *config.Config
	logger *logger.Logger
	base   *url.URL
}

// New creates a lookup client. No browser is started until Lookup is
// called.
func New(cfg *config.Config, logger *logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.CourtBaseURL)
	if err != nil || base.Hostname() == "" {
		return nil, fmt.Errorf("invalid court base URL %q", cfg.CourtBaseURL)
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		base:   base,
	}, nil
}

// Lookup runs one end-to-end automation sequence: open the lookup page,
// fill and submit the form, wait for the results to render, and hand the
// captured HTML to the extractor. The raw HTML captured so far is returned
// alongside any error so failed attempts can still be logged.
func (c *Client) Lookup(ctx context.Context, caseType, caseNumber, filingYear string) (details *extractor.CaseDetails, rawHTML string, err error) {
	if strings.TrimSpace(caseType) == "" ||
		strings.TrimSpace(caseNumber) == "" ||
		strings.TrimSpace(filingYear) == "" {
		return nil, "", fmt.Errorf("case type, case number and filing year are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ScraperTimeout)
	defer cancel()

	// rod element helpers panic on protocol-level failures; convert those
	// to a value-level error so the teardown defers still run.
	defer func() {
		if r := recover(); r != nil {
			details = nil
			err = fmt.Errorf("browser automation failed: %v", r)
		}
	}()

	l := launcher.New().
		Headless(c.cfg.HeadlessMode).
		Set("user-agent", c.cfg.UserAgent).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu")

	if c.cfg.BrowserPath != "" {
		l = l.Bin(c.cfg.BrowserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		c.logger.Error("Browser launch failed", "error", err)
		return nil, "", ErrBrowserInit
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		c.logger.Error("Browser connect failed", "error", err)
		l.Kill()
		return nil, "", ErrBrowserInit
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			c.logger.Warn("Failed to close browser", "error", cerr)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, "", fmt.Errorf("failed to set viewport: %w", err)
	}

	lookupURL := c.base.JoinPath(lookupPath).String()
	c.logger.Info("Navigating to court website", "url", lookupURL)
	if err := page.Navigate(lookupURL); err != nil {
		return nil, "", fmt.Errorf("failed to navigate: %w", err)
	}

	// The case-type control is the readiness marker for the form.
	waitCtx, waitCancel := context.WithTimeout(ctx, c.cfg.ElementWaitTimeout)
	caseTypeEl, err := page.Context(waitCtx).Element(caseTypeSelector)
	waitCancel()
	if err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("timed out waiting for case type control: %w", err)
	}

	c.logger.Debug("Selecting case type", "case_type", caseType)
	if err := caseTypeEl.Select([]string{caseType}, true, rod.SelectorTypeText); err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("failed to select case type %q: %w", caseType, err)
	}

	if err := c.fillField(page, caseNumberSelector, caseNumber); err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("failed to enter case number: %w", err)
	}
	if err := c.fillField(page, filingYearSelector, filingYear); err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("failed to enter filing year: %w", err)
	}

	// CAPTCHA solving is out of scope. Surface its presence in the logs
	// rather than hiding it; the lookup proceeds and may come back empty.
	if has, _, herr := page.Has(captchaSelector); herr == nil && has {
		c.logger.Warn("CAPTCHA control present on lookup page; proceeding without solving",
			"case_type", caseType,
			"case_number", caseNumber,
		)
	}

	submitBtn, err := page.Element(submitSelector)
	if err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("submit control not found: %w", err)
	}
	c.logger.Debug("Submitting lookup form")
	if err := submitBtn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		rawHTML = c.captureHTML(page)
		return nil, rawHTML, fmt.Errorf("failed to submit form: %w", err)
	}

	// Bounded render wait: poll for DOM stability instead of sleeping a
	// fixed interval. Expiry is not a failure; whatever has rendered by
	// then is what gets extracted.
	renderCtx, renderCancel := context.WithTimeout(ctx, c.cfg.RenderWait)
	if werr := page.Context(renderCtx).WaitDOMStable(300*time.Millisecond, 0); werr != nil {
		c.logger.Debug("Render wait expired before DOM stabilized", "error", werr)
	}
	renderCancel()

	rawHTML, err = page.HTML()
	if err != nil {
		return nil, "", fmt.Errorf("failed to capture page content: %w", err)
	}

	details, err = extractor.Extract(rawHTML, c.base)
	if err != nil {
		return nil, rawHTML, err
	}

	c.logger.Info("Lookup completed",
		"case_type", caseType,
		"case_number", caseNumber,
		"filing_year", filingYear,
		"parties", len(details.Parties),
		"orders", len(details.Orders),
	)
	return details, rawHTML, nil
}

// fillField clears a text input and types the given value.
func (c *Client) fillField(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

// captureHTML grabs whatever the page holds for failure logging; errors
// here are swallowed since the lookup is already failing.
func (c *Client) captureHTML(page *rod.Page) string {
	htmlContent, err := page.HTML()
	if err != nil {
		return ""
	}
	return htmlContent
}
