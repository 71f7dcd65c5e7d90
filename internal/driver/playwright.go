package driver

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/logging"
)

// Install downloads the Playwright driver and the given browser engine
func Install(engine string) error {
	if engine == "" {
		engine = "chromium"
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
		return errors.NewDriverError("installing browsers", err)
	}
	return nil
}

// PlaywrightFactory owns one browser process and opens an isolated browser
// context per session.
type PlaywrightFactory struct {
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  *logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewPlaywrightFactory starts Playwright and launches the configured browser
func NewPlaywrightFactory(opts Options) (*PlaywrightFactory, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	if !opts.SkipInstall {
		if err := Install(opts.Engine); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// The driver may be missing even when browsers are cached
		_ = playwright.Install()
		pw, err = playwright.Run()
		if err != nil {
			return nil, errors.NewDriverError("starting playwright", err)
		}
	}

	var browserType playwright.BrowserType
	switch opts.Engine {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.NewDriverError("launching browser", err)
	}

	logger.Info("Browser launched",
		logging.String("engine", browserType.Name()),
		logging.Bool("headless", opts.Headless),
	)

	return &PlaywrightFactory{
		opts:    opts,
		pw:      pw,
		browser: browser,
		logger:  logger,
	}, nil
}

// NewSession opens a fresh browser context and page
func (f *PlaywrightFactory) NewSession(ctx context.Context) (Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, errors.NewDriverError("opening session", fmt.Errorf("factory closed"))
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  f.opts.Viewport.Width,
			Height: f.opts.Viewport.Height,
		},
	}
	if f.opts.VideoDir != "" {
		if err := os.MkdirAll(f.opts.VideoDir, 0755); err != nil {
			return nil, errors.WrapError(err, "failed to create video directory", errors.ExitIOError)
		}
		contextOpts.RecordVideo = &playwright.RecordVideo{Dir: f.opts.VideoDir}
	}

	bctx, err := f.browser.NewContext(contextOpts)
	if err != nil {
		return nil, errors.NewDriverError("creating browser context", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, errors.NewDriverError("creating page", err)
	}

	timeout := f.opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	d := &PlaywrightDriver{
		context: bctx,
		page:    page,
		timeout: timeout,
		guard:   NewPageErrorGuard(f.opts.IgnoreUncaughtExceptions, f.logger),
		logger:  f.logger,
	}
	page.OnPageError(d.guard.Record)
	page.OnDialog(d.handleDialog)

	return d, nil
}

// Close shuts the browser and the Playwright driver down
func (f *PlaywrightFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	if err := f.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := f.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}

// PlaywrightDriver is a Driver backed by one Playwright page
type PlaywrightDriver struct {
	context playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
	guard   *PageErrorGuard
	logger  *logging.Logger

	alertMu sync.Mutex
	alertCh chan string
}

type pwElement struct {
	selector string
	loc      playwright.Locator
}

func (e *pwElement) Selector() string { return e.selector }

func (d *PlaywrightDriver) locator(el Element) playwright.Locator {
	if pe, ok := el.(*pwElement); ok {
		return pe.loc
	}
	return d.page.Locator(el.Selector()).First()
}

// before runs ahead of every driver call
func (d *PlaywrightDriver) before(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.guard.Check(d.page.URL())
}

func (d *PlaywrightDriver) mapErr(op, selector string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, playwright.ErrTimeout) {
		return errors.NewTimeoutError(op, selector, d.timeout, err)
	}
	return errors.NewDriverError(op, fmt.Errorf("%s: %w", selector, err))
}

// handleDialog accepts every dialog so the page never blocks and hands the
// message to an armed interceptor.
func (d *PlaywrightDriver) handleDialog(dialog playwright.Dialog) {
	msg := dialog.Message()

	d.alertMu.Lock()
	ch := d.alertCh
	d.alertCh = nil
	d.alertMu.Unlock()

	if ch != nil {
		ch <- msg
	}
	d.logger.Debug("Dialog opened", logging.String("type", dialog.Type()), logging.String("message", msg))

	if err := dialog.Accept(); err != nil {
		d.logger.Warn("Failed to accept dialog", logging.Error(err))
	}
}

// Navigate loads url
func (d *PlaywrightDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Debug("Navigate", logging.String("url", url))
	if _, err := d.page.Goto(url); err != nil {
		return d.mapErr("navigate", url, err)
	}
	return d.guard.Check(url)
}

// Locate returns a lazy handle for the first element matching selector
func (d *PlaywrightDriver) Locate(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pwElement{selector: selector, loc: d.page.Locator(selector).First()}, nil
}

// Type enters text key by key
func (d *PlaywrightDriver) Type(ctx context.Context, el Element, text string) error {
	if err := d.before(ctx); err != nil {
		return err
	}
	return d.mapErr("type", el.Selector(), d.locator(el).PressSequentially(text))
}

// Fill sets the value at once
func (d *PlaywrightDriver) Fill(ctx context.Context, el Element, value string) error {
	if err := d.before(ctx); err != nil {
		return err
	}
	return d.mapErr("fill", el.Selector(), d.locator(el).Fill(value))
}

// Clear empties an input
func (d *PlaywrightDriver) Clear(ctx context.Context, el Element) error {
	if err := d.before(ctx); err != nil {
		return err
	}
	return d.mapErr("clear", el.Selector(), d.locator(el).Clear())
}

// Press sends one key
func (d *PlaywrightDriver) Press(ctx context.Context, el Element, key string) error {
	if err := d.before(ctx); err != nil {
		return err
	}
	return d.mapErr("press "+key, el.Selector(), d.locator(el).Press(key))
}

// Click clicks the element
func (d *PlaywrightDriver) Click(ctx context.Context, el Element) error {
	if err := d.before(ctx); err != nil {
		return err
	}
	return d.mapErr("click", el.Selector(), d.locator(el).Click())
}

// ReadValue returns the input value
func (d *PlaywrightDriver) ReadValue(ctx context.Context, el Element) (string, error) {
	if err := d.before(ctx); err != nil {
		return "", err
	}
	v, err := d.locator(el).InputValue()
	return v, d.mapErr("read value", el.Selector(), err)
}

// ReadText returns the element's text content
func (d *PlaywrightDriver) ReadText(ctx context.Context, el Element) (string, error) {
	if err := d.before(ctx); err != nil {
		return "", err
	}
	v, err := d.locator(el).TextContent()
	return v, d.mapErr("read text", el.Selector(), err)
}

// WaitVisible waits up to timeout for el to be visible
func (d *PlaywrightDriver) WaitVisible(ctx context.Context, el Element, timeout time.Duration) (bool, error) {
	if err := d.before(ctx); err != nil {
		return false, err
	}
	loc := d.locator(el)
	if timeout <= 0 {
		visible, err := loc.IsVisible()
		return visible, d.mapErr("check visible", el.Selector(), err)
	}
	return d.waitFor(loc, el.Selector(), timeout)
}

// WaitForText waits up to timeout for text to be visible on the page
func (d *PlaywrightDriver) WaitForText(ctx context.Context, text string, timeout time.Duration) (bool, error) {
	if err := d.before(ctx); err != nil {
		return false, err
	}
	return d.waitFor(d.page.GetByText(text).First(), "text="+text, timeout)
}

func (d *PlaywrightDriver) waitFor(loc playwright.Locator, selector string, timeout time.Duration) (bool, error) {
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	return false, d.mapErr("wait visible", selector, err)
}

// Checked reports whether a radio or checkbox is checked
func (d *PlaywrightDriver) Checked(ctx context.Context, el Element) (bool, error) {
	if err := d.before(ctx); err != nil {
		return false, err
	}
	checked, err := d.locator(el).IsChecked()
	return checked, d.mapErr("read checked", el.Selector(), err)
}

// CurrentURL returns the page URL
func (d *PlaywrightDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := d.before(ctx); err != nil {
		return "", err
	}
	return d.page.URL(), nil
}

// Title returns the document title
func (d *PlaywrightDriver) Title(ctx context.Context) (string, error) {
	if err := d.before(ctx); err != nil {
		return "", err
	}
	title, err := d.page.Title()
	return title, d.mapErr("read title", "title", err)
}

// InterceptNextAlert arms the dialog listener
func (d *PlaywrightDriver) InterceptNextAlert(ctx context.Context) (<-chan string, error) {
	if err := d.before(ctx); err != nil {
		return nil, err
	}
	ch := make(chan string, 1)
	d.alertMu.Lock()
	d.alertCh = ch
	d.alertMu.Unlock()
	return ch, nil
}

// Screenshot writes a full-page PNG to path
func (d *PlaywrightDriver) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapError(err, "failed to create screenshot directory", errors.ExitIOError)
	}
	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return d.mapErr("screenshot", path, err)
}

// Close closes the page's browser context, flushing any video
func (d *PlaywrightDriver) Close() error {
	if err := d.context.Close(); err != nil {
		return errors.NewDriverError("closing session", err)
	}
	return nil
}
