package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/formcheck/internal/driver"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/form"
	"github.com/user/formcheck/internal/logging"
)

type elementKind int

const (
	kindInput elementKind = iota
	kindRadio
	kindSubmit
	kindReset
	kindLink
	kindText
)

type element struct {
	kind           elementKind
	group          string
	value          string
	maxLength      int
	checked        bool
	defaultChecked bool
	text           string
	visible        bool
	validate       func(string) string
	errorSel       string
	onClick        func(ctx context.Context) error
}

type page struct {
	url      string
	title    string
	order    []string
	elements map[string]*element
}

func newPage(url, title string) *page {
	return &page{url: url, title: title, elements: make(map[string]*element)}
}

func (p *page) add(selector string, el *element) *element {
	p.order = append(p.order, selector)
	p.elements[selector] = el
	return el
}

func (p *page) text(selector, text string) {
	p.add(selector, &element{kind: kindText, text: text, visible: true})
}

// errorSlot adds a hidden message element
func (p *page) errorSlot(selector string) {
	p.add(selector, &element{kind: kindText})
}

// FakeOption configures a FakeDriver
type FakeOption func(*FakeDriver)

// WithIgnoreUncaught sets the page-error policy of the session
func WithIgnoreUncaught(ignore bool) FakeOption {
	return func(d *FakeDriver) { d.guard = driver.NewPageErrorGuard(ignore, d.logger) }
}

// WithFakeTimeout sets the budget reported in timeout errors
func WithFakeTimeout(timeout time.Duration) FakeOption {
	return func(d *FakeDriver) { d.timeout = timeout }
}

// FakeDriver is a driver.Driver over a simulated Guru99 site. State changes
// happen synchronously, so waits resolve immediately.
type FakeDriver struct {
	site    *Site
	page    *page
	timeout time.Duration
	guard   *driver.PageErrorGuard
	logger  *logging.Logger

	loggedIn string
	alert    chan string

	mu          sync.Mutex
	actions     []string
	alerts      []string
	screenshots []string
	failures    map[string]error
	closed      bool
}

// NewFakeDriver opens a session on site, starting on a blank page
func NewFakeDriver(site *Site, opts ...FakeOption) *FakeDriver {
	d := &FakeDriver{
		site:     site,
		page:     newPage("about:blank", ""),
		timeout:  time.Second,
		logger:   logging.NewNopLogger(),
		failures: make(map[string]error),
	}
	d.guard = driver.NewPageErrorGuard(true, d.logger)
	for _, opt := range opts {
		opt(d)
	}

	site.mu.Lock()
	site.sessions++
	site.mu.Unlock()
	return d
}

// FailNext makes the next call of op ("click", "type", ...) return err
func (d *FakeDriver) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = err
}

// InjectScriptError simulates an uncaught exception thrown by the page
func (d *FakeDriver) InjectScriptError(err error) {
	d.guard.Record(err)
}

// Actions returns the action log, e.g. "click input[type=\"reset\"]"
func (d *FakeDriver) Actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

// UnhandledAlerts returns alerts opened while no interceptor was armed
func (d *FakeDriver) UnhandledAlerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

// Screenshots returns the paths passed to Screenshot
func (d *FakeDriver) Screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.screenshots...)
}

// Closed reports whether Close was called
func (d *FakeDriver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *FakeDriver) record(op, selector, arg string) error {
	d.mu.Lock()
	entry := op + " " + selector
	if arg != "" {
		entry += fmt.Sprintf(" %q", arg)
	}
	d.actions = append(d.actions, entry)
	err := d.failures[op]
	delete(d.failures, op)
	d.mu.Unlock()
	return err
}

func (d *FakeDriver) before(ctx context.Context, op, selector, arg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Closed() {
		return errors.NewDriverError(op, fmt.Errorf("session closed"))
	}
	if err := d.guard.Check(d.page.url); err != nil {
		return err
	}
	return d.record(op, selector, arg)
}

// find resolves a selector the way an auto-waiting action would: a missing
// element times out.
func (d *FakeDriver) find(op string, el driver.Element) (*element, error) {
	e, ok := d.page.elements[el.Selector()]
	if !ok || !e.visible {
		return nil, errors.NewTimeoutError(op, el.Selector(), d.timeout, nil)
	}
	return e, nil
}

func (d *FakeDriver) revalidate(e *element) {
	if e.validate == nil {
		return
	}
	msg := e.validate(e.value)
	if slot, ok := d.page.elements[e.errorSel]; ok {
		slot.text = msg
		slot.visible = msg != ""
	}
}

func (d *FakeDriver) openAlert(msg string) {
	if d.site.getQuirks().NoAlerts {
		return
	}
	if d.alert != nil {
		d.alert <- msg
		d.alert = nil
		return
	}
	d.mu.Lock()
	d.alerts = append(d.alerts, msg)
	d.mu.Unlock()
}

func (d *FakeDriver) load(p *page) {
	d.page = p
	if err := d.site.getQuirks().ScriptErrorOnLoad; err != nil {
		d.guard.Record(err)
	}
}

// Navigate loads url
func (d *FakeDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.record("navigate", url, ""); err != nil {
		return err
	}

	s := d.site
	switch strings.TrimRight(url, "/") {
	case strings.TrimRight(s.SignupURL, "/"):
		d.load(d.signupPage())
	case s.BaseURL, s.BaseURL + "/index.php":
		d.load(d.loginPage())
	case strings.TrimSuffix(s.ManagerURL(), "/"):
		if d.loggedIn == "" {
			d.load(d.loginPage())
		} else {
			d.load(d.managerPage())
		}
	case s.AddCustomerURL():
		if d.loggedIn == "" {
			d.load(d.loginPage())
		} else {
			d.load(d.addCustomerPage())
		}
	default:
		d.load(newPage(url, "404 Not Found"))
	}
	return d.guard.Check(url)
}

// Locate returns a lazy selector handle
func (d *FakeDriver) Locate(ctx context.Context, selector string) (driver.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return driver.Selector(selector), nil
}

// Type appends text key by key, honouring maxlength and running keyup
// validation after every key
func (d *FakeDriver) Type(ctx context.Context, el driver.Element, text string) error {
	if err := d.before(ctx, "type", el.Selector(), text); err != nil {
		return err
	}
	e, err := d.find("type", el)
	if err != nil {
		return err
	}
	ignoreMax := d.site.getQuirks().IgnoreMaxLength
	for _, r := range text {
		if !ignoreMax && e.maxLength > 0 && form.InputLength(e.value+string(r)) > e.maxLength {
			continue
		}
		e.value += string(r)
		d.revalidate(e)
	}
	return nil
}

// Fill sets the value and validates once
func (d *FakeDriver) Fill(ctx context.Context, el driver.Element, value string) error {
	if err := d.before(ctx, "fill", el.Selector(), value); err != nil {
		return err
	}
	e, err := d.find("fill", el)
	if err != nil {
		return err
	}
	if e.maxLength > 0 && !d.site.getQuirks().IgnoreMaxLength {
		value = form.TruncateInput(value, e.maxLength)
	}
	e.value = value
	d.revalidate(e)
	return nil
}

// Clear empties the value without firing keyup
func (d *FakeDriver) Clear(ctx context.Context, el driver.Element) error {
	if err := d.before(ctx, "clear", el.Selector(), ""); err != nil {
		return err
	}
	e, err := d.find("clear", el)
	if err != nil {
		return err
	}
	e.value = ""
	return nil
}

// Press handles Backspace; other keys only fire keyup
func (d *FakeDriver) Press(ctx context.Context, el driver.Element, key string) error {
	if err := d.before(ctx, "press", el.Selector(), key); err != nil {
		return err
	}
	e, err := d.find("press", el)
	if err != nil {
		return err
	}
	if key == "Backspace" && e.value != "" {
		r := []rune(e.value)
		e.value = string(r[:len(r)-1])
	}
	d.revalidate(e)
	return nil
}

// Click activates buttons, links and radios
func (d *FakeDriver) Click(ctx context.Context, el driver.Element) error {
	if err := d.before(ctx, "click", el.Selector(), ""); err != nil {
		return err
	}
	e, err := d.find("click", el)
	if err != nil {
		return err
	}
	switch e.kind {
	case kindRadio:
		for _, other := range d.page.elements {
			if other.kind == kindRadio && other.group == e.group {
				other.checked = false
			}
		}
		e.checked = true
	case kindReset:
		for _, other := range d.page.elements {
			switch other.kind {
			case kindInput:
				other.value = ""
			case kindRadio:
				other.checked = other.defaultChecked
			}
		}
		for _, other := range d.page.elements {
			if other.validate != nil {
				if slot, ok := d.page.elements[other.errorSel]; ok {
					slot.text, slot.visible = "", false
				}
			}
		}
	}
	if e.onClick != nil {
		return e.onClick(ctx)
	}
	return nil
}

// ReadValue returns an input's value
func (d *FakeDriver) ReadValue(ctx context.Context, el driver.Element) (string, error) {
	if err := d.before(ctx, "read-value", el.Selector(), ""); err != nil {
		return "", err
	}
	e, err := d.find("read value", el)
	if err != nil {
		return "", err
	}
	return e.value, nil
}

// ReadText returns an element's text, hidden or not
func (d *FakeDriver) ReadText(ctx context.Context, el driver.Element) (string, error) {
	if err := d.before(ctx, "read-text", el.Selector(), ""); err != nil {
		return "", err
	}
	e, ok := d.page.elements[el.Selector()]
	if !ok {
		return "", errors.NewTimeoutError("read text", el.Selector(), d.timeout, nil)
	}
	return e.text, nil
}

// WaitVisible reports current visibility
func (d *FakeDriver) WaitVisible(ctx context.Context, el driver.Element, timeout time.Duration) (bool, error) {
	if err := d.before(ctx, "wait-visible", el.Selector(), ""); err != nil {
		return false, err
	}
	e, ok := d.page.elements[el.Selector()]
	return ok && e.visible, nil
}

// WaitForText looks for text in any visible text element
func (d *FakeDriver) WaitForText(ctx context.Context, text string, timeout time.Duration) (bool, error) {
	if err := d.before(ctx, "wait-text", text, ""); err != nil {
		return false, err
	}
	for _, sel := range d.page.order {
		e := d.page.elements[sel]
		if e.visible && strings.Contains(e.text, text) {
			return true, nil
		}
	}
	return false, nil
}

// Checked reports a radio's state
func (d *FakeDriver) Checked(ctx context.Context, el driver.Element) (bool, error) {
	if err := d.before(ctx, "checked", el.Selector(), ""); err != nil {
		return false, err
	}
	e, err := d.find("read checked", el)
	if err != nil {
		return false, err
	}
	return e.checked, nil
}

// CurrentURL returns the page URL
func (d *FakeDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.url, nil
}

// Title returns the page title
func (d *FakeDriver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.title, nil
}

// InterceptNextAlert arms a one-shot alert listener
func (d *FakeDriver) InterceptNextAlert(ctx context.Context) (<-chan string, error) {
	if err := d.before(ctx, "intercept-alert", "", ""); err != nil {
		return nil, err
	}
	ch := make(chan string, 1)
	d.alert = ch
	return ch, nil
}

// Screenshot records the requested path
func (d *FakeDriver) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.screenshots = append(d.screenshots, path)
	d.mu.Unlock()
	return nil
}

// Close ends the session
func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

var _ driver.Driver = (*FakeDriver)(nil)
var _ driver.Screenshotter = (*FakeDriver)(nil)
