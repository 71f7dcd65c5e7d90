// Package driver defines the browser capability the validation engine drives
// and its Playwright implementation.
package driver

import (
	"context"
	"time"

	"github.com/user/formcheck/internal/logging"
)

// Element is a handle to a located page element. Locating is lazy: the
// element is resolved when an action or read runs against it.
type Element interface {
	Selector() string
}

// Driver issues DOM actions and reads against one browser session. Calls are
// sequential; a Driver is never shared between goroutines.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Locate(ctx context.Context, selector string) (Element, error)

	// Type enters text key by key so per-keystroke validation fires
	Type(ctx context.Context, el Element, text string) error
	// Fill sets the whole value at once
	Fill(ctx context.Context, el Element, value string) error
	Clear(ctx context.Context, el Element) error
	// Press sends a single named key, e.g. "Backspace"
	Press(ctx context.Context, el Element, key string) error
	Click(ctx context.Context, el Element) error

	ReadValue(ctx context.Context, el Element) (string, error)
	ReadText(ctx context.Context, el Element) (string, error)
	// WaitVisible reports whether el becomes visible within timeout. A zero
	// timeout checks once. Not becoming visible is not an error.
	WaitVisible(ctx context.Context, el Element, timeout time.Duration) (bool, error)
	// WaitForText reports whether text is visible anywhere on the page
	// within timeout.
	WaitForText(ctx context.Context, text string, timeout time.Duration) (bool, error)
	Checked(ctx context.Context, el Element) (bool, error)

	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	// InterceptNextAlert arms a one-shot listener. The returned channel
	// receives the message of the next alert opened by the page.
	InterceptNextAlert(ctx context.Context) (<-chan string, error)

	Close() error
}

// Screenshotter is implemented by drivers that can capture the page
type Screenshotter interface {
	Screenshot(ctx context.Context, path string) error
}

// Factory opens independent driver sessions
type Factory interface {
	NewSession(ctx context.Context) (Driver, error)
}

// FactoryFunc adapts a function into a Factory
type FactoryFunc func(ctx context.Context) (Driver, error)

// NewSession calls f
func (f FactoryFunc) NewSession(ctx context.Context) (Driver, error) {
	return f(ctx)
}

// Viewport is the browser window size in pixels
type Viewport struct {
	Width  int
	Height int
}

// Options configures a browser session
type Options struct {
	Engine      string // chromium, firefox, webkit
	Headless    bool
	SlowMo      time.Duration
	Timeout     time.Duration // Default wait budget for every driver call
	Viewport    Viewport
	VideoDir    string // Empty disables video recording
	SkipInstall bool

	// IgnoreUncaughtExceptions drops script errors thrown by the page
	// instead of failing the next driver call with a PageScriptError.
	// It is scoped to the sessions created with these options.
	IgnoreUncaughtExceptions bool

	Logger *logging.Logger
}

// Selector is a plain Element carrying only its selector
type Selector string

// Selector returns s
func (s Selector) Selector() string { return string(s) }
