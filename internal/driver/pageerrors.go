package driver

import (
	stderrors "errors"
	"sync"

	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/logging"
)

// PageErrorGuard collects uncaught script errors thrown by the page. With
// ignore set they are logged and dropped; otherwise the next Check returns
// them as a PageScriptError.
type PageErrorGuard struct {
	mu      sync.Mutex
	ignore  bool
	logger  *logging.Logger
	pending []error
}

// NewPageErrorGuard creates a guard for one session
func NewPageErrorGuard(ignore bool, logger *logging.Logger) *PageErrorGuard {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PageErrorGuard{ignore: ignore, logger: logger}
}

// Record is called from the page error event
func (g *PageErrorGuard) Record(err error) {
	if err == nil {
		return
	}
	if g.ignore {
		g.logger.Debug("Ignoring uncaught page exception", logging.Error(err))
		return
	}

	g.mu.Lock()
	g.pending = append(g.pending, err)
	g.mu.Unlock()
	g.logger.Warn("Uncaught page exception", logging.Error(err))
}

// Check returns and clears any pending script errors
func (g *PageErrorGuard) Check(url string) error {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return errors.NewPageScriptError(url, stderrors.Join(pending...))
}
