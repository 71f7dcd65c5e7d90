package handlers

import (
	"context"
	"path/filepath"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/logging"
)

// Handler is the interface that all handlers must implement
type Handler interface {
	// Handle executes the handler logic
	Handle(ctx context.Context) error
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	Config config.BaseConfig
	Logger *logging.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(cfg config.BaseConfig, logger *logging.Logger) *BaseHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BaseHandler{
		Config: cfg,
		Logger: logger,
	}
}

// ResolvePath anchors a relative path at the work directory
func (h *BaseHandler) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	workDir := h.Config.WorkDir
	if workDir == "" {
		workDir = "."
	}
	return filepath.Join(workDir, path)
}
