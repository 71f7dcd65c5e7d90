package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/runner"
)

// Export formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Options selects which files Export writes
type Options struct {
	Dir         string
	Formats     []string
	MetricsFile string
}

// ValidFormat reports whether name is a known export format
func ValidFormat(name string) bool {
	switch name {
	case FormatText, FormatJSON, FormatHTML:
		return true
	}
	return false
}

// Export writes report.json, report.html and the metrics textfile as
// selected and returns the written paths. Text goes to the terminal, not
// to a file.
func Export(rep *runner.SuiteReport, opts Options) ([]string, error) {
	var written []string

	needsDir := false
	for _, f := range opts.Formats {
		if !ValidFormat(f) {
			return nil, errors.NewInvalidConfigValueError("report.formats", f, "must be text, json or html")
		}
		if f != FormatText {
			needsDir = true
		}
	}
	if needsDir {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, errors.WrapError(err, fmt.Sprintf("Failed to create report directory %s", opts.Dir), errors.ExitIOError)
		}
	}

	for _, f := range opts.Formats {
		switch f {
		case FormatJSON:
			path := filepath.Join(opts.Dir, "report.json")
			if err := WriteJSON(rep, path); err != nil {
				return written, errors.WrapError(err, "Failed to export JSON report", errors.ExitIOError)
			}
			written = append(written, path)
		case FormatHTML:
			exporter, err := NewHTMLExporter()
			if err != nil {
				return written, errors.WrapError(err, "Failed to create HTML exporter", errors.ExitIOError)
			}
			path := filepath.Join(opts.Dir, "report.html")
			if err := exporter.Export(rep, path); err != nil {
				return written, errors.WrapError(err, "Failed to export HTML report", errors.ExitIOError)
			}
			written = append(written, path)
		}
	}

	if opts.MetricsFile != "" {
		if err := WriteMetrics(rep, opts.MetricsFile); err != nil {
			return written, errors.WrapError(err, "Failed to write metrics textfile", errors.ExitIOError)
		}
		written = append(written, opts.MetricsFile)
	}
	return written, nil
}
