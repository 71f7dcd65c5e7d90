package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/user/formcheck/internal/runner"
)

// JSONDocument is the report.json layout
type JSONDocument struct {
	Metadata  Metadata                 `json:"metadata"`
	Summary   Summary                  `json:"summary"`
	Workflows []*runner.WorkflowReport `json:"workflows"`
}

// Metadata describes the run that produced the document
type Metadata struct {
	RunID       string    `json:"run_id"`
	BaseURL     string    `json:"base_url,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	GeneratedAt time.Time `json:"generated_at"`
	Generator   Generator `json:"generator"`
}

// Generator information
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Summary carries the verdict and the tallies
type Summary struct {
	Green      bool          `json:"green"`
	ExitCode   int           `json:"exit_code"`
	DurationMS int64         `json:"duration_ms"`
	Counts     runner.Counts `json:"counts"`
}

// Version is stamped into exported documents
var Version = "dev"

// BuildJSONDocument assembles the exported document
func BuildJSONDocument(rep *runner.SuiteReport) JSONDocument {
	return JSONDocument{
		Metadata: Metadata{
			RunID:       rep.RunID,
			BaseURL:     rep.BaseURL,
			StartedAt:   rep.StartedAt,
			FinishedAt:  rep.FinishedAt,
			GeneratedAt: time.Now(),
			Generator:   Generator{Name: "formcheck", Version: Version},
		},
		Summary: Summary{
			Green:      rep.Green(),
			ExitCode:   rep.ExitCode().Int(),
			DurationMS: rep.Duration().Milliseconds(),
			Counts:     rep.Counts(),
		},
		Workflows: rep.Workflows,
	}
}

// WriteJSON writes the report as indented JSON to outputPath
func WriteJSON(rep *runner.SuiteReport, outputPath string) error {
	data, err := json.MarshalIndent(BuildJSONDocument(rep), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
