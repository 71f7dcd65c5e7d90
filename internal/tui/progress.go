package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Progress styles for the TUI
var (
	progressTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	progressStepStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7D56F4"))

	progressInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A0A0A0"))

	progressSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#50FA7B"))

	progressErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5F87"))

	progressWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFB86C"))
)

// ProgressReporter receives workflow lifecycle events from a suite run.
// Implementations must be safe for concurrent use.
type ProgressReporter interface {
	AddWorkflow(name, description string)
	StartWorkflow(name string, attempt int)
	CompleteWorkflow(name string, passed, total int)
	FailWorkflow(name string, passed, total int, reason string)
	AbortWorkflow(name string, reason string)
}

type NopProgressReporter struct{}

func (n *NopProgressReporter) AddWorkflow(name, description string)                       {}
func (n *NopProgressReporter) StartWorkflow(name string, attempt int)                     {}
func (n *NopProgressReporter) CompleteWorkflow(name string, passed, total int)            {}
func (n *NopProgressReporter) FailWorkflow(name string, passed, total int, reason string) {}
func (n *NopProgressReporter) AbortWorkflow(name string, reason string)                   {}

type WorkflowStatus int

const (
	WorkflowPending WorkflowStatus = iota
	WorkflowRunning
	WorkflowPassed
	WorkflowFailed
	WorkflowAborted
)

func (s WorkflowStatus) String() string {
	switch s {
	case WorkflowPending:
		return "pending"
	case WorkflowRunning:
		return "running"
	case WorkflowPassed:
		return "passed"
	case WorkflowFailed:
		return "failed"
	case WorkflowAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type workflowLine struct {
	Name        string
	Description string
	Status      WorkflowStatus
	Attempt     int
	Passed      int
	Total       int
	Reason      string
	StartTime   time.Time
	EndTime     time.Time
}

// Progress prints one line per workflow event. Workflows may run on
// several sessions at once, so every write holds the lock.
type Progress struct {
	mu        sync.Mutex
	writer    io.Writer
	title     string
	lines     []*workflowLine
	byName    map[string]*workflowLine
	started   bool
	startTime time.Time
}

func NewProgress(title string) *Progress {
	return &Progress{
		title:     title,
		byName:    make(map[string]*workflowLine),
		startTime: time.Now(),
	}
}

func (p *Progress) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

func (p *Progress) getWriter() io.Writer {
	if p.writer == nil {
		return os.Stdout
	}
	return p.writer
}

func (p *Progress) AddWorkflow(name, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byName[name]; ok {
		return
	}
	line := &workflowLine{Name: name, Description: description}
	p.lines = append(p.lines, line)
	p.byName[name] = line
}

// Start prints the title and the list of queued workflows
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.started = true
	p.startTime = time.Now()

	w := p.getWriter()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, progressTitleStyle.Render(" "+p.title+" "))
	_, _ = fmt.Fprintln(w)
	for _, l := range p.lines {
		_, _ = fmt.Fprintln(w, p.formatLine(l))
	}
	if len(p.lines) > 0 {
		_, _ = fmt.Fprintln(w)
	}
}

func (p *Progress) StartWorkflow(name string, attempt int) {
	p.update(name, func(l *workflowLine) {
		l.Status = WorkflowRunning
		l.Attempt = attempt
		l.StartTime = time.Now()
	})
}

func (p *Progress) CompleteWorkflow(name string, passed, total int) {
	p.update(name, func(l *workflowLine) {
		l.Status = WorkflowPassed
		l.Passed, l.Total = passed, total
		l.EndTime = time.Now()
	})
}

func (p *Progress) FailWorkflow(name string, passed, total int, reason string) {
	p.update(name, func(l *workflowLine) {
		l.Status = WorkflowFailed
		l.Passed, l.Total = passed, total
		l.Reason = reason
		l.EndTime = time.Now()
	})
}

func (p *Progress) AbortWorkflow(name string, reason string) {
	p.update(name, func(l *workflowLine) {
		l.Status = WorkflowAborted
		l.Reason = reason
		l.EndTime = time.Now()
	})
}

func (p *Progress) update(name string, fn func(*workflowLine)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.byName[name]
	if !ok {
		l = &workflowLine{Name: name}
		p.lines = append(p.lines, l)
		p.byName[name] = l
	}
	fn(l)
	_, _ = fmt.Fprintln(p.getWriter(), p.formatLine(l))
}

func (p *Progress) formatLine(l *workflowLine) string {
	var icon, status string
	var style lipgloss.Style

	switch l.Status {
	case WorkflowPending:
		icon = progressInfoStyle.Render(IconPending)
		status = progressInfoStyle.Render("waiting")
		style = progressInfoStyle
	case WorkflowRunning:
		icon = progressStepStyle.Render(IconRunning)
		status = "running"
		if l.Attempt > 1 {
			status = fmt.Sprintf("retrying (attempt %d)", l.Attempt)
		}
		status = progressStepStyle.Render(status)
		style = progressStepStyle
	case WorkflowPassed:
		icon = progressSuccessStyle.Render(IconSuccess)
		duration := l.EndTime.Sub(l.StartTime).Round(time.Millisecond)
		status = progressSuccessStyle.Render(fmt.Sprintf("%d/%d passed in %s", l.Passed, l.Total, duration))
		style = progressSuccessStyle
	case WorkflowFailed:
		icon = progressErrorStyle.Render(IconError)
		status = progressErrorStyle.Render(fmt.Sprintf("%d/%d passed", l.Passed, l.Total))
		style = progressErrorStyle
	case WorkflowAborted:
		icon = progressWarningStyle.Render(IconWarning)
		status = progressWarningStyle.Render("aborted: " + l.Reason)
		style = progressWarningStyle
	}

	name := style.Render(l.Name)

	return fmt.Sprintf("  %s %s %s", icon, name, status)
}

// PrintSummary prints totals and the reasons of failed workflows
func (p *Progress) PrintSummary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var passed, failed, aborted int
	for _, l := range p.lines {
		switch l.Status {
		case WorkflowPassed:
			passed++
		case WorkflowFailed:
			failed++
		case WorkflowAborted:
			aborted++
		}
	}

	w := p.getWriter()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 50))

	summary := fmt.Sprintf("Passed: %d/%d", passed, len(p.lines))
	if failed > 0 {
		summary += fmt.Sprintf(", Failed: %d", failed)
	}
	if aborted > 0 {
		summary += fmt.Sprintf(", Aborted: %d", aborted)
	}
	summary += fmt.Sprintf(" (%s)", time.Since(p.startTime).Round(time.Millisecond))

	if failed == 0 && aborted == 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n",
			progressSuccessStyle.Render(IconSuccess),
			progressSuccessStyle.Render(summary))
	} else {
		_, _ = fmt.Fprintf(w, "%s %s\n",
			progressErrorStyle.Render(IconError),
			progressWarningStyle.Render(summary))
		_, _ = fmt.Fprintln(w)
		for _, l := range p.lines {
			if l.Status == WorkflowFailed || l.Status == WorkflowAborted {
				reason := l.Reason
				if reason == "" {
					reason = l.Status.String()
				}
				_, _ = fmt.Fprintf(w, "  %s %s: %s\n", progressErrorStyle.Render(IconError), l.Name, reason)
			}
		}
	}

	_, _ = fmt.Fprintln(w)
}

// Status returns the current status of a workflow
func (p *Progress) Status(name string) WorkflowStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.byName[name]; ok {
		return l.Status
	}
	return WorkflowPending
}

type SimpleProgress struct {
	writer  io.Writer
	title   string
	started bool
}

func NewSimpleProgress(title string) *SimpleProgress {
	return &SimpleProgress{
		title: title,
	}
}

func (sp *SimpleProgress) SetWriter(w io.Writer) {
	sp.writer = w
}

func (sp *SimpleProgress) getWriter() io.Writer {
	if sp.writer == nil {
		return os.Stdout
	}
	return sp.writer
}

func (sp *SimpleProgress) Start() {
	if sp.started {
		return
	}
	sp.started = true
	_, _ = fmt.Fprintln(sp.getWriter())
	_, _ = fmt.Fprintln(sp.getWriter(), progressTitleStyle.Render(" "+sp.title+" "))
	_, _ = fmt.Fprintln(sp.getWriter())
}

func (sp *SimpleProgress) Step(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		progressStepStyle.Render(IconRunning),
		message)
}

func (sp *SimpleProgress) Success(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		progressSuccessStyle.Render(IconSuccess),
		progressSuccessStyle.Render(message))
}

func (sp *SimpleProgress) Warning(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
		progressWarningStyle.Render("⚠"),
		message)
}

func (sp *SimpleProgress) Info(message string) {
	_, _ = fmt.Fprintf(sp.getWriter(), "  %s\n",
		progressInfoStyle.Render(message))
}

func (sp *SimpleProgress) Failed(err error) {
	_, _ = fmt.Fprintln(sp.getWriter())
	if err != nil {
		_, _ = fmt.Fprintf(sp.getWriter(), "%s %s\n",
			progressErrorStyle.Render("✗ Failed:"),
			err.Error())
	} else {
		_, _ = fmt.Fprintf(sp.getWriter(), "%s\n",
			progressErrorStyle.Render("✗ Failed"))
	}
}
