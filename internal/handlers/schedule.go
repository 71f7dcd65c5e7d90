package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/formcheck/internal/config"
	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/logging"
	"github.com/user/formcheck/internal/runner"
)

// scheduleParser accepts five-field expressions and descriptors such as
// @hourly or @every 30m
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, errors.NewInvalidConfigValueError("schedule.cron", expr, "a cron expression is required")
	}
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, errors.NewInvalidConfigValueError("schedule.cron", expr, err.Error())
	}
	return sched, nil
}

// cronLogger routes the scheduler's own messages into zap
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(kvFields(keysAndValues), logging.Error(err))...)
}

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logging.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}

// ScheduleHandler runs the suite on a cron schedule until its context ends.
// A tick that fires while the previous run is still going is skipped.
type ScheduleHandler struct {
	*BaseHandler
	config  *config.GlobalConfig
	runOpts []RunOption
	onRun   func(*runner.SuiteReport, error)

	mu   sync.Mutex
	runs int
}

// NewScheduleHandler creates a schedule handler. runOpts are applied to the
// RunHandler of every tick.
func NewScheduleHandler(cfg *config.GlobalConfig, logger *logging.Logger, runOpts ...RunOption) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler: NewBaseHandler(cfg.BaseConfig, logger),
		config:      cfg,
		runOpts:     runOpts,
	}
}

// OnRun registers a callback invoked after every scheduled run
func (h *ScheduleHandler) OnRun(fn func(*runner.SuiteReport, error)) {
	h.onRun = fn
}

// Runs returns how many scheduled runs have finished
func (h *ScheduleHandler) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}

// Handle blocks until ctx is cancelled. Failed runs are logged and the
// schedule keeps going; only an invalid expression is returned.
func (h *ScheduleHandler) Handle(ctx context.Context) error {
	sched, err := ParseSchedule(h.config.Schedule.Cron)
	if err != nil {
		return err
	}

	adapter := cronLogger{logger: h.Logger}
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	entry := c.Schedule(sched, cron.FuncJob(func() { h.tick(ctx) }))

	c.Start()
	h.Logger.Info("Scheduler started",
		logging.String("cron", h.config.Schedule.Cron),
		logging.Time("next", c.Entry(entry).Next))

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	h.Logger.Info("Scheduler stopped", logging.Int("runs", h.Runs()))
	return nil
}

func (h *ScheduleHandler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	rep, err := NewRunHandler(h.config, h.Logger, h.runOpts...).Handle(ctx)

	h.mu.Lock()
	h.runs++
	h.mu.Unlock()

	fields := []logging.Field{logging.Duration("duration", time.Since(start))}
	if rep != nil {
		fields = append(fields, logging.String("run_id", rep.RunID), logging.Bool("green", rep.Green()))
	}
	if err != nil {
		h.Logger.Warn("Scheduled run failed", append(fields, logging.Error(err))...)
	} else {
		h.Logger.Info("Scheduled run passed", fields...)
	}

	if h.onRun != nil {
		h.onRun(rep, err)
	}
}
