package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is one decision-and-execution cycle.
type Runner interface {
	RunCycle(ctx context.Context)
}

// Scheduler triggers the runner at fixed wall-clock times of day. Cycles
// never overlap: a trigger firing while the previous cycle is still
// running is skipped, so missed windows do not accumulate a backlog.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *zap.SugaredLogger
	ctx    context.Context
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.s.Debugw(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}

// NewScheduler creates a Scheduler driving runner.
func NewScheduler(ctx context.Context, runner Runner, log *zap.SugaredLogger) *Scheduler {
	cl := cronLogger{s: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		log:    log,
		ctx:    ctx,
	}
}

// cronSpec converts a "HH:MM" trigger time into a daily cron expression.
func cronSpec(triggerTime string) (string, error) {
	parts := strings.Split(triggerTime, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("bad trigger time %q, want HH:MM", triggerTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("bad hour in trigger time %q", triggerTime)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("bad minute in trigger time %q", triggerTime)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// RegisterAll registers one daily job per trigger time.
func (s *Scheduler) RegisterAll(triggerTimes []string) error {
	for _, tt := range triggerTimes {
		spec, err := cronSpec(tt)
		if err != nil {
			return err
		}
		if _, err := s.cron.AddFunc(spec, func() {
			s.log.Infow("scheduled cycle starting", "trigger", tt)
			s.runner.RunCycle(s.ctx)
		}); err != nil {
			return fmt.Errorf("register trigger %s: %w", tt, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and blocks until any running cycle has
// completed. No cycle is ever cancelled mid-flight.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow executes one cycle immediately (startup / manual trigger).
func (s *Scheduler) RunNow() {
	s.runner.RunCycle(s.ctx)
}
