package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"emailstats/internal/constants"
	"emailstats/internal/logger"
	errs "emailstats/pkg/errors"
)

// Runner runs one collection cycle.
type Runner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// Scheduler triggers cycles on a six-field cron schedule in UTC. A tick that
// fires while the previous cycle is still running is dropped.
type Scheduler struct {
	schedule   cron.Schedule
	spec       string
	runner     Runner
	runOnStart bool
	logger     logger.Logger
	wg         sync.WaitGroup
}

func NewScheduler(spec string, runner Runner, runOnStart bool, log logger.Logger) (*Scheduler, error) {
	schedule, err := cron.NewParser(constants.CronParseOptions).Parse(spec)
	if err != nil {
		return nil, errs.ErrConfiguration.WithCause(err).
			WithMessage(fmt.Sprintf("invalid collection schedule %q", spec))
	}

	return &Scheduler{
		schedule:   schedule,
		spec:       spec,
		runner:     runner,
		runOnStart: runOnStart,
		logger:     log,
	}, nil
}

// Next reports the first activation strictly after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.UTC())
}

// Run blocks until ctx is done, then waits for an in-flight cycle to return.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLog := logger.NewCronLogger(s.logger)
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
	)

	job := cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)).
		Then(cron.FuncJob(func() { s.trigger(ctx, "schedule") }))
	c.Schedule(s.schedule, job)

	c.Start()
	s.logger.Infow("Collection scheduler started", "schedule", s.spec, "next_run", s.Next(time.Now()))

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.trigger(ctx, "startup")
		}()
	}

	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	s.wg.Wait()

	s.logger.Info("Collection scheduler stopped")
	return nil
}

func (s *Scheduler) trigger(ctx context.Context, source string) {
	if ctx.Err() != nil {
		return
	}

	res, err := s.runner.RunCycle(ctx)
	switch {
	case err == nil:
		s.logger.Debugw("Scheduled cycle completed", "trigger", source, "cycle_id", res.CycleID, "duration", res.Duration)
	case errs.IsCycleInProgress(err):
		s.logger.Infow("Scheduled cycle skipped", "trigger", source)
	default:
		s.logger.Warnw("Scheduled cycle failed", "trigger", source, "cycle_id", res.CycleID, "error", err)
	}
}
