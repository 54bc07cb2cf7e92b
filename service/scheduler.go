package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"echo-vintage-ecard/logger"
)

// dueBatchSize caps how many scheduled cards one run delivers
const dueBatchSize = 50

// DueCardDeliverer delivers scheduled cards whose time has come
type DueCardDeliverer interface {
	DeliverDue(ctx context.Context, batchSize int) (int, error)
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Scheduler runs the scheduled-card delivery job on a cron spec
type Scheduler struct {
	cron      *cron.Cron
	deliverer DueCardDeliverer
	timeout   time.Duration
	log       zerolog.Logger
}

// NewScheduler registers the delivery job. spec accepts the standard five
// field format and descriptors such as "@every 1m".
func NewScheduler(spec string, deliverer DueCardDeliverer) (*Scheduler, error) {
	log := logger.New("scheduler")
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		deliverer: deliverer,
		timeout:   5 * time.Minute,
		log:       log,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce delivers the cards that are due right now
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.deliverer.DeliverDue(ctx, dueBatchSize)
	if err != nil {
		s.log.Error().Err(err).Int("processed", n).Msg("scheduled delivery run failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("processed", n).Msg("scheduled cards delivered")
	}
}

// Start begins running the job in the background
func (s *Scheduler) Start() {
	s.log.Info().Msg("scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out with a job still running")
	}
}
