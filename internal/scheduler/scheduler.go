package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

type handler interface {
	Handle(ctx context.Context, sig models.Signal) error
}

// Scheduler asks for weather on start-up and then on a cron schedule,
// the way the watch does on its own.
type Scheduler struct {
	relay  handler
	cron   *cron.Cron
	spec   string
	logger zerolog.Logger
}

func New(relay handler, spec string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		relay:  relay,
		cron:   cron.New(cron.WithSeconds()),
		spec:   spec,
		logger: logger.With().Str("component", "Scheduler").Logger(),
	}
}

// Run fires once immediately, then on every tick until ctx is done.
// An empty spec disables the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.spec == "" {
		s.logger.Info().Msg("weather scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.RunNow(ctx) }); err != nil {
		s.logger.Error().Err(err).Str("spec", s.spec).Msg("failed to schedule weather job")
		return err
	}

	var startup sync.WaitGroup
	startup.Add(1)
	go func() {
		defer startup.Done()
		s.RunNow(ctx)
	}()

	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("weather scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	startup.Wait()
	s.logger.Info().Msg("all scheduled jobs finished, scheduler stopped")
	return nil
}

// RunNow triggers a single scheduled request.
func (s *Scheduler) RunNow(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sig := models.Signal{
		ID:         uuid.NewString(),
		Source:     models.SourceSchedule,
		ReceivedAt: time.Now(),
	}

	s.logger.Debug().Str("signal_id", sig.ID).Msg("scheduled weather request")
	if err := s.relay.Handle(context.WithoutCancel(ctx), sig); err != nil {
		s.logger.Error().
			Err(err).
			Str("signal_id", sig.ID).
			Msg("scheduled request produced no message")
	}
}
