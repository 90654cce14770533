package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/metrics"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/weather"
)

const (
	ReadyMessage = "watchface relay ready"

	outcomeSent          = "sent"
	outcomeSentinel      = "sentinel"
	outcomeWeatherError  = "weather_error"
	outcomeSendError     = "send_error"
	kindWeather          = "weather"
	kindSentinel         = "sentinel"
	errTypeStatus        = "unexpected_status"
	errTypeMalformed     = "malformed_body"
	errTypeNoConditions  = "no_conditions"
	errTypeTransport     = "transport"
	defaultLocationLimit = 15 * time.Second
)

type locator interface {
	Current(ctx context.Context) (models.Position, error)
}

type weatherFetcher interface {
	FetchByCoordinates(ctx context.Context, pos models.Position) (models.WeatherReading, error)
}

// Host is the watch-side transport: it yields triggers and accepts messages.
type Host interface {
	Trigger(ctx context.Context) (models.Signal, error)
	Send(ctx context.Context, msg models.WatchMessage) error
}

// Relay turns a trigger into exactly one message for the watch.
type Relay struct {
	locator locator
	weather weatherFetcher
	host    Host
	opts    models.LocationOptions
	logger  zerolog.Logger
	m       *metrics.Metrics

	inflight sync.WaitGroup
}

func New(
	loc locator,
	wf weatherFetcher,
	host Host,
	opts models.LocationOptions,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Relay {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultLocationLimit
	}
	return &Relay{
		locator: loc,
		weather: wf,
		host:    host,
		opts:    opts,
		logger:  logger.With().Str("component", "Relay").Logger(),
		m:       m,
	}
}

// Compose builds the message for the current position. A location failure
// yields the sentinel; a weather failure yields an error and no message.
func (r *Relay) Compose(ctx context.Context) (models.WatchMessage, error) {
	pos, err := r.locate(ctx)
	if err != nil {
		code := models.LocationErrorCodeOf(err)
		r.logger.Warn().
			Ctx(ctx).
			Err(err).
			Str("code", code.String()).
			Msg("location unavailable, sending sentinel")
		r.m.LocationFailuresTotal.WithLabelValues(code.String()).Inc()
		return models.SentinelMessage(), nil
	}

	reading, err := r.weather.FetchByCoordinates(ctx, pos)
	if err != nil {
		r.logger.Error().
			Ctx(ctx).
			Err(err).
			Float64("lat", pos.Latitude).
			Float64("lon", pos.Longitude).
			Msg("weather lookup failed")
		r.m.WeatherErrorsTotal.WithLabelValues(weatherErrorType(err)).Inc()
		return models.WatchMessage{}, fmt.Errorf("compose: %w", err)
	}

	return models.NewWatchMessage(reading), nil
}

func (r *Relay) locate(ctx context.Context) (models.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	pos, err := r.locator.Current(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && models.LocationErrorCodeOf(err) != models.LocationTimeout {
			return models.Position{}, models.NewLocationError(models.LocationTimeout, err)
		}
		return models.Position{}, err
	}
	return pos, nil
}

// Handle runs one trigger chain: compose, then at most one send.
func (r *Relay) Handle(ctx context.Context, sig models.Signal) error {
	start := time.Now()
	ctx = models.WithSignal(ctx, sig)
	logger := r.logger.With().Str("signal_id", sig.ID).Str("source", sig.Source).Logger()

	r.m.TriggersTotal.WithLabelValues(sig.Source).Inc()
	r.m.InFlightChains.Inc()
	defer r.m.InFlightChains.Dec()

	msg, err := r.Compose(ctx)
	if err != nil {
		r.m.RelayDuration.WithLabelValues(outcomeWeatherError).Observe(time.Since(start).Seconds())
		return err
	}

	kind := kindWeather
	if msg.IsSentinel() {
		kind = kindSentinel
	}

	if err := r.host.Send(ctx, msg); err != nil {
		logger.Error().
			Err(err).
			Str("kind", kind).
			Msg("host refused message")
		r.m.SendErrorsTotal.WithLabelValues(kind).Inc()
		r.m.RelayDuration.WithLabelValues(outcomeSendError).Observe(time.Since(start).Seconds())
		return fmt.Errorf("send: %w", err)
	}

	outcome := outcomeSent
	if kind == kindSentinel {
		outcome = outcomeSentinel
	}
	dur := time.Since(start)
	r.m.MessagesSentTotal.WithLabelValues(kind).Inc()
	r.m.RelayDuration.WithLabelValues(outcome).Observe(dur.Seconds())

	logger.Info().
		Str("display", msg.Display()).
		Dur("duration", dur).
		Msg("message sent")
	return nil
}

// Dispatch runs a chain in the background, detached from ctx cancellation.
// Wait and Serve block until every dispatched chain has finished.
func (r *Relay) Dispatch(ctx context.Context, sig models.Signal) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		if err := r.Handle(context.WithoutCancel(ctx), sig); err != nil {
			r.logger.Error().
				Err(err).
				Str("signal_id", sig.ID).
				Str("source", sig.Source).
				Msg("trigger produced no message")
		}
	}()
}

// Wait blocks until all dispatched chains are done.
func (r *Relay) Wait() {
	r.inflight.Wait()
}

// Serve reads triggers until ctx is done or the host fails, then waits for
// in-flight chains. Each chain outlives cancellation of ctx.
func (r *Relay) Serve(ctx context.Context) error {
	defer r.Wait()

	r.logger.Info().Msg(ReadyMessage)

	for {
		sig, err := r.host.Trigger(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info().Msg("relay stopping, waiting for in-flight requests")
				return nil
			}
			return fmt.Errorf("trigger: %w", err)
		}

		r.Dispatch(ctx, sig)
	}
}

func weatherErrorType(err error) string {
	switch {
	case errors.Is(err, weather.ErrUnexpectedStatus):
		return errTypeStatus
	case errors.Is(err, weather.ErrMalformedBody):
		return errTypeMalformed
	case errors.Is(err, weather.ErrNoConditions):
		return errTypeNoConditions
	default:
		return errTypeTransport
	}
}
