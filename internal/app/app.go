package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/config"
	httpHandler "github.com/Nazarious-ucu/watchface-weather-relay/internal/handlers/http"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/host"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/scheduler"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/cache"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/location"
	loggerT "github.com/Nazarious-ucu/watchface-weather-relay/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/watchface-weather-relay/internal/services/metrics"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/relay"
	serviceWeather "github.com/Nazarious-ucu/watchface-weather-relay/internal/services/weather"
	fLogger "github.com/Nazarious-ucu/watchface-weather-relay/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type locator interface {
	Current(ctx context.Context) (models.Position, error)
}

// hostRunner is a host plus whatever it needs running alongside the relay.
type hostRunner struct {
	host  relay.Host
	run   func(ctx context.Context) error
	close func()
}

// App ties together config, logger and metrics for startup and shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start runs the relay, the scheduler and the HTTP surface until ctx is done
// or one of them fails.
func (a *App) Start(ctx context.Context) error {
	a.l.Info().
		Str("transport", a.cfg.Transport).
		Str("location_provider", a.cfg.Location.Provider).
		Str("schedule", a.cfg.Schedule).
		Msg("initializing watchface relay")

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create HTTP file logger, outbound requests will not be traced")
		fileLogger = zap.NewNop()
	}
	defer func() {
		if err := fileLogger.Sync(); err != nil {
			a.l.Debug().Err(err).Msg("failed to sync file logger")
		}
	}()

	httpLogClient := &http.Client{
		Transport: loggerT.NewRoundTripper(fileLogger),
		Timeout:   time.Duration(a.cfg.OpenWeatherMap.HTTPTimeout) * time.Second,
	}

	redisClient := redis.NewClient(&redis.Options{Addr: a.cfg.Redis.Address(), DB: a.cfg.Redis.DB})
	defer func() {
		if err := redisClient.Close(); err != nil {
			a.l.Error().Err(err).Msg("failed to close redis client")
		}
	}()

	runner, err := a.newHost()
	if err != nil {
		return err
	}
	defer runner.close()

	weatherClient := serviceWeather.NewClientOpenWeatherMap(
		a.cfg.OpenWeatherMap.APIKey,
		a.cfg.OpenWeatherMap.URL,
		httpLogClient,
		a.l,
	)

	relaySvc := relay.New(
		a.newLocator(httpLogClient, redisClient),
		weatherClient,
		runner.host,
		models.LocationOptions{
			Timeout:    a.cfg.Location.TimeoutDuration(),
			MaximumAge: a.cfg.Location.MaxAgeDuration(),
		},
		a.l,
		a.m,
	)

	sched := scheduler.New(relaySvc, a.cfg.Schedule, a.l)
	srv := a.newServer(relaySvc)

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.l.Info().Str("address", srv.Addr).Msg("HTTP server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.l.Error().Err(err).Msg("HTTP server failed")
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.l.Info().Msg("shutdown signal received, stopping watchface relay")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := relaySvc.Serve(gctx)
		if errors.Is(err, host.ErrClosed) {
			a.l.Info().Msg("host closed its input, stopping")
			stop()
			return nil
		}
		return err
	})

	g.Go(func() error {
		return sched.Run(gctx)
	})

	if runner.run != nil {
		g.Go(func() error {
			return runner.run(gctx)
		})
	}

	err = g.Wait()
	// HTTP triggers accepted before shutdown still get their message.
	relaySvc.Wait()
	if err != nil {
		a.l.Error().Err(err).Msg("watchface relay stopped with error")
		return err
	}

	a.l.Info().Msg("application shutdown successfully")
	return nil
}

func (a *App) newServer(svc *relay.Relay) *http.Server {
	// stdout belongs to the stdio host
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(a.m.HTTPMiddleware())

	h := httpHandler.NewHandler(svc, time.Duration(a.cfg.Server.ReadTimeout)*time.Second, a.l)

	api := router.Group("/api")
	{
		api.GET("/weather", h.GetWeather)
		api.POST("/trigger", h.Trigger)
	}
	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(a.m.Handler()))

	return &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}
}

func (a *App) newLocator(client location.HTTPClient, redisClient redis.Cmdable) locator {
	var base locator
	switch a.cfg.Location.Provider {
	case config.LocationProviderStatic:
		base = location.NewStaticLocator(a.cfg.Location.Latitude, a.cfg.Location.Longitude)
	default:
		base = location.NewIPLocator(a.cfg.Location.IPURL, client, a.l)
	}

	maxAge := a.cfg.Location.MaxAgeDuration()
	if maxAge <= 0 {
		return base
	}

	positions := cache.NewMetricsDecorator[models.Position](
		cache.NewRedisClient[models.Position](redisClient, a.l, maxAge),
		a.m.Cache,
	)
	return location.NewCachedLocator(base, positions, maxAge, a.l)
}

func (a *App) newHost() (hostRunner, error) {
	if a.cfg.Transport == config.TransportStdio {
		streamHost := host.NewStreamHost(os.Stdin, os.Stdout, a.l)
		return hostRunner{
			host:  streamHost,
			close: streamHost.Close,
		}, nil
	}

	conn, err := a.setupConn()
	if err != nil {
		return hostRunner{}, err
	}

	publisher, err := a.setupPublisher(conn)
	if err != nil {
		a.closeConn(conn)
		return hostRunner{}, err
	}

	consumer, err := a.setupTriggerConsumer(conn)
	if err != nil {
		publisher.Close()
		a.closeConn(conn)
		return hostRunner{}, err
	}

	rabbitHost := host.NewRabbitHost(publisher, a.l)

	return hostRunner{
		host: rabbitHost,
		run: func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				rabbitHost.Close()
				consumer.Close()
			}()
			if err := consumer.Run(rabbitHost.Receive); err != nil {
				a.l.Error().Err(err).Msg("weather request consumer failed")
				return err
			}
			return nil
		},
		close: func() {
			rabbitHost.Close()
			publisher.Close()
			a.closeConn(conn)
		},
	}, nil
}
