package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

type relay interface {
	Compose(ctx context.Context) (models.WatchMessage, error)
	Dispatch(ctx context.Context, sig models.Signal)
}

type Handler struct {
	Service relay
	logger  zerolog.Logger
	timeout time.Duration
}

func NewHandler(svc relay, timeout time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		Service: svc,
		logger:  logger.With().Str("component", "HTTPHandler").Logger(),
		timeout: timeout,
	}
}

// GetWeather returns the message the watch would receive, without sending it.
func (h *Handler) GetWeather(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	msg, err := h.Service.Compose(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compose weather message")
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

// Trigger starts a relay chain in the background, as if the watch asked.
func (h *Handler) Trigger(c *gin.Context) {
	sig := models.Signal{
		ID:         uuid.NewString(),
		Source:     models.SourceHTTP,
		ReceivedAt: time.Now(),
	}

	h.Service.Dispatch(c.Request.Context(), sig)
	h.logger.Debug().Str("signal_id", sig.ID).Msg("trigger accepted")

	c.JSON(http.StatusAccepted, gin.H{"id": sig.ID})
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
