package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

const statusSuccess = "success"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator resolves the public address of this host to coordinates.
type IPLocator struct {
	apiURL string
	client HTTPClient
	logger zerolog.Logger
	now    func() time.Time
}

func NewIPLocator(apiURL string, httpClient HTTPClient, logger zerolog.Logger) *IPLocator {
	return &IPLocator{
		apiURL: apiURL,
		client: httpClient,
		logger: logger.With().Str("component", "IPLocator").Logger(),
		now:    time.Now,
	}
}

func (l *IPLocator) Current(ctx context.Context) (models.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.apiURL, nil)
	if err != nil {
		return models.Position{}, models.NewLocationError(models.PositionUnavailable, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("error sending geolocation request")
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Position{}, models.NewLocationError(models.LocationTimeout, err)
		}
		return models.Position{}, models.NewLocationError(models.PositionUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			l.logger.Error().
				Ctx(ctx).
				Err(cerr).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		l.logger.Error().
			Ctx(ctx).
			Int("status_code", resp.StatusCode).
			Msg("geolocation API returned non-200 status")
		return models.Position{}, models.NewLocationError(models.PositionUnavailable,
			fmt.Errorf("geolocation API status %d", resp.StatusCode))
	}

	var raw ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		l.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("failed to decode geolocation response")
		return models.Position{}, models.NewLocationError(models.PositionUnavailable, err)
	}

	if raw.Status != statusSuccess {
		l.logger.Warn().
			Ctx(ctx).
			Str("status", raw.Status).
			Str("reason", raw.Message).
			Msg("geolocation lookup refused")
		return models.Position{}, models.NewLocationError(models.PositionUnavailable,
			fmt.Errorf("geolocation lookup %s: %s", raw.Status, raw.Message))
	}

	pos := models.Position{
		Latitude:  raw.Lat,
		Longitude: raw.Lon,
		Timestamp: l.now(),
	}

	l.logger.Debug().
		Ctx(ctx).
		Float64("lat", pos.Latitude).
		Float64("lon", pos.Longitude).
		Msg("resolved position")

	return pos, nil
}
