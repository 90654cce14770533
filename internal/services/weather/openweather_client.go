package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedBody    = errors.New("malformed body")
	ErrNoConditions     = errors.New("no weather conditions in response")

	errMissingTemperatures = errors.New("main temperatures missing")
	errMissingCondition    = errors.New("weather condition missing")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pointer fields tell an absent value apart from zero Kelvin.
type apiResponse struct {
	Main *struct {
		Temp    *float64 `json:"temp"`
		TempMin *float64 `json:"temp_min"`
		TempMax *float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Main        *string `json:"main"`
		Description string  `json:"description"`
	} `json:"weather"`
}

func (r apiResponse) temperatures() (temp, low, high float64, err error) {
	if r.Main == nil || r.Main.Temp == nil || r.Main.TempMin == nil || r.Main.TempMax == nil {
		return 0, 0, 0, errMissingTemperatures
	}
	return *r.Main.Temp, *r.Main.TempMin, *r.Main.TempMax, nil
}

// ClientOpenWeatherMap fetches current conditions by coordinates.
type ClientOpenWeatherMap struct {
	APIKey string
	apiURL string
	client HTTPClient
	logger zerolog.Logger
}

// NewClientOpenWeatherMap constructs a new OpenWeatherMap client.
func NewClientOpenWeatherMap(apiKey, apiURL string,
	httpClient HTTPClient, logger zerolog.Logger,
) *ClientOpenWeatherMap {
	return &ClientOpenWeatherMap{
		APIKey: apiKey,
		apiURL: apiURL,
		client: httpClient,
		logger: logger.With().Str("component", "OpenWeatherMap").Logger(),
	}
}

// RequestURL builds {base}?lat=..&lon=.. and appends appid only when a key is configured.
func (s *ClientOpenWeatherMap) RequestURL(pos models.Position) string {
	url := fmt.Sprintf("%s?lat=%s&lon=%s", s.apiURL, formatCoordinate(pos.Latitude), formatCoordinate(pos.Longitude))
	if s.APIKey != "" {
		url += "&appid=" + s.APIKey
	}
	return url
}

// FetchByCoordinates issues exactly one GET; the response temperatures stay in Kelvin.
func (s *ClientOpenWeatherMap) FetchByCoordinates(
	ctx context.Context,
	pos models.Position,
) (models.WeatherReading, error) {
	start := time.Now()
	url := s.RequestURL(pos)

	s.logger.Debug().
		Ctx(ctx).
		Float64("lat", pos.Latitude).
		Float64("lon", pos.Longitude).
		Msg("starting OpenWeatherMap request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("failed to create HTTP request")
		return models.WeatherReading{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("error sending HTTP request to OpenWeatherMap")
		return models.WeatherReading{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().
				Ctx(ctx).
				Err(cerr).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Ctx(ctx).
			Int("status_code", resp.StatusCode).
			Msg("OpenWeatherMap API returned non-200 status")
		return models.WeatherReading{}, fmt.Errorf("OpenWeatherMap: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("failed to decode OpenWeatherMap response")
		return models.WeatherReading{}, fmt.Errorf("OpenWeatherMap: %w: %w", ErrMalformedBody, err)
	}

	temp, low, high, err := raw.temperatures()
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("OpenWeatherMap response is incomplete")
		return models.WeatherReading{}, fmt.Errorf("OpenWeatherMap: %w: %w", ErrMalformedBody, err)
	}

	if len(raw.Weather) == 0 {
		s.logger.Error().
			Ctx(ctx).
			Msg("OpenWeatherMap response has no weather entries")
		return models.WeatherReading{}, fmt.Errorf("OpenWeatherMap: %w", ErrNoConditions)
	}

	if raw.Weather[0].Main == nil {
		s.logger.Error().
			Ctx(ctx).
			Msg("OpenWeatherMap weather entry has no condition")
		return models.WeatherReading{}, fmt.Errorf("OpenWeatherMap: %w: %w", ErrMalformedBody, errMissingCondition)
	}

	reading := models.WeatherReading{
		Temp:      temp,
		TempMin:   low,
		TempMax:   high,
		Condition: *raw.Weather[0].Main,
	}

	s.logger.Info().
		Ctx(ctx).
		Str("condition", reading.Condition).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched weather data")

	return reading, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
