package weather_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/weather"
)

const baseURL = "https://api.openweathermap.org/data/2.5/weather"

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, ok := args.Get(0).(*http.Response)
	if !ok {
		return nil, args.Error(1)
	}
	return resp, args.Error(1)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

var newYork = models.Position{Latitude: 40.0, Longitude: -74.0}

func TestRequestURL(t *testing.T) {
	withoutKey := weather.NewClientOpenWeatherMap("", baseURL, &mockHTTPClient{}, zerolog.Nop())
	withKey := weather.NewClientOpenWeatherMap("secret", baseURL, &mockHTTPClient{}, zerolog.Nop())

	assert.Equal(t, baseURL+"?lat=40&lon=-74", withoutKey.RequestURL(newYork))
	assert.Equal(t, baseURL+"?lat=40&lon=-74&appid=secret", withKey.RequestURL(newYork))
	assert.Equal(t, baseURL+"?lat=49.8397&lon=24.0297",
		withoutKey.RequestURL(models.Position{Latitude: 49.8397, Longitude: 24.0297}))
}

func TestFetchByCoordinates_Success(t *testing.T) {
	m := &mockHTTPClient{}

	m.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodGet && req.URL.String() == baseURL+"?lat=40&lon=-74"
	})).Return(jsonResponse(http.StatusOK,
		`{"main":{"temp":300.15,"temp_min":295.15,"temp_max":305.15},"weather":[{"main":"Clouds"}]}`),
		nil).Once()

	t.Cleanup(func() {
		m.AssertExpectations(t)
	})

	client := weather.NewClientOpenWeatherMap("", baseURL, m, zerolog.Nop())

	reading, err := client.FetchByCoordinates(context.Background(), newYork)
	require.NoError(t, err)
	assert.Equal(t, models.WeatherReading{
		Temp:      300.15,
		TempMin:   295.15,
		TempMax:   305.15,
		Condition: "Clouds",
	}, reading)
}

func TestFetchByCoordinates_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		resp    *http.Response
		doErr   error
		wantErr error
	}{
		{
			name:    "unauthorized",
			resp:    jsonResponse(http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`),
			wantErr: weather.ErrUnexpectedStatus,
		},
		{
			name:    "server error",
			resp:    jsonResponse(http.StatusInternalServerError, `{"error":"Internal server error"}`),
			wantErr: weather.ErrUnexpectedStatus,
		},
		{
			name:    "malformed json",
			resp:    jsonResponse(http.StatusOK, `{"main":`),
			wantErr: weather.ErrMalformedBody,
		},
		{
			name:    "empty weather list",
			resp:    jsonResponse(http.StatusOK, `{"main":{"temp":280,"temp_min":279,"temp_max":281},"weather":[]}`),
			wantErr: weather.ErrNoConditions,
		},
		{
			name:    "missing main",
			resp:    jsonResponse(http.StatusOK, `{"weather":[{"main":"Clear"}]}`),
			wantErr: weather.ErrMalformedBody,
		},
		{
			name:    "empty main and condition",
			resp:    jsonResponse(http.StatusOK, `{"main":{},"weather":[{}]}`),
			wantErr: weather.ErrMalformedBody,
		},
		{
			name:    "missing temp_max",
			resp:    jsonResponse(http.StatusOK, `{"main":{"temp":280,"temp_min":279},"weather":[{"main":"Rain"}]}`),
			wantErr: weather.ErrMalformedBody,
		},
		{
			name: "missing condition",
			resp: jsonResponse(http.StatusOK,
				`{"main":{"temp":280,"temp_min":279,"temp_max":281},"weather":[{"description":"light rain"}]}`),
			wantErr: weather.ErrMalformedBody,
		},
		{
			name:  "transport failure",
			doErr: errors.New("dial tcp: connection refused"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockHTTPClient{}
			m.On("Do", mock.Anything).Return(tc.resp, tc.doErr).Once()

			t.Cleanup(func() {
				m.AssertExpectations(t)
				m.AssertNumberOfCalls(t, "Do", 1)
			})

			client := weather.NewClientOpenWeatherMap("secret", baseURL, m, zerolog.Nop())

			reading, err := client.FetchByCoordinates(context.Background(), newYork)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Equal(t, models.WeatherReading{}, reading)
		})
	}
}

func TestFetchByCoordinates_ExplicitZeroIsKept(t *testing.T) {
	m := &mockHTTPClient{}
	m.On("Do", mock.Anything).Return(jsonResponse(http.StatusOK,
		`{"main":{"temp":0,"temp_min":0,"temp_max":0},"weather":[{"main":""}]}`), nil).Once()

	reading, err := weather.NewClientOpenWeatherMap("", baseURL, m, zerolog.Nop()).
		FetchByCoordinates(context.Background(), newYork)
	require.NoError(t, err)
	assert.Equal(t, models.WeatherReading{}, reading)
}
