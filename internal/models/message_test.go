package models_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

func TestKelvinToCelsius(t *testing.T) {
	testCases := []struct {
		name   string
		kelvin float64
		want   int
	}{
		{name: "freezing point", kelvin: 273.15, want: 0},
		{name: "warm afternoon", kelvin: 300.0, want: 27},
		{name: "exact offset above", kelvin: 300.15, want: 27},
		{name: "low", kelvin: 295.15, want: 22},
		{name: "high", kelvin: 305.15, want: 32},
		{name: "below zero", kelvin: 263.0, want: -10},
		{name: "just below freezing", kelvin: 273.0, want: 0},
		{name: "rounds down below zero", kelvin: 272.0, want: -1},
		{name: "rounds up", kelvin: 273.7, want: 1},
		{name: "absolute zero", kelvin: 0, want: -273},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, models.KelvinToCelsius(tc.kelvin))
		})
	}
}

func TestKelvinToCelsius_MatchesRounding(t *testing.T) {
	for k := 200.0; k < 340.0; k += 0.37 {
		c := k - 273.15
		if math.Abs(math.Abs(c-math.Trunc(c))-0.5) < 1e-6 {
			continue
		}
		assert.Equal(t, int(math.Round(c)), models.KelvinToCelsius(k), "kelvin %v", k)
	}
}

func TestNormalizeCondition_Idempotent(t *testing.T) {
	for _, s := range []string{"Clouds", "CLEAR", "rain", "", "Thunderstorm", "Ärger", "X"} {
		once := models.NormalizeCondition(s)
		assert.Equal(t, once, models.NormalizeCondition(once), "input %q", s)
	}
	assert.Equal(t, "clouds", models.NormalizeCondition("Clouds"))
}

func TestNewWatchMessage(t *testing.T) {
	msg := models.NewWatchMessage(models.WeatherReading{
		Temp:      300.15,
		TempMin:   295.15,
		TempMax:   305.15,
		Condition: "Clouds",
	})

	assert.Equal(t, models.WatchMessage{Temperature: 27, Low: 22, High: 32, Conditions: "clouds"}, msg)
	assert.False(t, msg.IsSentinel())
	assert.Equal(t, "27C (22/32) clouds", msg.Display())
}

func TestSentinelMessage(t *testing.T) {
	msg := models.SentinelMessage()

	assert.Equal(t, models.WatchMessage{Conditions: "X"}, msg)
	assert.True(t, msg.IsSentinel())
	assert.Equal(t, "X", msg.Display())

	body, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"KEY_TEMPERATURE":0,"KEY_LOW":0,"KEY_HIGH":0,"KEY_CONDITIONS":"X"}`,
		string(body))
}

func TestLocationErrorCodeOf(t *testing.T) {
	denied := models.NewLocationError(models.PermissionDenied, nil)
	wrapped := errors.Join(errors.New("lookup"), models.NewLocationError(models.LocationTimeout, errors.New("slow")))

	assert.Equal(t, models.PermissionDenied, models.LocationErrorCodeOf(denied))
	assert.Equal(t, models.LocationTimeout, models.LocationErrorCodeOf(wrapped))
	assert.Equal(t, models.PositionUnavailable, models.LocationErrorCodeOf(errors.New("boom")))
	assert.Equal(t, "location: permission_denied", denied.Error())
}
