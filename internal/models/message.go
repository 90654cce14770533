package models

import (
	"fmt"
	"math"
	"strings"
)

const (
	KeyTemperature = "KEY_TEMPERATURE"
	KeyLow         = "KEY_LOW"
	KeyHigh        = "KEY_HIGH"
	KeyConditions  = "KEY_CONDITIONS"

	// SentinelConditions marks a message sent when no location fix was available.
	SentinelConditions = "X"

	kelvinOffset = 273.15
)

// WatchMessage is the flat dictionary delivered to the watchface.
type WatchMessage struct {
	Temperature int    `json:"KEY_TEMPERATURE"`
	Low         int    `json:"KEY_LOW"`
	High        int    `json:"KEY_HIGH"`
	Conditions  string `json:"KEY_CONDITIONS"`
}

func SentinelMessage() WatchMessage {
	return WatchMessage{Conditions: SentinelConditions}
}

func NewWatchMessage(r WeatherReading) WatchMessage {
	return WatchMessage{
		Temperature: KelvinToCelsius(r.Temp),
		Low:         KelvinToCelsius(r.TempMin),
		High:        KelvinToCelsius(r.TempMax),
		Conditions:  NormalizeCondition(r.Condition),
	}
}

func (m WatchMessage) IsSentinel() bool {
	return m == SentinelMessage()
}

// Display renders the message the way the watchface prints it.
func (m WatchMessage) Display() string {
	if strings.HasPrefix(m.Conditions, SentinelConditions) {
		return SentinelConditions
	}
	return fmt.Sprintf("%dC (%d/%d) %s", m.Temperature, m.Low, m.High, m.Conditions)
}

// KelvinToCelsius rounds half up, so -0.5 becomes 0 and 26.5 becomes 27.
func KelvinToCelsius(k float64) int {
	return int(math.Floor(k - kelvinOffset + 0.5))
}

func NormalizeCondition(condition string) string {
	return strings.ToLower(condition)
}
