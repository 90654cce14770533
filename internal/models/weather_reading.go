package models

// WeatherReading holds provider values before conversion; temperatures are in Kelvin.
type WeatherReading struct {
	Temp      float64 `json:"temp"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Condition string  `json:"condition"`
}
