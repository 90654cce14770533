package messaging

// WeatherRequestEvent is what a watch bridge may publish; the relay only uses its id.
type WeatherRequestEvent struct {
	WatchID string `json:"watch_id,omitempty"`
}

// WeatherReplyEvent mirrors the app-message dictionary sent back to the watch.
type WeatherReplyEvent struct {
	Temperature int    `json:"KEY_TEMPERATURE"`
	Low         int    `json:"KEY_LOW"`
	High        int    `json:"KEY_HIGH"`
	Conditions  string `json:"KEY_CONDITIONS"`
}
