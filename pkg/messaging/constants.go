package messaging

const (
	ExchangeName       = "watchface"
	TriggerRoutingKey  = "weather.request"
	ReplyRoutingKey    = "weather.reply"
	TriggerQueueName   = "weather_request_queue"
	ReplyQueueName     = "weather_reply_queue"
	ContentTypeJSON    = "application/json"
	ReplyMessageType   = "watch_message"
	RelayApplicationID = "watchface-weather-relay"
)
