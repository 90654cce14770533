package config

import (
	"fmt"
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	TransportRabbitMQ = "rabbitmq"
	TransportStdio    = "stdio"

	LocationProviderIP     = "ip"
	LocationProviderStatic = "static"
)

type Server struct {
	Host        string `envconfig:"RELAY_SERVER_HOST" default:"0.0.0.0"`
	Port        string `envconfig:"RELAY_SERVER_PORT" default:"8083"`
	ReadTimeout int    `envconfig:"RELAY_SERVER_TIMEOUT" default:"10"`
}

type OpenWeatherMap struct {
	URL         string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	APIKey      string `envconfig:"OPEN_WEATHER_MAP_API_KEY"`
	HTTPTimeout int    `envconfig:"WEATHER_HTTP_TIMEOUT" default:"10"`
}

type Location struct {
	Provider  string   `envconfig:"LOCATION_PROVIDER" default:"ip"`
	IPURL     string   `envconfig:"LOCATION_IP_URL" default:"http://ip-api.com/json"`
	Latitude  *float64 `envconfig:"LOCATION_LATITUDE"`
	Longitude *float64 `envconfig:"LOCATION_LONGITUDE"`
	Timeout   int      `envconfig:"LOCATION_TIMEOUT" default:"15"`
	MaxAge    int      `envconfig:"LOCATION_MAX_AGE" default:"60"`
}

type RabbitMQ struct {
	Host string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port string `envconfig:"RABBITMQ_PORT" default:"5672"`
	User string `envconfig:"RABBITMQ_USER" default:"guest"`
	Pass string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
}

type Redis struct {
	Host string `envconfig:"REDIS_HOST" default:"localhost"`
	Port string `envconfig:"REDIS_PORT" default:"6379"`
	DB   int    `envconfig:"REDIS_DB" default:"0"`
}

type Config struct {
	Transport string `envconfig:"HOST_TRANSPORT" default:"rabbitmq"`
	Schedule  string `envconfig:"RELAY_SCHEDULE" default:"0 0 * * * *"`

	OpenWeatherMap OpenWeatherMap
	Location       Location
	RabbitMQ       RabbitMQ
	Redis          Redis
	Server         Server

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/watchface-relay.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/watchface-relay-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Transport {
	case TransportRabbitMQ, TransportStdio:
	default:
		return fmt.Errorf("unknown HOST_TRANSPORT %q", c.Transport)
	}

	switch c.Location.Provider {
	case LocationProviderIP, LocationProviderStatic:
	default:
		return fmt.Errorf("unknown LOCATION_PROVIDER %q", c.Location.Provider)
	}

	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return fmt.Errorf("LOCATION_LATITUDE and LOCATION_LONGITUDE must be set together")
	}

	if c.Location.Timeout <= 0 {
		return fmt.Errorf("LOCATION_TIMEOUT must be positive, got %d", c.Location.Timeout)
	}

	if c.Location.MaxAge < 0 {
		return fmt.Errorf("LOCATION_MAX_AGE must not be negative, got %d", c.Location.MaxAge)
	}
	return nil
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (l Location) TimeoutDuration() time.Duration {
	return time.Duration(l.Timeout) * time.Second
}

func (l Location) MaxAgeDuration() time.Duration {
	return time.Duration(l.MaxAge) * time.Second
}

func (r *RabbitMQ) Address() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.User, r.Pass, r.Host, r.Port)
}

func (r *Redis) Address() string {
	return net.JoinHostPort(r.Host, r.Port)
}
