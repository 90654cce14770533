package location

import (
	"context"
	"errors"
	"time"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

var errLocationDisabled = errors.New("no coordinates configured")

// StaticLocator reports a fixed position, or PermissionDenied when none is configured.
type StaticLocator struct {
	latitude  *float64
	longitude *float64
	now       func() time.Time
}

func NewStaticLocator(latitude, longitude *float64) *StaticLocator {
	return &StaticLocator{latitude: latitude, longitude: longitude, now: time.Now}
}

func (s *StaticLocator) Current(ctx context.Context) (models.Position, error) {
	if err := ctx.Err(); err != nil {
		return models.Position{}, err
	}
	if s.latitude == nil || s.longitude == nil {
		return models.Position{}, models.NewLocationError(models.PermissionDenied, errLocationDisabled)
	}
	return models.Position{
		Latitude:  *s.latitude,
		Longitude: *s.longitude,
		Timestamp: s.now(),
	}, nil
}
