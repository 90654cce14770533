package models

import (
	"errors"
	"fmt"
	"time"
)

type Position struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// Age reports how old the fix is relative to now.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.Timestamp)
}

type LocationOptions struct {
	Timeout    time.Duration
	MaximumAge time.Duration
}

// LocationErrorCode follows the numbering of the browser geolocation API.
type LocationErrorCode int

const (
	PermissionDenied    LocationErrorCode = 1
	PositionUnavailable LocationErrorCode = 2
	LocationTimeout     LocationErrorCode = 3
)

func (c LocationErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case LocationTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

type LocationError struct {
	Code LocationErrorCode
	Err  error
}

func NewLocationError(code LocationErrorCode, err error) *LocationError {
	return &LocationError{Code: code, Err: err}
}

func (e *LocationError) Error() string {
	if e.Err == nil {
		return "location: " + e.Code.String()
	}
	return fmt.Sprintf("location: %s: %v", e.Code, e.Err)
}

func (e *LocationError) Unwrap() error {
	return e.Err
}

// LocationErrorCodeOf classifies any error returned by a locator.
func LocationErrorCodeOf(err error) LocationErrorCode {
	var locErr *LocationError
	if errors.As(err, &locErr) {
		return locErr.Code
	}
	return PositionUnavailable
}
