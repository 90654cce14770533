package models

import (
	"context"
	"time"
)

const (
	SourceHost     = "host"
	SourceSchedule = "schedule"
	SourceHTTP     = "http"
)

// Signal is one "message requested" event; the payload is never consumed.
type Signal struct {
	ID         string
	Source     string
	ReceivedAt time.Time
}

type signalKey struct{}

func WithSignal(ctx context.Context, sig Signal) context.Context {
	return context.WithValue(ctx, signalKey{}, sig)
}

func SignalFrom(ctx context.Context) (Signal, bool) {
	sig, ok := ctx.Value(signalKey{}).(Signal)
	return sig, ok
}
