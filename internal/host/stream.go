package host

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

// StreamHost treats every input line as a trigger and writes each message
// as one JSON line.
type StreamHost struct {
	in     io.Reader
	lines  chan struct{}
	done   chan struct{}
	stop   chan struct{}
	start  sync.Once
	closer sync.Once
	logger zerolog.Logger

	mu  sync.Mutex
	out io.Writer
}

func NewStreamHost(in io.Reader, out io.Writer, logger zerolog.Logger) *StreamHost {
	return &StreamHost{
		in:     in,
		out:    out,
		lines:  make(chan struct{}),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		logger: logger.With().Str("component", "StreamHost").Logger(),
	}
}

func (h *StreamHost) read() {
	defer close(h.done)

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		select {
		case h.lines <- struct{}{}:
		case <-h.stop:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		h.logger.Error().Err(err).Msg("input stream failed")
	}
}

func (h *StreamHost) Trigger(ctx context.Context) (models.Signal, error) {
	h.start.Do(func() { go h.read() })

	select {
	case <-ctx.Done():
		return models.Signal{}, ctx.Err()
	case <-h.lines:
		return models.Signal{
			ID:         uuid.NewString(),
			Source:     models.SourceHost,
			ReceivedAt: time.Now(),
		}, nil
	case <-h.done:
		return models.Signal{}, ErrClosed
	case <-h.stop:
		return models.Signal{}, ErrClosed
	}
}

// Close releases the reader once nobody asks for triggers anymore.
// A read already blocked on the input returns only when the input does.
func (h *StreamHost) Close() {
	h.closer.Do(func() { close(h.stop) })
}

func (h *StreamHost) Send(_ context.Context, msg models.WatchMessage) error {
	line, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}
