package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-simulator/internal/types"
)

// SSEWriter streams session events to a client as Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares w for an event stream. It fails when the underlying
// writer cannot flush, since buffered events would defeat live delivery.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one session event, using the event type as the SSE event
// name, and flushes it immediately.
func (s *SSEWriter) WriteEvent(ev types.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends a stream-level error event.
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent(types.Event{ //nolint:errcheck
		Type:    types.EventError,
		Payload: types.ErrorPayload{Message: message},
	})
}
