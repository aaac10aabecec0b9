package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrStreamingUnsupported = errors.New("streaming unsupported")

// EventStream writes one-shot server-sent events to a single response and flushes
// after every event, so a slow reader slows the writer down.
type EventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func NewEventStream(w http.ResponseWriter) (*EventStream, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &EventStream{w: w, flusher: f}, nil
}

func (s *EventStream) start() {
	if s.started {
		return
	}
	s.started = true
	setStreamHeaders(s.w)
	s.w.WriteHeader(http.StatusOK)
}

// Started reports whether headers and at least one event were written.
func (s *EventStream) Started() bool { return s.started }

// Data writes an unnamed event.
func (s *EventStream) Data(v any) error { return s.Event("", v) }

// Event writes a named event. An empty name writes a default "message" event.
func (s *EventStream) Event(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	s.start()
	if name != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", raw); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
