package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

// EventSubscriber is satisfied by sse.Hub.
type EventSubscriber interface {
	Subscribe(employeeID string) (<-chan sse.Event, func())
}

type StreamHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type streamHandlerImpl struct {
	events    EventSubscriber
	keepalive time.Duration
}

func NewStreamHandler(events EventSubscriber) StreamHandler {
	return &streamHandlerImpl{events: events, keepalive: 30 * time.Second}
}

// Stream pushes the caller's quick status every time one of their lifecycle operations commits.
func (h *streamHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	employee, ok := middleware.EmployeeFromContext(r.Context())
	if !ok {
		response.HandleError(w, attendance.ErrUnauthenticated)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// the server WriteTimeout would otherwise cut the stream
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("Failed to clear stream write deadline", "error", err)
	}

	events, cleanup := h.events.Subscribe(employee.ID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"employee_id\":%q}\n\n", employee.ID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode attendance event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
