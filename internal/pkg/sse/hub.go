package sse

import (
	"sync"
)

// Event is a named payload delivered to one employee's open streams.
type Event struct {
	EmployeeID string
	Event      string
	Data       interface{}
}

// Hub fans attendance events out to the streams each employee has open.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a stream for employeeID. The cleanup func unregisters and closes the channel.
func (h *Hub) Subscribe(employeeID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers the event to every stream of employeeID. Full streams drop it.
func (h *Hub) Publish(employeeID string, event string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[employeeID] {
		select {
		case ch <- Event{EmployeeID: employeeID, Event: event, Data: data}:
		default:
		}
	}
}
