package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/liquidkit/logger"
)

// KeepAlive is how often an idle stream gets a comment line, below
// common proxy idle timeouts.
var KeepAlive = 30 * time.Second

// ServeSSE streams hub events to w until the request ends or the hub
// stops. initial events are written before anything published.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, initial ...Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("could not clear write deadline", logger.Fields("client_id", clientID, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	hub.Register(client)
	defer hub.Unregister(client)

	connected, _ := NewEvent(EventConnected, map[string]string{"client_id": clientID})
	write(w, connected)
	for _, ev := range initial {
		write(w, ev)
	}
	flusher.Flush()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			write(w, ev)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func write(w http.ResponseWriter, ev Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
}
