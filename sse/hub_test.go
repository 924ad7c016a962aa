package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	t.Cleanup(func() {
		h.Stop()
		<-done
	})
	return h
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("client channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestHubPublish(t *testing.T) {
	h := startHub(t)
	a, b := NewClient("a"), NewClient("b")
	h.Register(a)
	h.Register(b)

	if err := h.Publish(EventStatus, map[string]any{"state": "paused", "transfers": 12}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*Client{a, b} {
		ev := receive(t, c)
		if ev.Type != EventStatus || string(ev.Data) != `{"state":"paused","transfers":12}` {
			t.Errorf("client %s got %s %s", c.ID(), ev.Type, ev.Data)
		}
	}
	if n := h.ClientCount(); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	h.Unregister(a)
	if _, ok := <-a.Events(); ok {
		t.Error("expected unregistered client to be closed")
	}
	if n := h.ClientCount(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := startHub(t)
	c := NewClient("slow")
	h.Register(c)
	for i := 0; i < clientBuffer+5; i++ {
		if err := h.Publish(EventStatus, i); err != nil {
			t.Fatal(err)
		}
	}
	// Run takes the registration only after the last fan-out.
	h.Register(NewClient("fast"))
	if got := len(c.Events()); got != clientBuffer {
		t.Errorf("expected a full buffer of %d, got %d", clientBuffer, got)
	}
}

func TestHubStop(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	c := NewClient("a")
	h.Register(c)
	h.Stop()
	h.Stop()

	select {
	case _, ok := <-c.Events():
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("client not closed on stop")
	}
	if err := h.Publish(EventStatus, 1); err != ErrHubStopped {
		t.Errorf("expected ErrHubStopped, got %v", err)
	}
	late := NewClient("late")
	h.Register(late)
	if _, ok := <-late.Events(); ok {
		t.Error("expected a client registered after stop to be closed")
	}
}

func TestServeSSE(t *testing.T) {
	h := startHub(t)
	initial, err := NewEvent(EventStatus, map[string]string{"state": "idle"})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(h, w, r, "dash-1", initial)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	next := func() string {
		var lines []string
		for sc.Scan() {
			if sc.Text() == "" {
				return strings.Join(lines, "\n")
			}
			lines = append(lines, sc.Text())
		}
		t.Fatalf("stream ended: %v", sc.Err())
		return ""
	}

	if got := next(); got != "event: connected\ndata: {\"client_id\":\"dash-1\"}" {
		t.Errorf("unexpected first event %q", got)
	}
	if got := next(); got != "event: status\ndata: {\"state\":\"idle\"}" {
		t.Errorf("unexpected initial event %q", got)
	}
	if err := h.Publish(EventStatus, map[string]string{"state": "running"}); err != nil {
		t.Fatal(err)
	}
	if got := next(); got != "event: status\ndata: {\"state\":\"running\"}" {
		t.Errorf("unexpected published event %q", got)
	}
}

func TestComponent(t *testing.T) {
	c := NewComponent("/events", nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := c.Health(context.Background())
	if h.Message != "0 clients" {
		t.Errorf("unexpected health %+v", h)
	}
	if d := c.Describe(); d.Type != "sse" || d.Details != "/events" {
		t.Errorf("unexpected description %+v", d)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
