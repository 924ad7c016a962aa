package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/liquidkit/component"
)

// RouteInfo is an HTTP route served by the operator API.
type RouteInfo struct {
	Method string
	Path   string
}

// Summary collects what a process started with and prints it as a banner.
type Summary struct {
	service         string
	version         string
	environment     string
	startupDuration time.Duration
	protocol        string
	details         []string
	routes          []RouteInfo
}

// NewSummary returns an empty summary for service.
func NewSummary(service, version, environment string) *Summary {
	return &Summary{service: service, version: version, environment: environment}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// SetProtocol names the protocol the process is about to run, with
// one-line details such as the deck layout or the pick-lists in use.
func (s *Summary) SetProtocol(name string, details ...string) {
	s.protocol = name
	s.details = append(s.details, details...)
}

// TrackRoute records an operator API route.
func (s *Summary) TrackRoute(method, path string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path})
}

// Display writes the banner to w, including the live health of the
// registry's components.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s (%s) started in %.2fs\n", s.service, s.version, s.environment, s.startupDuration.Seconds())

	if s.protocol != "" {
		fmt.Fprintf(w, "\nProtocol %s\n", s.protocol)
		for i, d := range s.details {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(s.details)), d)
		}
	}

	if registry != nil {
		descs := registry.Descriptions()
		health := make(map[string]component.Health)
		for _, h := range registry.HealthAll(context.Background()) {
			health[h.Name] = h
		}
		if len(descs) > 0 {
			fmt.Fprintf(w, "\nComponents\n")
			for i, d := range descs {
				h, ok := health[d.Name]
				status := "unknown"
				if ok {
					status = string(h.Status)
				}
				line := fmt.Sprintf("%s %s [%s] %s", healthIcon(h.Status, ok), d.Name, d.Type, d.Details)
				if ok && h.Message != "" {
					line += " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s (%s)\n", treePrefix(i, len(descs)), strings.TrimSpace(line), status)
			}
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nOperator API\n")
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-5s %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus, known bool) string {
	if !known {
		return "?"
	}
	switch status {
	case component.StatusHealthy:
		return "✓"
	case component.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}
