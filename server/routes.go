package server

import "github.com/kbukum/liquidkit/server/endpoint"

// RegisterDefaultEndpoints registers GET /healthz and GET /version.
func (s *Server) RegisterDefaultEndpoints(service string, checker endpoint.HealthChecker) {
	s.engine.GET("/healthz", endpoint.Health(service, checker))
	s.engine.GET("/version", endpoint.Version())
}
