// Package server runs the operator HTTP API on Gin.
//
// The server is a component: it binds its port on Start and shuts down
// gracefully on Stop. Routes are registered on Engine before Start.
//
// Middleware (server/middleware): panic recovery, request IDs and request
// logging. Endpoints (server/endpoint): /healthz and /version.
package server
