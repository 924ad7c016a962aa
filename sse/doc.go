// Package sse streams run events to operator dashboards over
// Server-Sent Events.
//
// A Hub fans published events out to every connected client. ServeSSE
// holds one HTTP connection open and writes the client's events to it
// until the request ends or the hub stops.
//
//	events := sse.NewComponent("/events", log)
//	registry.Register(events)
//	router.GET("/events", func(c *gin.Context) {
//	    sse.ServeSSE(events.Hub(), c.Writer, c.Request, uuid.NewString())
//	})
//	events.Hub().Publish(sse.EventStatus, status)
package sse
