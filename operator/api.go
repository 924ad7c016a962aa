package operator

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/server"
	"github.com/kbukum/liquidkit/sse"
)

// Register adds GET /status and POST /resume to r. With a nil gate,
// /resume answers CONFLICT: the run is resumed from the terminal.
func Register(r gin.IRouter, t *Tracker, g *Gate) {
	r.GET("/status", func(c *gin.Context) {
		server.RespondOK(c, t.Status())
	})
	r.POST("/resume", func(c *gin.Context) {
		if g == nil {
			server.RespondWithError(c, errors.Conflict("this run is resumed from the terminal"))
			return
		}
		message, _ := g.Waiting()
		if err := g.Resume(); err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondAccepted(c, gin.H{"resumed": message})
	})
}

// RegisterEvents adds GET /events, a Server-Sent Events stream of the
// tracker's status. Each client gets the current status first.
func RegisterEvents(r gin.IRouter, t *Tracker, hub *sse.Hub) {
	t.Subscribe(func(s Status) {
		// Publishing after shutdown has no one to reach.
		_ = hub.Publish(sse.EventStatus, s)
	})
	r.GET("/events", func(c *gin.Context) {
		current, err := sse.NewEvent(sse.EventStatus, t.Status())
		if err != nil {
			server.RespondWithError(c, errors.Internal(err))
			return
		}
		sse.ServeSSE(hub, c.Writer, c.Request, uuid.NewString(), current)
	})
}
