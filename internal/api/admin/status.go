package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tashware/muazzin/internal/loop"
)

// Refresher triggers the monthly cache job on demand. Satisfied by
// jobs.Jobs.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

type statusController struct {
	loops     *loop.Manager
	refresher Refresher
	startedAt time.Time
}

// RegisterStatusRoutes mounts the operational endpoints behind the JWT
// middleware.
func RegisterStatusRoutes(r gin.IRoutes, loops *loop.Manager, refresher Refresher) {
	ctl := &statusController{loops: loops, refresher: refresher, startedAt: time.Now()}

	r.GET("/status", ctl.getStatus)
	r.GET("/loops", ctl.getLoops)
	r.POST("/cache/refresh", ctl.refreshCache)
}

// GET /api/admin/status
func (s *statusController) getStatus(c *gin.Context) {
	active := s.loops.Active()
	c.JSON(http.StatusOK, gin.H{
		"uptime":       time.Since(s.startedAt).String(),
		"active_loops": len(active),
	})
}

// GET /api/admin/loops
func (s *statusController) getLoops(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"loops": s.loops.Active()})
}

// POST /api/admin/cache/refresh
func (s *statusController) refreshCache(c *gin.Context) {
	go s.refresher.RefreshAll(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
