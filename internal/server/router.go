package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/auth"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/config"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/metrics"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/mw"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/ws"
)

// SetupRouter wires middleware, the REST API and both hub endpoints.
func SetupRouter(cfg config.Config, h *Handler, chat *ws.ChatCoordinator, video *ws.VideoCoordinator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	// Coarse IP protection in front of everything, the per-user action
	// budgets live in the flood guard behind the handlers.
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	authed := api.Group("")
	authed.Use(auth.Middleware(cfg.JWTSecret))

	authed.POST("/rooms", h.CreateRoom)
	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms/join", h.JoinRoom)
	authed.DELETE("/rooms/:id", h.DeleteRoom)
	authed.POST("/rooms/recording/start", h.StartRecording)
	authed.POST("/rooms/recording/stop", h.StopRecording)

	r.GET("/ws/chat", ws.Serve("chat", chat, cfg.JWTSecret))
	r.GET("/ws/video", ws.Serve("video", video, cfg.JWTSecret))

	return r
}
