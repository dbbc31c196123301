package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/middlewares"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/service"
)

type Deps struct {
	Auth        *service.AuthSvc
	Scheduler   *service.Scheduler
	Ping        func(ctx context.Context) error
	CORSOrigins []string
	Log         *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(d.Log), middlewares.CORS(d.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", "err", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := NewAuthHandler(d.Auth, d.Log)
	r.POST("/register", a.Register)
	r.POST("/token", a.Token)

	secured := r.Group("")
	secured.Use(middlewares.JWTAuth(d.Auth))
	{
		secured.GET("/me", a.Me)

		rh := NewReservationHandler(d.Scheduler, d.Log)
		secured.POST("/reservations", rh.Create)
		secured.GET("/reservations", rh.List)
		secured.GET("/reservations/:id", rh.Get)
		secured.PUT("/reservations/:id", rh.Update)
		secured.DELETE("/reservations/:id", rh.Delete)
	}
	return r
}
