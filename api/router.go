package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/airreserve/config"
	"github.com/Domenick1991/airreserve/internal/service/inventory"
	"github.com/Domenick1991/airreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires every handler behind the request id, logging, recovery and rate
// limiting middleware.
func NewRouter(
	cfg config.HTTPConfig,
	reservations reservation.ReservationUseCase,
	inv inventory.InventoryUseCase,
	db Pinger,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Logger(log),
		Recovery(log),
		RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", health(db))
	NewFlightHandler(reservations, inv).Register(router.Group("/flights"))
	NewPassengerHandler(inv).Register(router.Group("/passengers"))
	NewReservationHandler(reservations).Register(router.Group("/reservations"))

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
