package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"space-reservation-backend/config"
	"space-reservation-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	// Any booking or catalogue change can alter slots and space listings.
	invalidate := mw.InvalidateOnWrite(cacheStore, "/api/spaces")
	actor := mw.RequireActor()

	api := r.Group("/api")
	api.Use(mw.Actor(), rateLimiter)
	{
		api.POST("/users", h.RegisterUser)
		api.GET("/users/:id", h.GetUser)
		api.GET("/users/:id/reservations", h.ListUserReservations)

		api.GET("/spaces", caching, h.ListSpaces)
		api.POST("/spaces", actor, invalidate, h.CreateSpace)
		api.GET("/spaces/:id", h.GetSpace)
		api.PATCH("/spaces/:id/active", actor, invalidate, h.SetSpaceActive)
		api.GET("/spaces/:id/similar", h.SimilarSpaces)
		api.GET("/spaces/:id/slots", caching, h.GetSlots)
		api.GET("/spaces/:id/occupancy", h.GetOccupancy)

		api.POST("/reservations", actor, invalidate, h.CreateReservation)
		api.GET("/reservations", h.ListReservations)
		api.GET("/reservations/:id", h.GetReservation)
		api.PATCH("/reservations/:id", actor, invalidate, h.RescheduleReservation)
		api.POST("/reservations/:id/cancel", actor, invalidate, h.CancelReservation)
		api.POST("/reminders", actor, h.SendReminders)

		api.GET("/stats", h.GetStats)
		api.GET("/notifications/stats", h.GetNotificationStats)

		api.GET("/subscriptions", actor, h.GetSubscription)
		api.PUT("/subscriptions", actor, h.PutSubscription)
		api.DELETE("/subscriptions", actor, h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
