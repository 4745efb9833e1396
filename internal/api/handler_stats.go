package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"space-reservation-backend/internal/notification"
)

// GetStats aggregates reservations between ?from= and ?to=.
func (h *Handler) GetStats(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	stats, err := h.bookings.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetNotificationStats reports the undelivered notification backlog.
func (h *Handler) GetNotificationStats(c *gin.Context) {
	stats, err := notification.Pending(c.Request.Context(), h.notifications)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
