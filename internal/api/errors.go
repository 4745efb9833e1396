package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// respondError maps booking errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": verr.Violations})
	case errors.Is(err, model.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case booking.IsRetryable(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryDate parses a required YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (calendar.Date, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, name+" is required")
		return calendar.Date{}, false
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		badRequest(c, err.Error())
		return calendar.Date{}, false
	}
	return d, true
}

// queryInt parses an optional integer query parameter, zero when absent.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
