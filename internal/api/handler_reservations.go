package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
	"space-reservation-backend/internal/mw"
)

type createReservationRequest struct {
	SpaceID   int64              `json:"spaceId" binding:"required"`
	Date      calendar.Date      `json:"date"`
	StartTime calendar.TimeOfDay `json:"startTime"`
	EndTime   calendar.TimeOfDay `json:"endTime"`
	Purpose   string             `json:"purpose"`
}

// CreateReservation books a space for the acting user.
func (h *Handler) CreateReservation(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.bookings.Book(c.Request.Context(), booking.BookRequest{
		UserID:  actorID,
		SpaceID: req.SpaceID,
		Date:    req.Date,
		Start:   req.StartTime,
		End:     req.EndTime,
		Purpose: req.Purpose,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ListReservations filters by ?date= or ?status=.
func (h *Handler) ListReservations(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		out []model.Reservation
		err error
	)
	switch {
	case c.Query("date") != "":
		date, ok := queryDate(c, "date")
		if !ok {
			return
		}
		out, err = h.bookings.ListByDate(ctx, date)
	case c.Query("status") != "":
		status, perr := model.ParseStatus(c.Query("status"))
		if perr != nil {
			badRequest(c, perr.Error())
			return
		}
		out, err = h.bookings.ListByStatus(ctx, status)
	default:
		badRequest(c, "date or status is required")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out))
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type rescheduleRequest struct {
	Date      calendar.Date      `json:"date"`
	StartTime calendar.TimeOfDay `json:"startTime"`
	EndTime   calendar.TimeOfDay `json:"endTime"`
}

// RescheduleReservation moves a reservation owned by the actor, or any
// reservation when the actor is an admin.
func (h *Handler) RescheduleReservation(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.bookings.Reschedule(c.Request.Context(), id, actorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.bookings.Cancel(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListUserReservations returns every reservation of a user, newest first.
func (h *Handler) ListUserReservations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.bookings.ListByUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(out))
}

// SendReminders queues reminders for the confirmed reservations of ?date=.
// Admin only.
func (h *Handler) SendReminders(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	n, err := h.bookings.SendReminders(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": n})
}

func (h *Handler) requireAdmin(c *gin.Context) bool {
	actorID, _ := mw.ActorID(c)
	user, err := h.users.Get(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if !user.IsAdmin() {
		respondError(c, booking.ErrForbidden)
		return false
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
