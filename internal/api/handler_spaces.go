package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/mw"
)

// ListSpaces returns active spaces filtered by ?type=, ?min_capacity= and
// ?max_capacity=.
func (h *Handler) ListSpaces(c *gin.Context) {
	minCap, ok := queryInt(c, "min_capacity")
	if !ok {
		return
	}
	maxCap, ok := queryInt(c, "max_capacity")
	if !ok {
		return
	}
	spaces, err := h.spaces.Search(c.Request.Context(), booking.Criteria{
		Type:        c.Query("type"),
		MinCapacity: minCap,
		MaxCapacity: maxCap,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(spaces))
}

type createSpaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

func (h *Handler) CreateSpace(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	var req createSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	space, err := h.spaces.Create(c.Request.Context(), actorID, booking.SpaceInput{
		Name:        req.Name,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, space)
}

func (h *Handler) GetSpace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	space, err := h.spaces.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *Handler) SetSpaceActive(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	space, err := h.spaces.SetActive(c.Request.Context(), actorID, id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *Handler) SimilarSpaces(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	spaces, err := h.spaces.Similar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(spaces))
}

// GetSlots lists the slots of a space on ?date=. With ?available=true only
// free slots are returned.
func (h *Handler) GetSlots(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	slots, err := h.bookings.Slots(c.Request.Context(), id, date, c.Query("available") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spaceId": id, "date": date, "slots": slots})
}

// GetOccupancy reports the occupancy rate of a space between ?from= and ?to=.
func (h *Handler) GetOccupancy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	rate, err := h.spaces.OccupancyRate(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spaceId": id, "from": from, "to": to, "occupancyRate": rate})
}
