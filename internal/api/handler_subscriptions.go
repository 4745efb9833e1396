package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"space-reservation-backend/internal/model"
	"space-reservation-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription creates or replaces the acting user's push subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	actorID, _ := mw.ActorID(c)
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   actorID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.subscriptions.Upsert(c.Request.Context(), &subscription); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// ownedSubscription loads a subscription the actor owns, or any subscription
// for an admin. It writes the error response and returns nil otherwise.
func (h *Handler) ownedSubscription(c *gin.Context, endpoint string) *model.PushSubscription {
	subscription, err := h.subscriptions.Get(c.Request.Context(), endpoint)
	if err != nil {
		respondError(c, err)
		return nil
	}
	if subscription == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return nil
	}
	if actorID, _ := mw.ActorID(c); subscription.UserID == actorID {
		return subscription
	}
	if !h.requireAdmin(c) {
		return nil
	}
	return subscription
}

// DeleteSubscription removes a subscription owned by the actor.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if h.ownedSubscription(c, req.Endpoint) == nil {
		return
	}

	if err := h.subscriptions.Delete(c.Request.Context(), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSubscription looks one of the actor's subscriptions up by ?endpoint=.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		badRequest(c, "endpoint is required")
		return
	}

	subscription := h.ownedSubscription(c, endpoint)
	if subscription == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"endpoint": subscription.Endpoint, "userId": subscription.UserID})
}
