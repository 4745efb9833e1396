package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"space-reservation-backend/internal/booking"
	"space-reservation-backend/internal/model"
	"space-reservation-backend/internal/notification"
)

// SubscriptionStore manages push subscriptions for the HTTP layer.
type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	Get(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	bookings      *booking.Service
	spaces        *booking.SpaceService
	users         *booking.UserService
	subscriptions SubscriptionStore
	notifications notification.Repository
	webpush       *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(
	bookings *booking.Service,
	spaces *booking.SpaceService,
	users *booking.UserService,
	subscriptions SubscriptionStore,
	notifications notification.Repository,
	webpushOptions *webpush.Options,
) *Handler {
	return &Handler{
		bookings:      bookings,
		spaces:        spaces,
		users:         users,
		subscriptions: subscriptions,
		notifications: notifications,
		webpush:       webpushOptions,
	}
}
