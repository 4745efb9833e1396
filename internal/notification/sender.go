package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"space-reservation-backend/internal/model"
)

// LogSender stands in for the email and SMS gateways by writing the message
// to the log.
type LogSender struct {
	Channel model.NotificationType
}

func (s LogSender) Send(ctx context.Context, n *model.Notification) error {
	log.Printf("[%s] to user %d: %s - %s", s.Channel, n.UserID, n.Title, n.Message)
	return nil
}

// WebPushClient defines the interface for sending a web push notification.
type WebPushClient interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// webPushClient is the real implementation using the webpush library.
type webPushClient struct{}

func (webPushClient) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionRepository lists and removes a user's push endpoints.
type SubscriptionRepository interface {
	FindByUserID(ctx context.Context, userID int64) ([]model.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// PushSender delivers notifications to every browser a user subscribed.
type PushSender struct {
	subscriptions SubscriptionRepository
	options       *webpush.Options
	client        WebPushClient
}

func NewPushSender(subscriptions SubscriptionRepository, options *webpush.Options) *PushSender {
	return &PushSender{
		subscriptions: subscriptions,
		options:       options,
		client:        webPushClient{},
	}
}

type pushPayload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Send pushes to each subscription of the user. Expired subscriptions are
// deleted. It fails only when every attempt failed.
func (s *PushSender) Send(ctx context.Context, n *model.Notification) error {
	subscriptions, err := s.subscriptions.FindByUserID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions for user %d: %w", n.UserID, err)
	}
	if len(subscriptions) == 0 {
		log.Printf("User %d has no push subscriptions; dropping notification %s", n.UserID, n.ID)
		return nil
	}

	payload, err := json.Marshal(pushPayload{Title: n.Title, Body: n.Message, Data: n.Data})
	if err != nil {
		return err
	}

	var failed int
	for _, sub := range subscriptions {
		if err := s.sendOne(ctx, sub, payload); err != nil {
			log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
			failed++
		}
	}
	if failed == len(subscriptions) {
		return fmt.Errorf("push delivery failed for all %d subscriptions", failed)
	}
	return nil
}

func (s *PushSender) sendOne(ctx context.Context, sub model.PushSubscription, payload []byte) error {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := s.client.Send(payload, wpSub, s.options)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone:
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := s.subscriptions.Delete(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		return fmt.Errorf("subscription %s expired", sub.Endpoint)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	return nil
}

// Senders builds the per-channel senders used by the worker pool.
func Senders(subscriptions SubscriptionRepository, options *webpush.Options) map[model.NotificationType]Sender {
	return map[model.NotificationType]Sender{
		model.NotificationEmail: LogSender{Channel: model.NotificationEmail},
		model.NotificationSMS:   LogSender{Channel: model.NotificationSMS},
		model.NotificationPush:  NewPushSender(subscriptions, options),
	}
}
