package booking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"space-reservation-backend/internal/model"
)

// Notification kinds stored under the "type" data key.
const (
	KindConfirmation = "reservation_confirmation"
	KindCancellation = "reservation_cancellation"
	KindReschedule   = "reservation_rescheduled"
	KindReminder     = "reservation_reminder"
)

// Notifier hands a notification to the delivery pipeline. Delivery itself
// is asynchronous and its failures never reach the caller.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// NotificationBuilder turns lifecycle events into notification values.
type NotificationBuilder struct {
	Channel model.NotificationType
	Now     func() time.Time
}

func NewNotificationBuilder(channel model.NotificationType) *NotificationBuilder {
	return &NotificationBuilder{Channel: channel, Now: time.Now}
}

func (b *NotificationBuilder) Confirmed(res *model.Reservation, spaceName string) *model.Notification {
	msg := fmt.Sprintf("Your reservation for %s on %s from %s to %s has been confirmed.",
		spaceName, displayDate(res), res.StartTime, res.EndTime)
	data := b.data(KindConfirmation, res, spaceName)
	data["end_time"] = res.EndTime.String()
	return b.build(res.UserID, "Reservation Confirmed", msg, data)
}

func (b *NotificationBuilder) Cancelled(res *model.Reservation, spaceName string) *model.Notification {
	msg := fmt.Sprintf("Your reservation for %s on %s at %s has been cancelled.",
		spaceName, displayDate(res), res.StartTime)
	return b.build(res.UserID, "Reservation Cancelled", msg, b.data(KindCancellation, res, spaceName))
}

func (b *NotificationBuilder) Rescheduled(res *model.Reservation, spaceName string) *model.Notification {
	msg := fmt.Sprintf("Your reservation for %s has been moved to %s from %s to %s.",
		spaceName, displayDate(res), res.StartTime, res.EndTime)
	data := b.data(KindReschedule, res, spaceName)
	data["end_time"] = res.EndTime.String()
	return b.build(res.UserID, "Reservation Rescheduled", msg, data)
}

func (b *NotificationBuilder) Reminder(res *model.Reservation, spaceName string) *model.Notification {
	msg := fmt.Sprintf("Reminder: you have a reservation for %s on %s at %s.",
		spaceName, displayDate(res), res.StartTime)
	return b.build(res.UserID, "Reservation Reminder", msg, b.data(KindReminder, res, spaceName))
}

func (b *NotificationBuilder) data(kind string, res *model.Reservation, spaceName string) datatypes.JSONMap {
	return datatypes.JSONMap{
		"type":           kind,
		"reservation_id": res.ID,
		"space_name":     spaceName,
		"date":           res.ReservationDate.String(),
		"start_time":     res.StartTime.String(),
	}
}

func (b *NotificationBuilder) build(userID int64, title, message string, data datatypes.JSONMap) *model.Notification {
	channel := b.Channel
	if channel == "" {
		channel = model.NotificationEmail
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return &model.Notification{
		UserID:    userID,
		Type:      channel,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: now().UTC(),
	}
}

func displayDate(res *model.Reservation) string {
	return res.ReservationDate.At(0, time.UTC).Format("02/01/2006")
}
