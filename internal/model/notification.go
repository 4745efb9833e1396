package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType is the delivery channel of a notification.
type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
	NotificationPush  NotificationType = "push"
)

// NotificationTypes lists every supported channel.
var NotificationTypes = []NotificationType{NotificationEmail, NotificationSMS, NotificationPush}

// ParseNotificationType validates a channel name.
func ParseNotificationType(s string) (NotificationType, error) {
	for _, t := range NotificationTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", s)
}

// Notification is a message produced by the booking workflow and delivered
// asynchronously by the notification worker pool.
type Notification struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	UserID    int64             `gorm:"index;not null" json:"userId"`
	Type      NotificationType  `gorm:"size:16;not null" json:"type"`
	Title     string            `gorm:"size:256;not null" json:"title"`
	Message   string            `gorm:"size:1024;not null" json:"message"`
	Data      datatypes.JSONMap `json:"data"`
	Sent      bool              `gorm:"not null;index" json:"sent"`
	Attempts  int               `gorm:"not null;default:0;index" json:"attempts"`
	CreatedAt time.Time         `gorm:"not null" json:"createdAt"`
	SentAt    *time.Time        `json:"sentAt"`
}

// BeforeCreate assigns a random ID when none was set.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// MarkAsSent records a successful delivery.
func (n *Notification) MarkAsSent(now time.Time) {
	n.Sent = true
	n.SentAt = &now
}
