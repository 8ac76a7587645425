package model

import (
    "fmt"
    "time"
)

const CollectionNotifications = "notifications"

const (
    NotificationFollow        = "follow"
    NotificationFollowRequest = "follow_request"
)

const (
    NotificationStatusPending  = "pending"
    NotificationStatusAccepted = "accepted"
)

// NotificationRecord 通知记录，只追加，创建后不再修改
type NotificationRecord struct {
    ID          string    `json:"id"`
    Type        string    `json:"type"`
    SenderID    string    `json:"sender_id"`
    RecipientID string    `json:"recipient_id"`
    Status      string    `json:"status,omitempty"`
    CreatedAt   time.Time `json:"created_at"`
}

func (n *NotificationRecord) Validate() error {
    if n.ID == "" || n.SenderID == "" || n.RecipientID == "" {
        return fmt.Errorf("notification: id, sender_id and recipient_id are required")
    }
    if n.Type != NotificationFollow && n.Type != NotificationFollowRequest {
        return fmt.Errorf("notification: invalid type %q", n.Type)
    }
    return nil
}
