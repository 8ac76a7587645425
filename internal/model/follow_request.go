package model

import (
    "fmt"
    "time"
)

const CollectionFollowRequests = "follow_requests"

// 请求状态：同一 (sender, recipient) 最多存在一条 pending
const (
    FollowRequestPending  = "pending"
    FollowRequestResolved = "resolved"
)

// FollowRequest 私密账号的关注请求
type FollowRequest struct {
    ID          string    `json:"id"`
    SenderID    string    `json:"sender_id"`
    RecipientID string    `json:"recipient_id"`
    Status      string    `json:"status"`
    CreatedAt   time.Time `json:"created_at"`
}

func (r *FollowRequest) Validate() error {
    if r.ID == "" || r.SenderID == "" || r.RecipientID == "" {
        return fmt.Errorf("follow request: id, sender_id and recipient_id are required")
    }
    if r.Status != FollowRequestPending && r.Status != FollowRequestResolved {
        return fmt.Errorf("follow request: invalid status %q", r.Status)
    }
    return nil
}
