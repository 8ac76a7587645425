package model

import (
    "fmt"
    "time"
)

const CollectionAccounts = "accounts"

// Account 账号文档。边集合（following/followers/pending）只允许 FollowService 修改，
// 且恒满足对称性：B ∈ A.Following ⇔ A ∈ B.Followers
type Account struct {
    ID                    string    `json:"id"`
    Username              string    `json:"username"`
    IsPrivate             bool      `json:"is_private"`
    Following             []string  `json:"following"`
    Followers             []string  `json:"followers"`
    PendingFollowRequests []string  `json:"pending_follow_requests"`
    CreatedAt             time.Time `json:"created_at"`
    UpdatedAt             time.Time `json:"updated_at"`
}

func (a *Account) Validate() error {
    if a.ID == "" {
        return fmt.Errorf("account: id is required")
    }
    if a.Username == "" {
        return fmt.Errorf("account: username is required")
    }
    return nil
}

func (a *Account) IsFollowing(id string) bool { return HasID(a.Following, id) }

func (a *Account) HasFollower(id string) bool { return HasID(a.Followers, id) }

func (a *Account) HasPendingFrom(id string) bool { return HasID(a.PendingFollowRequests, id) }

// HasID 判断 id 是否在集合中
func HasID(ids []string, id string) bool {
    for _, v := range ids {
        if v == id {
            return true
        }
    }
    return false
}
