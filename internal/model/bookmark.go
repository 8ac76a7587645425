package model

import (
    "fmt"
    "time"
)

// BookmarksCollection 每个用户一个收藏子集合，文档 id 即 post id
func BookmarksCollection(ownerID string) string { return "users/" + ownerID + "/bookmarks" }

// Bookmark 用户对帖子的收藏引用
type Bookmark struct {
    ID           string    `json:"id"`
    PostID       string    `json:"post_id"`
    BookmarkedAt time.Time `json:"bookmarked_at"`
}

func (b *Bookmark) Validate() error {
    if b.PostID == "" {
        return fmt.Errorf("bookmark: post_id is required")
    }
    if b.ID != b.PostID {
        return fmt.Errorf("bookmark: id must equal post_id")
    }
    return nil
}
