package model

import "time"

const CollectionPosts = "posts"

// Post 内容主体的最小投影，引擎只读（用于收藏可见性判断）
type Post struct {
    ID        string    `json:"id"`
    AuthorID  string    `json:"author_id"`
    CreatedAt time.Time `json:"created_at"`
}
