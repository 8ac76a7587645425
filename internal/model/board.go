package model

import (
    "fmt"
    "time"
    "unicode/utf8"
)

// BoardNameMaxLen 看板名称长度上限
const BoardNameMaxLen = 40

// BoardsCollection 每个用户一个看板子集合
func BoardsCollection(ownerID string) string { return "users/" + ownerID + "/boards" }

// CuratedBoard 用户命名的收藏看板。
// 不变量：PostCount == len(PostIDs)；PostIDs 有序无重复，且每个 id 都有对应收藏
type CuratedBoard struct {
    ID        string    `json:"id"`
    Name      string    `json:"name"`
    PostIDs   []string  `json:"post_ids"`
    PostCount int       `json:"post_count"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`
}

func (b *CuratedBoard) Validate() error {
    if b.ID == "" {
        return fmt.Errorf("board: id is required")
    }
    if b.Name == "" {
        return fmt.Errorf("board: name is required")
    }
    // 按字符数而不是字节数，与 binding 的 max 规则一致
    if utf8.RuneCountInString(b.Name) > BoardNameMaxLen {
        return fmt.Errorf("board: name exceeds %d chars", BoardNameMaxLen)
    }
    if b.PostCount != len(b.PostIDs) {
        return fmt.Errorf("board: post_count %d does not match %d post ids", b.PostCount, len(b.PostIDs))
    }
    seen := make(map[string]struct{}, len(b.PostIDs))
    for _, id := range b.PostIDs {
        if _, dup := seen[id]; dup {
            return fmt.Errorf("board: duplicate post id %q", id)
        }
        seen[id] = struct{}{}
    }
    return nil
}

func (b *CuratedBoard) ContainsPost(postID string) bool { return HasID(b.PostIDs, postID) }
