package repository

import (
    "context"
    "encoding/json"
    "sort"
    "time"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

type BookmarkRepository interface {
    // Add 幂等写入：重复收藏同一帖子只覆盖时间戳之外的内容
    Add(ctx context.Context, ownerID, postID string) error
    // Remove 幂等删除
    Remove(ctx context.Context, ownerID, postID string) error
    // List 按收藏时间倒序
    List(ctx context.Context, ownerID string) ([]*model.Bookmark, error)
    // ExistsMapTx 返回给定 post id 的收藏存在性映射，读走事务快照，
    // 供看板 RMW 在事务内做引用校验
    ExistsMapTx(ctx context.Context, tx docstore.Tx, ownerID string, postIDs []string) (map[string]bool, error)
}

type bookmarkRepository struct {
    store docstore.Store
}

func NewBookmarkRepository(store docstore.Store) BookmarkRepository {
    return &bookmarkRepository{store: store}
}

func (r *bookmarkRepository) Add(ctx context.Context, ownerID, postID string) error {
    bm := &model.Bookmark{ID: postID, PostID: postID, BookmarkedAt: time.Now()}
    if err := bm.Validate(); err != nil {
        return err
    }
    return wrapStoreErr("add bookmark", r.store.Set(ctx, model.BookmarksCollection(ownerID), postID, bm))
}

func (r *bookmarkRepository) Remove(ctx context.Context, ownerID, postID string) error {
    return wrapStoreErr("remove bookmark", r.store.Delete(ctx, model.BookmarksCollection(ownerID), postID))
}

func (r *bookmarkRepository) List(ctx context.Context, ownerID string) ([]*model.Bookmark, error) {
    out, err := listBookmarks(ctx, r.store, ownerID)
    if err != nil {
        return nil, err
    }
    sort.Slice(out, func(i, j int) bool { return out[i].BookmarkedAt.After(out[j].BookmarkedAt) })
    return out, nil
}

func (r *bookmarkRepository) ExistsMapTx(ctx context.Context, tx docstore.Tx, ownerID string, postIDs []string) (map[string]bool, error) {
    return existsMap(ctx, tx, ownerID, postIDs)
}

func listBookmarks(ctx context.Context, q docstore.Querier, ownerID string) ([]*model.Bookmark, error) {
    raws, err := q.Query(ctx, model.BookmarksCollection(ownerID), nil, 0)
    if err != nil {
        return nil, wrapStoreErr("list bookmarks", err)
    }
    out := make([]*model.Bookmark, 0, len(raws))
    for _, raw := range raws {
        var bm model.Bookmark
        if err := json.Unmarshal(raw, &bm); err != nil {
            return nil, err
        }
        out = append(out, &bm)
    }
    return out, nil
}

func existsMap(ctx context.Context, q docstore.Querier, ownerID string, postIDs []string) (map[string]bool, error) {
    list, err := listBookmarks(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    have := make(map[string]bool, len(list))
    for _, bm := range list {
        have[bm.PostID] = true
    }
    out := make(map[string]bool, len(postIDs))
    for _, id := range postIDs {
        out[id] = have[id]
    }
    return out, nil
}
