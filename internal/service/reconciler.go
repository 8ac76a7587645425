package service

import (
    "context"
    "time"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
    "github.com/d60-Lab/social-engine/internal/repository"
    "github.com/d60-Lab/social-engine/pkg/errs"
)

// AccountSource 调解器读取账号快照的来源；sessionID 用于会话级缓存隔离
type AccountSource interface {
    Account(ctx context.Context, sessionID, id string) (*model.Account, error)
}

// PostRef 可见收藏的引用，按收藏时间倒序返回给 UI
type PostRef struct {
    PostID       string    `json:"post_id"`
    BookmarkedAt time.Time `json:"bookmarked_at"`
}

// Reconciler 把非规范化状态拉回不变量之内：
// (a) 读收藏时做隐私可见性过滤，失效收藏当场删除并级联；
// (b) 收藏消失时修剪所有引用它的看板，保持 post_count == len(post_ids)
type Reconciler struct {
    bookmarks repository.BookmarkRepository
    boards    repository.BoardRepository
    posts     repository.PostRepository
    accounts  AccountSource
}

func NewReconciler(bookmarks repository.BookmarkRepository, boards repository.BoardRepository, posts repository.PostRepository, accounts AccountSource) *Reconciler {
    return &Reconciler{bookmarks: bookmarks, boards: boards, posts: posts, accounts: accounts}
}

// ListVisibleBookmarks 读即清理：私密作者且观察者已不在其粉丝集合的收藏
// 被删除并触发看板级联，而不是仅在展示层隐藏
func (r *Reconciler) ListVisibleBookmarks(ctx context.Context, viewerID string) ([]PostRef, error) {
    if viewerID == "" {
        return nil, errs.Unauthenticated("missing acting account")
    }
    list, err := r.bookmarks.List(ctx, viewerID)
    if err != nil {
        return nil, err
    }
    visible := make([]PostRef, 0, len(list))
    for _, bm := range list {
        ok, err := r.bookmarkVisible(ctx, viewerID, bm.PostID)
        if err != nil {
            return nil, err
        }
        if !ok {
            if err := r.evictBookmark(ctx, viewerID, bm.PostID); err != nil {
                return nil, err
            }
            continue
        }
        visible = append(visible, PostRef{PostID: bm.PostID, BookmarkedAt: bm.BookmarkedAt})
    }
    return visible, nil
}

func (r *Reconciler) bookmarkVisible(ctx context.Context, viewerID, postID string) (bool, error) {
    post, err := r.posts.Get(ctx, postID)
    if errs.IsNotFound(err) {
        // 帖子已不存在：悬空引用同样按失效处理
        return false, nil
    }
    if err != nil {
        return false, err
    }
    if post.AuthorID == viewerID {
        return true, nil
    }
    author, err := r.accounts.Account(ctx, viewerID, post.AuthorID)
    if errs.IsNotFound(err) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    if !author.IsPrivate {
        return true, nil
    }
    return author.HasFollower(viewerID), nil
}

func (r *Reconciler) evictBookmark(ctx context.Context, ownerID, postID string) error {
    if err := r.bookmarks.Remove(ctx, ownerID, postID); err != nil {
        return err
    }
    return r.CascadeRemoval(ctx, ownerID, postID)
}

// CascadeRemoval 收藏删除后的引用完整性级联：
// 每个看板扫描一次，引用被删 id 的看板在单文档事务里收缩并重算计数
func (r *Reconciler) CascadeRemoval(ctx context.Context, ownerID, postID string) error {
    boards, err := r.boards.ListByOwner(ctx, ownerID)
    if err != nil {
        return err
    }
    for _, b := range boards {
        if !b.ContainsPost(postID) {
            continue
        }
        _, err := r.boards.Mutate(ctx, ownerID, b.ID, func(_ docstore.Tx, board *model.CuratedBoard) (bool, error) {
            if !board.ContainsPost(postID) {
                // 与并发调解竞争时可能已被移除
                return false, nil
            }
            board.PostIDs = removeID(board.PostIDs, postID)
            return true, nil
        })
        if errs.IsNotFound(err) {
            continue
        }
        if err != nil {
            return err
        }
    }
    return nil
}

// RepairBoard 去掉看板里没有对应收藏的 id；幂等，无悬空引用时不写回。
// 收藏读取与看板写回在同一事务快照里
func (r *Reconciler) RepairBoard(ctx context.Context, ownerID, boardID string) (*model.CuratedBoard, error) {
    return r.boards.Mutate(ctx, ownerID, boardID, func(tx docstore.Tx, board *model.CuratedBoard) (bool, error) {
        have, err := r.bookmarks.ExistsMapTx(ctx, tx, ownerID, board.PostIDs)
        if err != nil {
            return false, err
        }
        kept := make([]string, 0, len(board.PostIDs))
        for _, id := range board.PostIDs {
            if have[id] {
                kept = append(kept, id)
            }
        }
        if len(kept) == len(board.PostIDs) {
            return false, nil
        }
        board.PostIDs = kept
        return true, nil
    })
}

func removeID(ids []string, id string) []string {
    kept := make([]string, 0, len(ids))
    for _, v := range ids {
        if v != id {
            kept = append(kept, v)
        }
    }
    return kept
}
