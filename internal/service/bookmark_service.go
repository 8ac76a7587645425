package service

import (
    "context"

    "github.com/d60-Lab/social-engine/internal/repository"
    "github.com/d60-Lab/social-engine/pkg/errs"
)

// BookmarkService 收藏集合的写入口。删除是调解级联的触发点
type BookmarkService interface {
    Add(ctx context.Context, ownerID, postID string) error
    Remove(ctx context.Context, ownerID, postID string) error
}

type bookmarkService struct {
    bookmarks  repository.BookmarkRepository
    posts      repository.PostRepository
    reconciler *Reconciler
}

func NewBookmarkService(bookmarks repository.BookmarkRepository, posts repository.PostRepository, reconciler *Reconciler) BookmarkService {
    return &bookmarkService{bookmarks: bookmarks, posts: posts, reconciler: reconciler}
}

func (s *bookmarkService) Add(ctx context.Context, ownerID, postID string) error {
    if ownerID == "" {
        return errs.Unauthenticated("missing acting account")
    }
    if _, err := s.posts.Get(ctx, postID); err != nil {
        return err
    }
    return s.bookmarks.Add(ctx, ownerID, postID)
}

func (s *bookmarkService) Remove(ctx context.Context, ownerID, postID string) error {
    if ownerID == "" {
        return errs.Unauthenticated("missing acting account")
    }
    if err := s.bookmarks.Remove(ctx, ownerID, postID); err != nil {
        return err
    }
    // 无论删除原因如何，引用该帖子的看板都要收缩
    return s.reconciler.CascadeRemoval(ctx, ownerID, postID)
}
