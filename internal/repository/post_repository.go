package repository

import (
    "context"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

// PostRepository 帖子集合由内容服务维护，引擎只读取作者信息；
// Create 仅用于种子数据与测试
type PostRepository interface {
    Get(ctx context.Context, id string) (*model.Post, error)
    Create(ctx context.Context, post *model.Post) error
}

type postRepository struct {
    store docstore.Store
}

func NewPostRepository(store docstore.Store) PostRepository {
    return &postRepository{store: store}
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
    var post model.Post
    if err := r.store.Get(ctx, model.CollectionPosts, id, &post); err != nil {
        return nil, wrapStoreErr("post "+id+" not found", err)
    }
    return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
    return wrapStoreErr("create post", r.store.Set(ctx, model.CollectionPosts, post.ID, post))
}
