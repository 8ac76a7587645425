package repository

import (
    "context"
    "encoding/json"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

type FollowRequestRepository interface {
    Create(ctx context.Context, req *model.FollowRequest) error
    Get(ctx context.Context, id string) (*model.FollowRequest, error)
    // FindPending 查找 (sender, recipient) 的未决请求；不存在时返回 (nil, nil)
    FindPending(ctx context.Context, senderID, recipientID string) (*model.FollowRequest, error)
    MarkResolved(ctx context.Context, id string) error
}

type followRequestRepository struct {
    store docstore.Store
}

func NewFollowRequestRepository(store docstore.Store) FollowRequestRepository {
    return &followRequestRepository{store: store}
}

func (r *followRequestRepository) Create(ctx context.Context, req *model.FollowRequest) error {
    if err := req.Validate(); err != nil {
        return err
    }
    return wrapStoreErr("create follow request", r.store.Set(ctx, model.CollectionFollowRequests, req.ID, req))
}

func (r *followRequestRepository) Get(ctx context.Context, id string) (*model.FollowRequest, error) {
    var req model.FollowRequest
    if err := r.store.Get(ctx, model.CollectionFollowRequests, id, &req); err != nil {
        return nil, wrapStoreErr("follow request "+id+" not found", err)
    }
    return &req, nil
}

func (r *followRequestRepository) FindPending(ctx context.Context, senderID, recipientID string) (*model.FollowRequest, error) {
    raws, err := r.store.Query(ctx, model.CollectionFollowRequests, []docstore.Filter{
        docstore.Eq("sender_id", senderID),
        docstore.Eq("recipient_id", recipientID),
        docstore.Eq("status", model.FollowRequestPending),
    }, 1)
    if err != nil {
        return nil, wrapStoreErr("query follow requests", err)
    }
    if len(raws) == 0 {
        return nil, nil
    }
    var req model.FollowRequest
    if err := json.Unmarshal(raws[0], &req); err != nil {
        return nil, err
    }
    return &req, nil
}

func (r *followRequestRepository) MarkResolved(ctx context.Context, id string) error {
    err := r.store.Update(ctx, model.CollectionFollowRequests, id,
        docstore.Set("status", model.FollowRequestResolved),
    )
    return wrapStoreErr("follow request "+id+" not found", err)
}
