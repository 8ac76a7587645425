package repository

import (
    "context"
    "time"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

type AccountRepository interface {
    Get(ctx context.Context, id string) (*model.Account, error)
    Create(ctx context.Context, account *model.Account) error
    SetPrivate(ctx context.Context, id string, private bool) error
    // AddEdge 建立关注边：双方文档在同一事务内成对更新
    AddEdge(ctx context.Context, followerID, followeeID string) error
    // RemoveEdge 移除关注边，同样成对且事务内完成
    RemoveEdge(ctx context.Context, followerID, followeeID string) error
    AddPendingRequest(ctx context.Context, recipientID, senderID string) error
    RemovePendingRequest(ctx context.Context, recipientID, senderID string) error
}

type accountRepository struct {
    store docstore.Store
}

func NewAccountRepository(store docstore.Store) AccountRepository {
    return &accountRepository{store: store}
}

func (r *accountRepository) Get(ctx context.Context, id string) (*model.Account, error) {
    var acc model.Account
    if err := r.store.Get(ctx, model.CollectionAccounts, id, &acc); err != nil {
        return nil, wrapStoreErr("account "+id+" not found", err)
    }
    return &acc, nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
    if err := account.Validate(); err != nil {
        return err
    }
    now := time.Now()
    if account.CreatedAt.IsZero() {
        account.CreatedAt = now
    }
    account.UpdatedAt = now
    return wrapStoreErr("create account", r.store.Set(ctx, model.CollectionAccounts, account.ID, account))
}

func (r *accountRepository) SetPrivate(ctx context.Context, id string, private bool) error {
    err := r.store.Update(ctx, model.CollectionAccounts, id,
        docstore.Set("is_private", private),
        docstore.Set("updated_at", time.Now()),
    )
    return wrapStoreErr("account "+id+" not found", err)
}

func (r *accountRepository) AddEdge(ctx context.Context, followerID, followeeID string) error {
    return r.pairUpdate(ctx, followerID, followeeID, docstore.OpAddToSet)
}

func (r *accountRepository) RemoveEdge(ctx context.Context, followerID, followeeID string) error {
    return r.pairUpdate(ctx, followerID, followeeID, docstore.OpRemoveFromSet)
}

// pairUpdate 对 follower.following 和 followee.followers 的成对修改，
// 整体成功或整体回滚，保证边的对称不变量
func (r *accountRepository) pairUpdate(ctx context.Context, followerID, followeeID string, op docstore.DeltaOp) error {
    err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
        now := time.Now()
        if err := tx.Update(ctx, model.CollectionAccounts, followerID,
            docstore.Delta{Field: "following", Op: op, Value: followeeID},
            docstore.Set("updated_at", now),
        ); err != nil {
            return err
        }
        return tx.Update(ctx, model.CollectionAccounts, followeeID,
            docstore.Delta{Field: "followers", Op: op, Value: followerID},
            docstore.Set("updated_at", now),
        )
    })
    return wrapStoreErr("update follow edge", err)
}

func (r *accountRepository) AddPendingRequest(ctx context.Context, recipientID, senderID string) error {
    err := r.store.Update(ctx, model.CollectionAccounts, recipientID,
        docstore.AddToSet("pending_follow_requests", senderID),
        docstore.Set("updated_at", time.Now()),
    )
    return wrapStoreErr("account "+recipientID+" not found", err)
}

func (r *accountRepository) RemovePendingRequest(ctx context.Context, recipientID, senderID string) error {
    err := r.store.Update(ctx, model.CollectionAccounts, recipientID,
        docstore.RemoveFromSet("pending_follow_requests", senderID),
        docstore.Set("updated_at", time.Now()),
    )
    return wrapStoreErr("account "+recipientID+" not found", err)
}
