package repository

import (
    "context"
    "encoding/json"
    "sort"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

type NotificationRepository interface {
    // Append 只追加，写入后记录不再变化
    Append(ctx context.Context, record *model.NotificationRecord) error
    ListByRecipient(ctx context.Context, recipientID string) ([]*model.NotificationRecord, error)
}

type notificationRepository struct {
    store docstore.Store
}

func NewNotificationRepository(store docstore.Store) NotificationRepository {
    return &notificationRepository{store: store}
}

func (r *notificationRepository) Append(ctx context.Context, record *model.NotificationRecord) error {
    if err := record.Validate(); err != nil {
        return err
    }
    return wrapStoreErr("append notification", r.store.Set(ctx, model.CollectionNotifications, record.ID, record))
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*model.NotificationRecord, error) {
    raws, err := r.store.Query(ctx, model.CollectionNotifications, []docstore.Filter{
        docstore.Eq("recipient_id", recipientID),
    }, 0)
    if err != nil {
        return nil, wrapStoreErr("list notifications", err)
    }
    out := make([]*model.NotificationRecord, 0, len(raws))
    for _, raw := range raws {
        var n model.NotificationRecord
        if err := json.Unmarshal(raw, &n); err != nil {
            return nil, err
        }
        out = append(out, &n)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
    return out, nil
}
