package service

import (
    "context"
    "time"

    "github.com/getsentry/sentry-go"
    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/d60-Lab/social-engine/internal/model"
    "github.com/d60-Lab/social-engine/internal/repository"
    "github.com/d60-Lab/social-engine/pkg/logger"
)

// Notifier 通知发射器。写入失败不影响触发它的图变更，
// 只单独记日志并上报 sentry
type Notifier interface {
    Follow(ctx context.Context, senderID, recipientID string)
    FollowRequest(ctx context.Context, senderID, recipientID string)
    RequestAccepted(ctx context.Context, senderID, recipientID string)
}

type notifier struct {
    repo repository.NotificationRepository
}

func NewNotifier(repo repository.NotificationRepository) Notifier {
    return &notifier{repo: repo}
}

func (n *notifier) Follow(ctx context.Context, senderID, recipientID string) {
    n.emit(ctx, model.NotificationFollow, "", senderID, recipientID)
}

func (n *notifier) FollowRequest(ctx context.Context, senderID, recipientID string) {
    n.emit(ctx, model.NotificationFollowRequest, model.NotificationStatusPending, senderID, recipientID)
}

func (n *notifier) RequestAccepted(ctx context.Context, senderID, recipientID string) {
    n.emit(ctx, model.NotificationFollow, model.NotificationStatusAccepted, senderID, recipientID)
}

func (n *notifier) emit(ctx context.Context, typ, status, senderID, recipientID string) {
    record := &model.NotificationRecord{
        ID:          uuid.New().String(),
        Type:        typ,
        SenderID:    senderID,
        RecipientID: recipientID,
        Status:      status,
        CreatedAt:   time.Now(),
    }
    if err := n.repo.Append(ctx, record); err != nil {
        logger.Warn("notification append failed",
            zap.String("type", typ),
            zap.String("sender", senderID),
            zap.String("recipient", recipientID),
            zap.Error(err))
        sentry.CaptureException(err)
    }
}
