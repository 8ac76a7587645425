package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-engine/internal/model"
)

type recordingNotificationRepo struct {
	records []*model.NotificationRecord
	err     error
}

func (r *recordingNotificationRepo) Append(_ context.Context, record *model.NotificationRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *recordingNotificationRepo) ListByRecipient(_ context.Context, recipientID string) ([]*model.NotificationRecord, error) {
	out := make([]*model.NotificationRecord, 0)
	for _, rec := range r.records {
		if rec.RecipientID == recipientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestNotifierRecords(t *testing.T) {
	repo := &recordingNotificationRepo{}
	n := NewNotifier(repo)
	ctx := context.Background()

	n.Follow(ctx, "alice", "bob")
	n.FollowRequest(ctx, "alice", "carol")
	n.RequestAccepted(ctx, "carol", "alice")

	require.Len(t, repo.records, 3)
	require.Equal(t, model.NotificationFollow, repo.records[0].Type)
	require.Empty(t, repo.records[0].Status)
	require.Equal(t, model.NotificationStatusPending, repo.records[1].Status)
	require.Equal(t, model.NotificationStatusAccepted, repo.records[2].Status)
	for _, rec := range repo.records {
		require.NotEmpty(t, rec.ID)
		require.False(t, rec.CreatedAt.IsZero())
	}
}

func TestNotifierSwallowsWriteFailures(t *testing.T) {
	repo := &recordingNotificationRepo{err: errors.New("store down")}
	n := NewNotifier(repo)

	// 通知失败不上抛，也不 panic
	n.Follow(context.Background(), "alice", "bob")
	require.Empty(t, repo.records)
}
