package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-engine/internal/docstore"
	"github.com/d60-Lab/social-engine/internal/model"
	"github.com/d60-Lab/social-engine/internal/repository"
	"github.com/d60-Lab/social-engine/pkg/errs"
)

type followFixture struct {
	store         docstore.Store
	accounts      repository.AccountRepository
	requests      repository.FollowRequestRepository
	notifications repository.NotificationRepository
	svc           FollowService
}

func newFollowFixture(t *testing.T) *followFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	store, err := docstore.NewGormStore(db, 5)
	require.NoError(t, err)

	accounts := repository.NewAccountRepository(store)
	requests := repository.NewFollowRequestRepository(store)
	notifications := repository.NewNotificationRepository(store)
	svc := NewFollowService(accounts, requests, NewNotifier(notifications), NewPairLock(), 3)
	return &followFixture{store: store, accounts: accounts, requests: requests, notifications: notifications, svc: svc}
}

func (f *followFixture) seedAccount(t *testing.T, id string, private bool) {
	t.Helper()
	require.NoError(t, f.accounts.Create(context.Background(), &model.Account{
		ID: id, Username: id, IsPrivate: private,
	}))
}

func TestToggleFollowPublic(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", false)

	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeFollowing, result.Outcome)

	// 边的对称性：双方文档同时更新
	alice, err := f.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.accounts.Get(ctx, "bob")
	require.NoError(t, err)
	require.True(t, alice.IsFollowing("bob"))
	require.True(t, bob.HasFollower("alice"))
	require.False(t, bob.IsFollowing("alice"))

	// 目标收到关注通知
	list, err := f.notifications.ListByRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.NotificationFollow, list[0].Type)
	require.Equal(t, "alice", list[0].SenderID)
}

func TestToggleFollowRoundTrip(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", false)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeNotFollowing, result.Outcome)

	alice, err := f.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.accounts.Get(ctx, "bob")
	require.NoError(t, err)
	require.False(t, alice.IsFollowing("bob"))
	require.False(t, bob.HasFollower("alice"))
}

func TestToggleFollowPrivate(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeRequestPending, result.Outcome)

	// 不建边，只挂未决请求
	alice, err := f.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.accounts.Get(ctx, "bob")
	require.NoError(t, err)
	require.False(t, alice.IsFollowing("bob"))
	require.True(t, bob.HasPendingFrom("alice"))

	pending, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, pending)

	list, err := f.notifications.ListByRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.NotificationFollowRequest, list[0].Type)
	require.Equal(t, model.NotificationStatusPending, list[0].Status)
}

func TestToggleFollowPrivateDuplicate(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeRequestPending, result.Outcome)
	require.Equal(t, "request already pending", result.Message)

	// 重复尝试不产生第二条请求、第二条通知
	raws, err := f.store.Query(ctx, model.CollectionFollowRequests, []docstore.Filter{
		docstore.Eq("sender_id", "alice"),
		docstore.Eq("recipient_id", "bob"),
	}, 0)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	list, err := f.notifications.ListByRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUnfollowPrivateBypassesRequestFlow(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	// 已存在的边（例如转私密前建立的）可以直接取关
	require.NoError(t, f.accounts.AddEdge(ctx, "alice", "bob"))

	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeNotFollowing, result.Outcome)

	pending, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Nil(t, pending)
}

func TestToggleFollowGuards(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)

	_, err := f.svc.ToggleFollow(ctx, "alice", "alice")
	require.ErrorIs(t, err, ErrFollowSelf)

	_, err = f.svc.ToggleFollow(ctx, "", "alice")
	require.True(t, errs.IsUnauthenticated(err))

	_, err = f.svc.ToggleFollow(ctx, "alice", "ghost")
	require.True(t, errs.IsNotFound(err))
}

func TestResolveAccept(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	req, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveFollowRequest(ctx, req.ID, ResolveAccept))

	alice, err := f.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.accounts.Get(ctx, "bob")
	require.NoError(t, err)
	require.True(t, alice.IsFollowing("bob"))
	require.True(t, bob.HasFollower("alice"))
	require.False(t, bob.HasPendingFrom("alice"))

	resolved, err := f.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.FollowRequestResolved, resolved.Status)

	// 发起方收到接受通知
	list, err := f.notifications.ListByRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, model.NotificationStatusAccepted, list[0].Status)
}

func TestResolveDecline(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	req, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveFollowRequest(ctx, req.ID, ResolveDecline))

	alice, err := f.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.accounts.Get(ctx, "bob")
	require.NoError(t, err)
	require.False(t, alice.IsFollowing("bob"))
	require.False(t, bob.HasPendingFrom("alice"))

	resolved, err := f.requests.Get(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, model.FollowRequestResolved, resolved.Status)

	// 拒绝不通知发起方
	list, err := f.notifications.ListByRecipient(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestResolveTwice(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	req, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.ResolveFollowRequest(ctx, req.ID, ResolveAccept))
	err = f.svc.ResolveFollowRequest(ctx, req.ID, ResolveAccept)
	require.True(t, errs.IsConflict(err))
}

func TestResolveValidation(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()

	err := f.svc.ResolveFollowRequest(ctx, "r1", "maybe")
	require.ErrorIs(t, err, ErrInvalidOutcome)

	err = f.svc.ResolveFollowRequest(ctx, "missing", ResolveAccept)
	require.True(t, errs.IsNotFound(err))
}

func TestDeclineThenRetry(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	f.seedAccount(t, "alice", false)
	f.seedAccount(t, "bob", true)

	_, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	req, err := f.requests.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, f.svc.ResolveFollowRequest(ctx, req.ID, ResolveDecline))

	// 被拒后可以重新发起请求
	result, err := f.svc.ToggleFollow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, OutcomeRequestPending, result.Outcome)
	require.Equal(t, "follow request sent", result.Message)
}
