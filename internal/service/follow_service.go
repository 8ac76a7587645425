package service

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"

    "github.com/d60-Lab/social-engine/internal/model"
    "github.com/d60-Lab/social-engine/internal/repository"
    "github.com/d60-Lab/social-engine/pkg/errs"
)

var (
    ErrFollowSelf     = errors.New("cannot follow self")
    ErrInvalidOutcome = errors.New("outcome must be accept or decline")
)

// FollowOutcome (requester, target) 对的当前状态
type FollowOutcome string

const (
    OutcomeFollowing      FollowOutcome = "following"
    OutcomeRequestPending FollowOutcome = "request_pending"
    OutcomeNotFollowing   FollowOutcome = "not_following"
)

const (
    ResolveAccept  = "accept"
    ResolveDecline = "decline"
)

// ToggleResult 关注开关的结果与给用户的提示
type ToggleResult struct {
    Outcome FollowOutcome `json:"outcome"`
    Message string        `json:"message"`
}

// FollowService 关注状态机：
// NotFollowing → Following（公开账号）/ RequestPending（私密账号）；
// Following → NotFollowing（取关，无条件，不走请求流程）；
// RequestPending 只能经 ResolveFollowRequest 离开
type FollowService interface {
    ToggleFollow(ctx context.Context, requesterID, targetID string) (*ToggleResult, error)
    ResolveFollowRequest(ctx context.Context, requestID, outcome string) error
}

type followService struct {
    accounts  repository.AccountRepository
    requests  repository.FollowRequestRepository
    notifier  Notifier
    locks     *PairLock
    gate      PrivacyGate
    ioRetries int
}

func NewFollowService(accounts repository.AccountRepository, requests repository.FollowRequestRepository, notifier Notifier, locks *PairLock, ioRetries int) FollowService {
    if ioRetries <= 0 {
        ioRetries = 3
    }
    return &followService{accounts: accounts, requests: requests, notifier: notifier, locks: locks, ioRetries: ioRetries}
}

func (s *followService) ToggleFollow(ctx context.Context, requesterID, targetID string) (*ToggleResult, error) {
    if requesterID == "" {
        return nil, errs.Unauthenticated("missing acting account")
    }
    if requesterID == targetID {
        return nil, ErrFollowSelf
    }

    unlock := s.locks.Lock(requesterID, targetID)
    defer unlock()

    requester, err := s.accounts.Get(ctx, requesterID)
    if err != nil {
        return nil, err
    }
    target, err := s.accounts.Get(ctx, targetID)
    if err != nil {
        return nil, err
    }

    // Following → NotFollowing：取关永远允许，与目标隐私无关
    if requester.IsFollowing(targetID) {
        if err := s.withRetry(func() error { return s.accounts.RemoveEdge(ctx, requesterID, targetID) }); err != nil {
            return nil, err
        }
        return &ToggleResult{Outcome: OutcomeNotFollowing, Message: "unfollowed"}, nil
    }

    switch s.gate.Decide(target) {
    case FollowImmediate:
        if err := s.withRetry(func() error { return s.accounts.AddEdge(ctx, requesterID, targetID) }); err != nil {
            return nil, err
        }
        s.notifier.Follow(ctx, requesterID, targetID)
        return &ToggleResult{Outcome: OutcomeFollowing, Message: "following"}, nil

    default: // FollowRequiresRequest
        pending, err := s.requests.FindPending(ctx, requesterID, targetID)
        if err != nil {
            return nil, err
        }
        if pending != nil {
            // 重复尝试不产生第二条请求
            return &ToggleResult{Outcome: OutcomeRequestPending, Message: "request already pending"}, nil
        }
        req := &model.FollowRequest{
            ID:          uuid.New().String(),
            SenderID:    requesterID,
            RecipientID: targetID,
            Status:      model.FollowRequestPending,
            CreatedAt:   time.Now(),
        }
        if err := s.withRetry(func() error { return s.requests.Create(ctx, req) }); err != nil {
            return nil, err
        }
        if err := s.withRetry(func() error { return s.accounts.AddPendingRequest(ctx, targetID, requesterID) }); err != nil {
            return nil, err
        }
        s.notifier.FollowRequest(ctx, requesterID, targetID)
        return &ToggleResult{Outcome: OutcomeRequestPending, Message: "follow request sent"}, nil
    }
}

// ResolveFollowRequest 请求裁决入口（RequestPending 离开本状态机的唯一出口）。
// accept 建边并通知发起方，decline 仅清理未决状态；二者都把请求置为 resolved
func (s *followService) ResolveFollowRequest(ctx context.Context, requestID, outcome string) error {
    if outcome != ResolveAccept && outcome != ResolveDecline {
        return ErrInvalidOutcome
    }
    req, err := s.requests.Get(ctx, requestID)
    if err != nil {
        return err
    }

    unlock := s.locks.Lock(req.SenderID, req.RecipientID)
    defer unlock()

    // 拿到对锁后重读，避免与并发裁决竞争
    req, err = s.requests.Get(ctx, requestID)
    if err != nil {
        return err
    }
    if req.Status != model.FollowRequestPending {
        return errs.Conflict("follow request already resolved")
    }

    if outcome == ResolveAccept {
        if err := s.withRetry(func() error { return s.accounts.AddEdge(ctx, req.SenderID, req.RecipientID) }); err != nil {
            return err
        }
    }
    if err := s.withRetry(func() error { return s.accounts.RemovePendingRequest(ctx, req.RecipientID, req.SenderID) }); err != nil {
        return err
    }
    if err := s.withRetry(func() error { return s.requests.MarkResolved(ctx, req.ID) }); err != nil {
        return err
    }
    if outcome == ResolveAccept {
        s.notifier.RequestAccepted(ctx, req.RecipientID, req.SenderID)
    }
    return nil
}

// withRetry 在持有对锁期间对可重试 IO 错误做有限次重试；
// 其它错误直接向上抛
func (s *followService) withRetry(op func() error) error {
    var err error
    for attempt := 0; attempt <= s.ioRetries; attempt++ {
        err = op()
        if err == nil || !errs.IsTransient(err) {
            return err
        }
    }
    return err
}
