package cache

import (
	"context"

	"github.com/d60-Lab/social-engine/internal/model"
	"github.com/d60-Lab/social-engine/internal/repository"
)

// AccountSource 组合仓库与会话缓存：同一会话内账号快照只读一次库。
// svc 为 nil 时直通仓库（测试里常用）
type AccountSource struct {
	accounts repository.AccountRepository
	svc      *Service
}

func NewAccountSource(accounts repository.AccountRepository, svc *Service) *AccountSource {
	return &AccountSource{accounts: accounts, svc: svc}
}

func (s *AccountSource) Account(ctx context.Context, sessionID, id string) (*model.Account, error) {
	if s.svc == nil || sessionID == "" {
		return s.accounts.Get(ctx, id)
	}
	sess := s.svc.ForSession(sessionID)
	if cached, err := sess.Account(ctx, id); err == nil && cached != nil {
		return cached, nil
	}
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// 写缓存失败不影响读路径
	_ = sess.PutAccount(ctx, account)
	return account, nil
}
