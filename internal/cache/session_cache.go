package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-engine/internal/model"
	"github.com/d60-Lab/social-engine/pkg/logger"
)

// Service 账号快照的会话级缓存。key 带 session 前缀，
// 不同会话互不可见，登出时整体失效
type Service struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewService(rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{rdb: rdb, ttl: ttl}
}

// ForSession 返回绑定到指定会话的缓存视图
func (s *Service) ForSession(sessionID string) *SessionCache {
	return &SessionCache{svc: s, sessionID: sessionID}
}

// Invalidate 删除会话下的全部快照（SCAN 而不是 KEYS，避免阻塞）
func (s *Service) Invalidate(ctx context.Context, sessionID string) error {
	pattern := fmt.Sprintf("sess:%s:account:*", sessionID)
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// SessionCache 单个会话的账号快照视图
type SessionCache struct {
	svc       *Service
	sessionID string
}

func (c *SessionCache) key(accountID string) string {
	return fmt.Sprintf("sess:%s:account:%s", c.sessionID, accountID)
}

// Account 命中返回快照，未命中返回 (nil, nil)
func (c *SessionCache) Account(ctx context.Context, accountID string) (*model.Account, error) {
	data, err := c.svc.rdb.Get(ctx, c.key(accountID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		// 损坏的快照按未命中处理，下一次读会覆盖它
		logger.Warn("cached account snapshot corrupt",
			zap.String("session", c.sessionID),
			zap.String("account", accountID),
			zap.Error(err))
		return nil, nil
	}
	return &account, nil
}

func (c *SessionCache) PutAccount(ctx context.Context, account *model.Account) error {
	payload, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.svc.rdb.Set(ctx, c.key(account.ID), payload, c.svc.ttl).Err()
}
