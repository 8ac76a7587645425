package service

import "github.com/d60-Lab/social-engine/internal/model"

// FollowDecision 关注尝试的处理方式
type FollowDecision int

const (
    // FollowImmediate 公开账号：直接建边
    FollowImmediate FollowDecision = iota + 1
    // FollowRequiresRequest 私密账号：必须走请求流程
    FollowRequiresRequest
)

// PrivacyGate 纯判定函数，只看目标账号的隐私开关，无副作用
type PrivacyGate struct{}

func (PrivacyGate) Decide(target *model.Account) FollowDecision {
    if target.IsPrivate {
        return FollowRequiresRequest
    }
    return FollowImmediate
}
