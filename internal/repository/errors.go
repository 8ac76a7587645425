package repository

import (
    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/pkg/errs"
)

// wrapStoreErr 把存储层错误映射到引擎错误分类：
// 文档缺失 → NotFound；重试耗尽的版本冲突 → Conflict；其余按可重试 IO 处理
func wrapStoreErr(msg string, err error) error {
    if err == nil {
        return nil
    }
    // 已分类的错误原样透传（例如事务回调里抛出的业务错误）
    if errs.KindOf(err) != errs.KindUnknown {
        return err
    }
    if docstore.IsNotFound(err) {
        return errs.NotFound(msg)
    }
    if docstore.IsConflict(err) {
        return errs.Conflict(msg)
    }
    return errs.TransientIO(msg, err)
}
