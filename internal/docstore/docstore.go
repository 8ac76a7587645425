package docstore

import (
    "context"
    "errors"
)

var (
    ErrNotFound = errors.New("docstore: document not found")
    // ErrConflict 版本冲突；RunTransaction/Update 内部有限次重试后才向外抛出
    ErrConflict = errors.New("docstore: version conflict")
)

type DeltaOp int

const (
    // OpSet 覆盖字段
    OpSet DeltaOp = iota + 1
    // OpAddToSet 向字符串集合字段追加（已存在则不变）
    OpAddToSet
    // OpRemoveFromSet 从字符串集合字段移除
    OpRemoveFromSet
)

// Delta 单字段增量更新
type Delta struct {
    Field string
    Op    DeltaOp
    Value interface{}
}

func Set(field string, value interface{}) Delta { return Delta{Field: field, Op: OpSet, Value: value} }

func AddToSet(field, id string) Delta { return Delta{Field: field, Op: OpAddToSet, Value: id} }

func RemoveFromSet(field, id string) Delta {
    return Delta{Field: field, Op: OpRemoveFromSet, Value: id}
}

type FilterOp int

const (
    OpEq FilterOp = iota + 1
)

// Filter 查询过滤条件（字段等值）
type Filter struct {
    Field string
    Op    FilterOp
    Value interface{}
}

func Eq(field string, value interface{}) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// Tx 事务内读写。事务内所有读（含 Query）观察一致快照；
// 任一受版本保护的写失败则整个事务以 ErrConflict 回滚并重试
type Tx interface {
    Get(ctx context.Context, collection, id string, out interface{}) error
    Set(ctx context.Context, collection, id string, value interface{}) error
    Update(ctx context.Context, collection, id string, deltas ...Delta) error
    Delete(ctx context.Context, collection, id string) error
    Query(ctx context.Context, collection string, filters []Filter, limit int) ([][]byte, error)
}

// Querier Store 与 Tx 共有的查询端，供仓库在事务内外复用同一读逻辑
type Querier interface {
    Query(ctx context.Context, collection string, filters []Filter, limit int) ([][]byte, error)
}

// Store 事务型文档存储客户端
type Store interface {
    Get(ctx context.Context, collection, id string, out interface{}) error
    Set(ctx context.Context, collection, id string, value interface{}) error
    Update(ctx context.Context, collection, id string, deltas ...Delta) error
    Delete(ctx context.Context, collection, id string) error
    // Query 返回集合内满足所有过滤条件的文档原文；limit <= 0 表示不限
    Query(ctx context.Context, collection string, filters []Filter, limit int) ([][]byte, error)
    RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
