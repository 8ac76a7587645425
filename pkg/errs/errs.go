package errs

import (
    "errors"
    "fmt"
)

// Kind 错误分类，决定调用方的处理策略与 HTTP 映射
type Kind int

const (
    KindUnknown Kind = iota
    // KindNotFound 目标账号/看板/帖子不存在，终态，不重试
    KindNotFound
    // KindUnauthenticated 缺少操作主体，终态
    KindUnauthenticated
    // KindConflict 事务重试耗尽或将破坏不变量
    KindConflict
    // KindTransientIO 存储调用失败，可重试
    KindTransientIO
)

// Error 引擎内统一错误类型
type Error struct {
    Kind Kind
    Msg  string
    Err  error
}

func (e *Error) Error() string {
    if e.Err != nil {
        return fmt.Sprintf("%s: %v", e.Msg, e.Err)
    }
    return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Wrap(kind Kind, msg string, err error) *Error { return &Error{Kind: kind, Msg: msg, Err: err} }

func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func TransientIO(msg string, err error) *Error {
    return Wrap(KindTransientIO, msg, err)
}

// KindOf 取错误分类；非 *Error 视为 Unknown
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return KindUnknown
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsUnauthenticated(err error) bool { return KindOf(err) == KindUnauthenticated }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }
func IsTransient(err error) bool       { return KindOf(err) == KindTransientIO }
