package service

import "sync"

// PairLock 按无序账号对互斥：同一对 (A,B) 上的关注/取关/请求处理串行执行，
// 不同对之间互不影响。后到的调用排队等待而不是并发执行
type PairLock struct {
    mu      sync.Mutex
    entries map[string]*pairEntry
}

type pairEntry struct {
    mu   sync.Mutex
    refs int
}

func NewPairLock() *PairLock {
    return &PairLock{entries: make(map[string]*pairEntry)}
}

// Lock 锁住 (a, b) 对，返回解锁函数
func (l *PairLock) Lock(a, b string) func() {
    key := pairKey(a, b)
    l.mu.Lock()
    e, ok := l.entries[key]
    if !ok {
        e = &pairEntry{}
        l.entries[key] = e
    }
    e.refs++
    l.mu.Unlock()

    e.mu.Lock()
    return func() {
        e.mu.Unlock()
        l.mu.Lock()
        e.refs--
        if e.refs == 0 {
            delete(l.entries, key)
        }
        l.mu.Unlock()
    }
}

func pairKey(a, b string) string {
    if a > b {
        a, b = b, a
    }
    return a + "|" + b
}
