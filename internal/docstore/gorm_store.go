package docstore

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "reflect"
    "time"

    "gorm.io/gorm"
    "gorm.io/gorm/clause"
)

const defaultMaxRetries = 5

// documentRow 文档表：一行一个 JSON 文档，version 用于乐观并发控制
type documentRow struct {
    Collection string    `gorm:"primaryKey;type:varchar(128);not null"`
    DocID      string    `gorm:"primaryKey;type:varchar(128);not null;column:doc_id"`
    Data       string    `gorm:"type:text;not null"`
    Version    int64     `gorm:"not null;default:1"`
    UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// GormStore 基于 gorm 的 Store 实现（生产 postgres，测试 sqlite :memory:）
type GormStore struct {
    db         *gorm.DB
    maxRetries int
}

// NewGormStore 建表并返回存储实例；maxRetries <= 0 取默认值
func NewGormStore(db *gorm.DB, maxRetries int) (*GormStore, error) {
    if err := db.AutoMigrate(&documentRow{}); err != nil {
        return nil, fmt.Errorf("migrate documents table: %w", err)
    }
    if maxRetries <= 0 {
        maxRetries = defaultMaxRetries
    }
    return &GormStore{db: db, maxRetries: maxRetries}, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string, out interface{}) error {
    return getDoc(ctx, s.db, collection, id, out, nil)
}

func (s *GormStore) Set(ctx context.Context, collection, id string, value interface{}) error {
    return upsertDoc(ctx, s.db, collection, id, value)
}

func (s *GormStore) Update(ctx context.Context, collection, id string, deltas ...Delta) error {
    for attempt := 0; attempt < s.maxRetries; attempt++ {
        err := applyDeltasOnce(ctx, s.db, collection, id, deltas)
        if errors.Is(err, ErrConflict) {
            continue
        }
        return err
    }
    return ErrConflict
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
    // 幂等：不存在的文档删除不报错
    return s.db.WithContext(ctx).
        Where("collection = ? AND doc_id = ?", collection, id).
        Delete(&documentRow{}).Error
}

func (s *GormStore) Query(ctx context.Context, collection string, filters []Filter, limit int) ([][]byte, error) {
    return queryDocs(ctx, s.db, collection, filters, limit)
}

// RunTransaction 执行读-改-写事务；版本冲突时整体重试，重试耗尽返回 ErrConflict
func (s *GormStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
    var err error
    for attempt := 0; attempt < s.maxRetries; attempt++ {
        err = s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
            return fn(&gormTx{db: db, readVersions: make(map[string]int64)})
        })
        if errors.Is(err, ErrConflict) {
            continue
        }
        return err
    }
    return ErrConflict
}

// gormTx 记录事务内读到的文档版本，写回时校验版本未被他人推进
type gormTx struct {
    db           *gorm.DB
    readVersions map[string]int64
}

func docKey(collection, id string) string { return collection + "/" + id }

func (t *gormTx) Get(ctx context.Context, collection, id string, out interface{}) error {
    return getDoc(ctx, t.db, collection, id, out, t.readVersions)
}

func (t *gormTx) Set(ctx context.Context, collection, id string, value interface{}) error {
    readVersion, guarded := t.readVersions[docKey(collection, id)]
    if !guarded {
        return upsertDoc(ctx, t.db, collection, id, value)
    }
    data, err := json.Marshal(value)
    if err != nil {
        return err
    }
    res := t.db.WithContext(ctx).Model(&documentRow{}).
        Where("collection = ? AND doc_id = ? AND version = ?", collection, id, readVersion).
        Updates(map[string]interface{}{
            "data":       string(data),
            "version":    readVersion + 1,
            "updated_at": time.Now(),
        })
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrConflict
    }
    t.readVersions[docKey(collection, id)] = readVersion + 1
    return nil
}

func (t *gormTx) Update(ctx context.Context, collection, id string, deltas ...Delta) error {
    // 事务内单次尝试，冲突交由外层 RunTransaction 整体重试
    return applyDeltasOnce(ctx, t.db, collection, id, deltas)
}

// Query 跑在事务自己的连接上：读到的是事务快照，也不会向连接池再借连接
func (t *gormTx) Query(ctx context.Context, collection string, filters []Filter, limit int) ([][]byte, error) {
    return queryDocs(ctx, t.db, collection, filters, limit)
}

func (t *gormTx) Delete(ctx context.Context, collection, id string) error {
    readVersion, guarded := t.readVersions[docKey(collection, id)]
    q := t.db.WithContext(ctx).Where("collection = ? AND doc_id = ?", collection, id)
    if guarded {
        q = q.Where("version = ?", readVersion)
    }
    res := q.Delete(&documentRow{})
    if res.Error != nil {
        return res.Error
    }
    if guarded && res.RowsAffected == 0 {
        return ErrConflict
    }
    delete(t.readVersions, docKey(collection, id))
    return nil
}

func queryDocs(ctx context.Context, db *gorm.DB, collection string, filters []Filter, limit int) ([][]byte, error) {
    var rows []documentRow
    err := db.WithContext(ctx).
        Where("collection = ?", collection).
        Order("doc_id").
        Find(&rows).Error
    if err != nil {
        return nil, err
    }
    out := make([][]byte, 0, len(rows))
    for _, row := range rows {
        ok, err := matchFilters([]byte(row.Data), filters)
        if err != nil {
            return nil, err
        }
        if !ok {
            continue
        }
        out = append(out, []byte(row.Data))
        if limit > 0 && len(out) >= limit {
            break
        }
    }
    return out, nil
}

func getDoc(ctx context.Context, db *gorm.DB, collection, id string, out interface{}, versions map[string]int64) error {
    var row documentRow
    err := db.WithContext(ctx).
        Where("collection = ? AND doc_id = ?", collection, id).
        First(&row).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if versions != nil {
        versions[docKey(collection, id)] = row.Version
    }
    return json.Unmarshal([]byte(row.Data), out)
}

func upsertDoc(ctx context.Context, db *gorm.DB, collection, id string, value interface{}) error {
    data, err := json.Marshal(value)
    if err != nil {
        return err
    }
    row := documentRow{Collection: collection, DocID: id, Data: string(data), Version: 1, UpdatedAt: time.Now()}
    return db.WithContext(ctx).Clauses(clause.OnConflict{
        Columns: []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
        DoUpdates: clause.Assignments(map[string]interface{}{
            "data":       string(data),
            "version":    gorm.Expr("documents.version + 1"),
            "updated_at": time.Now(),
        }),
    }).Create(&row).Error
}

// applyDeltasOnce 读取文档、套用增量后带版本条件写回；版本被推进返回 ErrConflict
func applyDeltasOnce(ctx context.Context, db *gorm.DB, collection, id string, deltas []Delta) error {
    var row documentRow
    err := db.WithContext(ctx).
        Where("collection = ? AND doc_id = ?", collection, id).
        First(&row).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    doc := make(map[string]interface{})
    if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
        return err
    }
    for _, d := range deltas {
        if err := applyDelta(doc, d); err != nil {
            return err
        }
    }
    data, err := json.Marshal(doc)
    if err != nil {
        return err
    }
    res := db.WithContext(ctx).Model(&documentRow{}).
        Where("collection = ? AND doc_id = ? AND version = ?", collection, id, row.Version).
        Updates(map[string]interface{}{
            "data":       string(data),
            "version":    row.Version + 1,
            "updated_at": time.Now(),
        })
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return ErrConflict
    }
    return nil
}

func applyDelta(doc map[string]interface{}, d Delta) error {
    switch d.Op {
    case OpSet:
        normalized, err := normalizeJSON(d.Value)
        if err != nil {
            return err
        }
        doc[d.Field] = normalized
        return nil
    case OpAddToSet:
        id, ok := d.Value.(string)
        if !ok {
            return fmt.Errorf("docstore: add-to-set expects string value for field %q", d.Field)
        }
        ids := stringSlice(doc[d.Field])
        for _, v := range ids {
            if v == id {
                doc[d.Field] = ids
                return nil
            }
        }
        doc[d.Field] = append(ids, id)
        return nil
    case OpRemoveFromSet:
        id, ok := d.Value.(string)
        if !ok {
            return fmt.Errorf("docstore: remove-from-set expects string value for field %q", d.Field)
        }
        ids := stringSlice(doc[d.Field])
        kept := make([]string, 0, len(ids))
        for _, v := range ids {
            if v != id {
                kept = append(kept, v)
            }
        }
        doc[d.Field] = kept
        return nil
    default:
        return fmt.Errorf("docstore: unknown delta op %d", d.Op)
    }
}

func matchFilters(raw []byte, filters []Filter) (bool, error) {
    if len(filters) == 0 {
        return true, nil
    }
    doc := make(map[string]interface{})
    if err := json.Unmarshal(raw, &doc); err != nil {
        return false, err
    }
    for _, f := range filters {
        if f.Op != OpEq {
            return false, fmt.Errorf("docstore: unknown filter op %d", f.Op)
        }
        want, err := normalizeJSON(f.Value)
        if err != nil {
            return false, err
        }
        if !reflect.DeepEqual(doc[f.Field], want) {
            return false, nil
        }
    }
    return true, nil
}

// normalizeJSON 走一遍 JSON 编解码，统一数值/切片表示以便比较
func normalizeJSON(v interface{}) (interface{}, error) {
    b, err := json.Marshal(v)
    if err != nil {
        return nil, err
    }
    var out interface{}
    if err := json.Unmarshal(b, &out); err != nil {
        return nil, err
    }
    return out, nil
}

func stringSlice(v interface{}) []string {
    arr, ok := v.([]interface{})
    if !ok {
        return nil
    }
    out := make([]string, 0, len(arr))
    for _, item := range arr {
        if s, ok := item.(string); ok {
            out = append(out, s)
        }
    }
    return out
}
