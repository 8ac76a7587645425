package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	store, err := NewGormStore(db, 5)
	require.NoError(t, err)
	return store
}

func TestSetGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc := map[string]interface{}{"id": "a1", "username": "alice", "is_private": false}
	require.NoError(t, store.Set(ctx, "accounts", "a1", doc))

	var got map[string]interface{}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &got))
	require.Equal(t, "alice", got["username"])

	err := store.Get(ctx, "accounts", "missing", &got)
	require.True(t, IsNotFound(err))
}

func TestSetOverwrite(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"username": "alice"}))
	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"username": "alicia"}))

	var got map[string]interface{}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &got))
	require.Equal(t, "alicia", got["username"])
}

func TestUpdateDeltas(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{
		"username":  "alice",
		"following": []string{},
	}))

	require.NoError(t, store.Update(ctx, "accounts", "a1", AddToSet("following", "b2")))
	// 重复加入同一元素不产生重复
	require.NoError(t, store.Update(ctx, "accounts", "a1", AddToSet("following", "b2")))
	require.NoError(t, store.Update(ctx, "accounts", "a1", AddToSet("following", "c3")))

	var got struct {
		Following []string `json:"following"`
	}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &got))
	require.Equal(t, []string{"b2", "c3"}, got.Following)

	require.NoError(t, store.Update(ctx, "accounts", "a1", RemoveFromSet("following", "b2")))
	require.NoError(t, store.Get(ctx, "accounts", "a1", &got))
	require.Equal(t, []string{"c3"}, got.Following)

	// 移除不存在的元素是 no-op
	require.NoError(t, store.Update(ctx, "accounts", "a1", RemoveFromSet("following", "zz")))

	require.NoError(t, store.Update(ctx, "accounts", "a1", Set("username", "alicia")))
	var u struct {
		Username string `json:"username"`
	}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &u))
	require.Equal(t, "alicia", u.Username)
}

func TestUpdateMissingDoc(t *testing.T) {
	store := setupStore(t)
	err := store.Update(context.Background(), "accounts", "nope", Set("x", 1))
	require.True(t, IsNotFound(err))
}

func TestDeleteIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"username": "alice"}))
	require.NoError(t, store.Delete(ctx, "accounts", "a1"))
	require.NoError(t, store.Delete(ctx, "accounts", "a1"))

	var got map[string]interface{}
	require.True(t, IsNotFound(store.Get(ctx, "accounts", "a1", &got)))
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "follow_requests", "r1", map[string]interface{}{"sender_id": "a", "recipient_id": "b", "status": "pending"}))
	require.NoError(t, store.Set(ctx, "follow_requests", "r2", map[string]interface{}{"sender_id": "a", "recipient_id": "c", "status": "pending"}))
	require.NoError(t, store.Set(ctx, "follow_requests", "r3", map[string]interface{}{"sender_id": "a", "recipient_id": "b", "status": "resolved"}))

	raws, err := store.Query(ctx, "follow_requests", []Filter{
		Eq("sender_id", "a"),
		Eq("recipient_id", "b"),
		Eq("status", "pending"),
	}, 0)
	require.NoError(t, err)
	require.Len(t, raws, 1)

	raws, err = store.Query(ctx, "follow_requests", nil, 0)
	require.NoError(t, err)
	require.Len(t, raws, 3)

	raws, err = store.Query(ctx, "follow_requests", []Filter{Eq("sender_id", "a")}, 2)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// 集合隔离：其他集合查不到
	raws, err = store.Query(ctx, "accounts", nil, 0)
	require.NoError(t, err)
	require.Empty(t, raws)
}

func TestRunTransactionPairWrite(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"following": []string{}}))
	require.NoError(t, store.Set(ctx, "accounts", "b2", map[string]interface{}{"followers": []string{}}))

	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Update(ctx, "accounts", "a1", AddToSet("following", "b2")); err != nil {
			return err
		}
		return tx.Update(ctx, "accounts", "b2", AddToSet("followers", "a1"))
	})
	require.NoError(t, err)

	var a struct {
		Following []string `json:"following"`
	}
	var b struct {
		Followers []string `json:"followers"`
	}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &a))
	require.NoError(t, store.Get(ctx, "accounts", "b2", &b))
	require.Equal(t, []string{"b2"}, a.Following)
	require.Equal(t, []string{"a1"}, b.Followers)
}

func TestRunTransactionRollback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"following": []string{}}))

	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Update(ctx, "accounts", "a1", AddToSet("following", "b2")); err != nil {
			return err
		}
		// 第二笔写指向缺失文档，整个事务必须回滚
		return tx.Update(ctx, "accounts", "missing", AddToSet("followers", "a1"))
	})
	require.True(t, IsNotFound(err))

	var a struct {
		Following []string `json:"following"`
	}
	require.NoError(t, store.Get(ctx, "accounts", "a1", &a))
	require.Empty(t, a.Following)
}

func TestRunTransactionConflictRetry(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "boards", "b1", map[string]interface{}{"n": 0}))

	attempts := 0
	err := store.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		var doc map[string]interface{}
		if err := tx.Get(ctx, "boards", "b1", &doc); err != nil {
			return err
		}
		if attempts == 1 {
			// 在事务自己的连接上推进版本，守护写必然失配并触发整体重试
			bump := tx.(*gormTx).db.WithContext(ctx).Exec(
				"UPDATE documents SET version = version + 1 WHERE collection = ? AND doc_id = ?",
				"boards", "b1")
			require.NoError(t, bump.Error)
		}
		return tx.Set(ctx, "boards", "b1", map[string]interface{}{"n": attempts})
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)

	var got struct {
		N int `json:"n"`
	}
	require.NoError(t, store.Get(ctx, "boards", "b1", &got))
	require.Equal(t, 2, got.N)
}

func TestRunTransactionConflictExhaustion(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "boards", "b1", map[string]interface{}{"n": 0}))

	attempts := 0
	err := store.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		var doc map[string]interface{}
		if err := tx.Get(ctx, "boards", "b1", &doc); err != nil {
			return err
		}
		bump := tx.(*gormTx).db.WithContext(ctx).Exec(
			"UPDATE documents SET version = version + 1 WHERE collection = ? AND doc_id = ?",
			"boards", "b1")
		require.NoError(t, bump.Error)
		return tx.Set(ctx, "boards", "b1", map[string]interface{}{"n": attempts})
	})
	require.True(t, IsConflict(err))
	require.Equal(t, 5, attempts)
}

func TestTxQuerySeesTransactionWrites(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/u1/bookmarks", "p1", map[string]interface{}{"post_id": "p1"}))

	err := store.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Delete(ctx, "users/u1/bookmarks", "p1"); err != nil {
			return err
		}
		// 事务内查询观察事务内的删除，而不是池里另一个连接的旧状态
		raws, err := tx.Query(ctx, "users/u1/bookmarks", nil, 0)
		if err != nil {
			return err
		}
		require.Empty(t, raws)
		return nil
	})
	require.NoError(t, err)
}

func TestVersionIncrements(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "accounts", "a1", map[string]interface{}{"n": 0}))
	require.NoError(t, store.Update(ctx, "accounts", "a1", Set("n", 1)))
	require.NoError(t, store.Update(ctx, "accounts", "a1", Set("n", 2)))

	var row documentRow
	require.NoError(t, store.db.Where("collection = ? AND doc_id = ?", "accounts", "a1").First(&row).Error)
	require.GreaterOrEqual(t, row.Version, int64(3))
}
