package repository

import (
    "context"
    "encoding/json"
    "sort"
    "time"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
)

type BoardRepository interface {
    Create(ctx context.Context, ownerID string, board *model.CuratedBoard) error
    Get(ctx context.Context, ownerID, boardID string) (*model.CuratedBoard, error)
    // ListByOwner 按创建时间升序
    ListByOwner(ctx context.Context, ownerID string) ([]*model.CuratedBoard, error)
    // Mutate 单看板读-改-写事务。fn 返回 false 表示无需写回（no-op）。
    // post_ids 与 post_count 的变更因此天然落在同一事务里；
    // fn 需要的其它读（如收藏校验）必须走传入的 tx，不能回到外层连接池
    Mutate(ctx context.Context, ownerID, boardID string, fn func(docstore.Tx, *model.CuratedBoard) (bool, error)) (*model.CuratedBoard, error)
    Delete(ctx context.Context, ownerID, boardID string) error
}

type boardRepository struct {
    store docstore.Store
}

func NewBoardRepository(store docstore.Store) BoardRepository {
    return &boardRepository{store: store}
}

func (r *boardRepository) Create(ctx context.Context, ownerID string, board *model.CuratedBoard) error {
    if err := board.Validate(); err != nil {
        return err
    }
    return wrapStoreErr("create board", r.store.Set(ctx, model.BoardsCollection(ownerID), board.ID, board))
}

func (r *boardRepository) Get(ctx context.Context, ownerID, boardID string) (*model.CuratedBoard, error) {
    var board model.CuratedBoard
    if err := r.store.Get(ctx, model.BoardsCollection(ownerID), boardID, &board); err != nil {
        return nil, wrapStoreErr("board "+boardID+" not found", err)
    }
    return &board, nil
}

func (r *boardRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.CuratedBoard, error) {
    raws, err := r.store.Query(ctx, model.BoardsCollection(ownerID), nil, 0)
    if err != nil {
        return nil, wrapStoreErr("list boards", err)
    }
    out := make([]*model.CuratedBoard, 0, len(raws))
    for _, raw := range raws {
        var board model.CuratedBoard
        if err := json.Unmarshal(raw, &board); err != nil {
            return nil, err
        }
        out = append(out, &board)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
    return out, nil
}

func (r *boardRepository) Mutate(ctx context.Context, ownerID, boardID string, fn func(docstore.Tx, *model.CuratedBoard) (bool, error)) (*model.CuratedBoard, error) {
    collection := model.BoardsCollection(ownerID)
    var result *model.CuratedBoard
    err := r.store.RunTransaction(ctx, func(tx docstore.Tx) error {
        var board model.CuratedBoard
        if err := tx.Get(ctx, collection, boardID, &board); err != nil {
            return err
        }
        changed, err := fn(tx, &board)
        if err != nil {
            return err
        }
        if !changed {
            result = &board
            return nil
        }
        board.PostCount = len(board.PostIDs)
        board.UpdatedAt = time.Now()
        if err := board.Validate(); err != nil {
            return err
        }
        if err := tx.Set(ctx, collection, boardID, &board); err != nil {
            return err
        }
        result = &board
        return nil
    })
    if docstore.IsNotFound(err) {
        return nil, wrapStoreErr("board "+boardID+" not found", err)
    }
    if err != nil {
        return nil, wrapStoreErr("update board "+boardID, err)
    }
    return result, nil
}

func (r *boardRepository) Delete(ctx context.Context, ownerID, boardID string) error {
    return wrapStoreErr("delete board", r.store.Delete(ctx, model.BoardsCollection(ownerID), boardID))
}
