package service

import (
    "context"
    "errors"
    "time"
    "unicode/utf8"

    "github.com/google/uuid"

    "github.com/d60-Lab/social-engine/internal/docstore"
    "github.com/d60-Lab/social-engine/internal/model"
    "github.com/d60-Lab/social-engine/internal/repository"
    "github.com/d60-Lab/social-engine/pkg/errs"
)

var ErrInvalidBoardName = errors.New("board name must be 1-40 characters")

// BoardService 看板的 UI 写入口。所有修改都独立维持两条不变量：
// post_count == len(post_ids)，且每个 id 都有同账号的收藏兜底
type BoardService interface {
    Create(ctx context.Context, ownerID, name string) (*model.CuratedBoard, error)
    Rename(ctx context.Context, ownerID, boardID, name string) (*model.CuratedBoard, error)
    Delete(ctx context.Context, ownerID, boardID string) error
    AddPosts(ctx context.Context, ownerID, boardID string, postIDs []string) (*model.CuratedBoard, error)
    RemovePost(ctx context.Context, ownerID, boardID, postID string) (*model.CuratedBoard, error)
    Get(ctx context.Context, ownerID, boardID string) (*model.CuratedBoard, error)
    List(ctx context.Context, ownerID string) ([]*model.CuratedBoard, error)
}

type boardService struct {
    boards     repository.BoardRepository
    bookmarks  repository.BookmarkRepository
    reconciler *Reconciler
}

func NewBoardService(boards repository.BoardRepository, bookmarks repository.BookmarkRepository, reconciler *Reconciler) BoardService {
    return &boardService{boards: boards, bookmarks: bookmarks, reconciler: reconciler}
}

func (s *boardService) Create(ctx context.Context, ownerID, name string) (*model.CuratedBoard, error) {
    if ownerID == "" {
        return nil, errs.Unauthenticated("missing acting account")
    }
    if name == "" || utf8.RuneCountInString(name) > model.BoardNameMaxLen {
        return nil, ErrInvalidBoardName
    }
    now := time.Now()
    board := &model.CuratedBoard{
        ID:        uuid.New().String(),
        Name:      name,
        PostIDs:   []string{},
        PostCount: 0,
        CreatedAt: now,
        UpdatedAt: now,
    }
    if err := s.boards.Create(ctx, ownerID, board); err != nil {
        return nil, err
    }
    return board, nil
}

func (s *boardService) Rename(ctx context.Context, ownerID, boardID, name string) (*model.CuratedBoard, error) {
    if name == "" || utf8.RuneCountInString(name) > model.BoardNameMaxLen {
        return nil, ErrInvalidBoardName
    }
    return s.boards.Mutate(ctx, ownerID, boardID, func(_ docstore.Tx, board *model.CuratedBoard) (bool, error) {
        if board.Name == name {
            return false, nil
        }
        board.Name = name
        return true, nil
    })
}

func (s *boardService) Delete(ctx context.Context, ownerID, boardID string) error {
    return s.boards.Delete(ctx, ownerID, boardID)
}

// AddPosts 过滤掉已在看板上的 id（幂等）和当前收藏集里不存在的 id
// （写入时就保证引用完整性，而不是只靠事后调解）。
// 收藏校验走事务快照，与看板写回原子
func (s *boardService) AddPosts(ctx context.Context, ownerID, boardID string, postIDs []string) (*model.CuratedBoard, error) {
    return s.boards.Mutate(ctx, ownerID, boardID, func(tx docstore.Tx, board *model.CuratedBoard) (bool, error) {
        have, err := s.bookmarks.ExistsMapTx(ctx, tx, ownerID, postIDs)
        if err != nil {
            return false, err
        }
        changed := false
        for _, id := range postIDs {
            if board.ContainsPost(id) || !have[id] {
                continue
            }
            board.PostIDs = append(board.PostIDs, id)
            changed = true
        }
        return changed, nil
    })
}

func (s *boardService) RemovePost(ctx context.Context, ownerID, boardID, postID string) (*model.CuratedBoard, error) {
    return s.boards.Mutate(ctx, ownerID, boardID, func(_ docstore.Tx, board *model.CuratedBoard) (bool, error) {
        if !board.ContainsPost(postID) {
            return false, nil
        }
        board.PostIDs = removeID(board.PostIDs, postID)
        return true, nil
    })
}

// Get 看板读取一律先过调解器，悬空引用在返回前被修剪
func (s *boardService) Get(ctx context.Context, ownerID, boardID string) (*model.CuratedBoard, error) {
    return s.reconciler.RepairBoard(ctx, ownerID, boardID)
}

func (s *boardService) List(ctx context.Context, ownerID string) ([]*model.CuratedBoard, error) {
    boards, err := s.boards.ListByOwner(ctx, ownerID)
    if err != nil {
        return nil, err
    }
    out := make([]*model.CuratedBoard, 0, len(boards))
    for _, b := range boards {
        repaired, err := s.reconciler.RepairBoard(ctx, ownerID, b.ID)
        if errs.IsNotFound(err) {
            continue
        }
        if err != nil {
            return nil, err
        }
        out = append(out, repaired)
    }
    return out, nil
}
