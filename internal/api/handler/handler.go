package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-engine/internal/cache"
	"github.com/d60-Lab/social-engine/internal/service"
	"github.com/d60-Lab/social-engine/pkg/errs"
	"github.com/d60-Lab/social-engine/pkg/response"
)

// Handler 聚合全部 HTTP 入口依赖
type Handler struct {
	follows    service.FollowService
	bookmarks  service.BookmarkService
	boards     service.BoardService
	reconciler *service.Reconciler
	sessions   *cache.Service
}

func New(follows service.FollowService, bookmarks service.BookmarkService, boards service.BoardService, reconciler *service.Reconciler, sessions *cache.Service) *Handler {
	return &Handler{follows: follows, bookmarks: bookmarks, boards: boards, reconciler: reconciler, sessions: sessions}
}

// writeErr 错误分类到 HTTP 状态码的唯一映射点
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFollowSelf),
		errors.Is(err, service.ErrInvalidOutcome),
		errors.Is(err, service.ErrInvalidBoardName):
		response.BadRequest(c, err.Error())
	case errs.IsNotFound(err):
		response.NotFound(c, err.Error())
	case errs.IsUnauthenticated(err):
		response.Unauthorized(c, err.Error())
	case errs.IsConflict(err):
		response.Conflict(c, err.Error())
	case errs.IsTransient(err):
		response.Unavailable(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
