package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-engine/internal/api/middleware"
	"github.com/d60-Lab/social-engine/pkg/response"
)

// ListBookmarks 读取可见收藏
// @Summary 收藏列表（读取时做隐私过滤，失效收藏被删除并级联）
// @Tags 收藏
// @Produce json
// @Success 200 {object} response.Response{data=[]service.PostRef}
// @Failure 401 {object} response.Response
// @Router /api/v1/bookmarks [get]
func (h *Handler) ListBookmarks(c *gin.Context) {
	refs, err := h.reconciler.ListVisibleBookmarks(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, refs)
}

type addBookmarkRequest struct {
	PostID string `json:"post_id" binding:"required"`
}

// AddBookmark 收藏帖子
// @Summary 收藏帖子（重复收藏幂等）
// @Tags 收藏
// @Accept json
// @Produce json
// @Param request body addBookmarkRequest true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/bookmarks [post]
func (h *Handler) AddBookmark(c *gin.Context) {
	var req addBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.bookmarks.Add(c.Request.Context(), middleware.Principal(c), req.PostID); err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveBookmark 取消收藏
// @Summary 取消收藏并级联收缩引用它的看板
// @Tags 收藏
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/bookmarks/{post_id} [delete]
func (h *Handler) RemoveBookmark(c *gin.Context) {
	if err := h.bookmarks.Remove(c.Request.Context(), middleware.Principal(c), c.Param("post_id")); err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, nil)
}
