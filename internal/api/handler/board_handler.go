package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-engine/internal/api/middleware"
	"github.com/d60-Lab/social-engine/pkg/response"
)

type createBoardRequest struct {
	Name string `json:"name" binding:"required,min=1,max=40"`
}

// CreateBoard 新建看板
// @Summary 新建空看板
// @Tags 看板
// @Accept json
// @Produce json
// @Param request body createBoardRequest true "看板名称"
// @Success 200 {object} response.Response{data=model.CuratedBoard}
// @Failure 400 {object} response.Response
// @Router /api/v1/boards [post]
func (h *Handler) CreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	board, err := h.boards.Create(c.Request.Context(), middleware.Principal(c), req.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, board)
}

// ListBoards 看板列表
// @Summary 当前账号的全部看板（返回前修剪悬空引用）
// @Tags 看板
// @Produce json
// @Success 200 {object} response.Response{data=[]model.CuratedBoard}
// @Router /api/v1/boards [get]
func (h *Handler) ListBoards(c *gin.Context) {
	boards, err := h.boards.List(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, boards)
}

// GetBoard 单个看板
// @Summary 按 ID 读取看板（返回前修剪悬空引用）
// @Tags 看板
// @Produce json
// @Param id path string true "看板ID"
// @Success 200 {object} response.Response{data=model.CuratedBoard}
// @Failure 404 {object} response.Response
// @Router /api/v1/boards/{id} [get]
func (h *Handler) GetBoard(c *gin.Context) {
	board, err := h.boards.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, board)
}

type renameBoardRequest struct {
	Name string `json:"name" binding:"required,min=1,max=40"`
}

// RenameBoard 重命名看板
// @Summary 重命名看板
// @Tags 看板
// @Accept json
// @Produce json
// @Param id path string true "看板ID"
// @Param request body renameBoardRequest true "新名称"
// @Success 200 {object} response.Response{data=model.CuratedBoard}
// @Failure 404 {object} response.Response
// @Router /api/v1/boards/{id} [put]
func (h *Handler) RenameBoard(c *gin.Context) {
	var req renameBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	board, err := h.boards.Rename(c.Request.Context(), middleware.Principal(c), c.Param("id"), req.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, board)
}

// DeleteBoard 删除看板
// @Summary 删除看板（不影响收藏本身）
// @Tags 看板
// @Produce json
// @Param id path string true "看板ID"
// @Success 200 {object} response.Response
// @Router /api/v1/boards/{id} [delete]
func (h *Handler) DeleteBoard(c *gin.Context) {
	if err := h.boards.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, nil)
}

type addBoardPostsRequest struct {
	PostIDs []string `json:"post_ids" binding:"required,min=1"`
}

// AddBoardPosts 向看板添加帖子
// @Summary 批量添加帖子（跳过已在看板或未收藏的 id）
// @Tags 看板
// @Accept json
// @Produce json
// @Param id path string true "看板ID"
// @Param request body addBoardPostsRequest true "帖子ID列表"
// @Success 200 {object} response.Response{data=model.CuratedBoard}
// @Failure 404 {object} response.Response
// @Router /api/v1/boards/{id}/posts [post]
func (h *Handler) AddBoardPosts(c *gin.Context) {
	var req addBoardPostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	board, err := h.boards.AddPosts(c.Request.Context(), middleware.Principal(c), c.Param("id"), req.PostIDs)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, board)
}

// RemoveBoardPost 从看板移除帖子
// @Summary 移除单个帖子（不在看板上则无操作）
// @Tags 看板
// @Produce json
// @Param id path string true "看板ID"
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=model.CuratedBoard}
// @Router /api/v1/boards/{id}/posts/{post_id} [delete]
func (h *Handler) RemoveBoardPost(c *gin.Context) {
	board, err := h.boards.RemovePost(c.Request.Context(), middleware.Principal(c), c.Param("id"), c.Param("post_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, board)
}
