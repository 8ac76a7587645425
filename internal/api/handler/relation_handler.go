package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-engine/internal/api/middleware"
	"github.com/d60-Lab/social-engine/pkg/response"
)

type toggleFollowRequest struct {
	TargetID string `json:"target_id" binding:"required"`
}

// ToggleFollow 关注开关
// @Summary 切换关注状态（公开账号直接建边，私密账号发请求，已关注则取关）
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body toggleFollowRequest true "目标账号"
// @Success 200 {object} response.Response{data=service.ToggleResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/toggle [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	var req toggleFollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.follows.ToggleFollow(c.Request.Context(), middleware.Principal(c), req.TargetID)
	if err != nil {
		writeErr(c, err)
		return
	}
	response.SuccessMsg(c, result.Message, result)
}

type resolveRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=accept decline"`
}

// ResolveFollowRequest 裁决关注请求
// @Summary 接受或拒绝关注请求
// @Tags 关系链
// @Accept json
// @Produce json
// @Param id path string true "请求ID"
// @Param request body resolveRequest true "裁决结果"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/relations/requests/{id}/resolve [post]
func (h *Handler) ResolveFollowRequest(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.follows.ResolveFollowRequest(c.Request.Context(), c.Param("id"), req.Outcome); err != nil {
		writeErr(c, err)
		return
	}
	response.Success(c, nil)
}
