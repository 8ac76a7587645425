package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-engine/internal/api/middleware"
	"github.com/d60-Lab/social-engine/pkg/response"
)

// Logout 登出
// @Summary 登出并清空本会话的账号快照缓存
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if h.sessions != nil {
		if err := h.sessions.Invalidate(c.Request.Context(), middleware.Principal(c)); err != nil {
			writeErr(c, err)
			return
		}
	}
	response.Success(c, nil)
}
