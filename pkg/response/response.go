package response

import (
    "net/http"

    "github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
    Code    int         `json:"code"`
    Message string      `json:"message"`
    Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
    c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

// SuccessMsg 带提示信息的成功响应（例如 "request already pending"）
func SuccessMsg(c *gin.Context, message string, data interface{}) {
    c.JSON(http.StatusOK, Response{Code: 0, Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
    c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message})
}

func Unauthorized(c *gin.Context, message string) {
    c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: message})
}

func NotFound(c *gin.Context, message string) {
    c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: message})
}

func Conflict(c *gin.Context, message string) {
    c.JSON(http.StatusConflict, Response{Code: http.StatusConflict, Message: message})
}

func Unavailable(c *gin.Context, message string) {
    c.JSON(http.StatusServiceUnavailable, Response{Code: http.StatusServiceUnavailable, Message: message})
}

func InternalError(c *gin.Context, err error) {
    c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: err.Error()})
}
