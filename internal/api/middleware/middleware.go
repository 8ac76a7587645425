package middleware

import (
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/social-engine/pkg/logger"
	"github.com/d60-Lab/social-engine/pkg/response"
)

// PrincipalKey 认证通过后存入 gin.Context 的账号 ID key
const PrincipalKey = "principal_id"

// Principal 取出当前请求的账号 ID，未认证返回空串
func Principal(c *gin.Context) string {
	return c.GetString(PrincipalKey)
}

// Auth 解析 Bearer token（HS256），sub 即账号 ID
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Unauthorized(c, "invalid token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			response.Unauthorized(c, "invalid token subject")
			return
		}
		c.Set(PrincipalKey, sub)
		c.Next()
	}
}

// RateLimit 按账号限流；未认证请求共用匿名桶
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	return func(c *gin.Context) {
		key := Principal(c)
		if key == "" {
			key = c.ClientIP()
		}
		mu.Lock()
		lim, ok := limiters[key]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(perSecond), burst)
			limiters[key] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			c.AbortWithStatusJSON(429, gin.H{"code": 429, "message": "too many requests"})
			return
		}
		c.Next()
	}
}

// Recovery panic 兜底：记日志、报 sentry、返回 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))
				sentry.CurrentHub().Recover(r)
				c.AbortWithStatusJSON(500, gin.H{"code": 500, "message": "internal error"})
			}
		}()
		c.Next()
	}
}
