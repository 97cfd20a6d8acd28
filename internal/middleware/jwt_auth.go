package middleware

import (
	"strings"

	"github.com/kataras/iris/v12"

	"github.com/ahmetcancakir06/nodelab-case/internal/auth"
	"github.com/ahmetcancakir06/nodelab-case/internal/config"
)

// 认证通过后写入 iris context 的键
const (
	CtxUserID   = "auth.user_id"
	CtxUsername = "auth.username"
)

// JWTAuth Bearer token 校验中间件
func JWTAuth(cfg *config.JWTConfig) iris.Handler {
	return func(ctx iris.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.StopWithJSON(401, iris.Map{
				"success": false,
				"message": "Authorization header missing or malformed",
			})
			return
		}

		claims, err := auth.ParseToken(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		ctx.Values().Set(CtxUserID, claims.UserID)
		ctx.Values().Set(CtxUsername, claims.Username)
		ctx.Next()
	}
}

// UserID 读取当前请求已认证的用户 ID
func UserID(ctx iris.Context) int64 {
	v, _ := ctx.Values().Get(CtxUserID).(int64)
	return v
}
