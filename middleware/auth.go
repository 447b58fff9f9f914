package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/thaoanhhaa1/kltn-backend/model"
)

const (
	// UserIDContextKey 鉴权通过后用户 id 写入 gin context 的键
	UserIDContextKey = "user_id"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Auth 校验 HS256 bearer token，把 payload 里的用户 id 放进请求上下文
func Auth(accessSecret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader(authorizationHeader)
		if header == "" {
			abortUnauthorized(ctx, model.ErrorAuthMissing)
			return
		}

		tokenString := strings.TrimPrefix(header, bearerPrefix)

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(accessSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(ctx, model.ErrorAuthExpired)
				return
			}
			abortUnauthorized(ctx, model.ErrorAuthInvalid)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abortUnauthorized(ctx, model.ErrorAuthInvalid)
			return
		}

		userID := cast.ToString(claims["id"])
		if userID == "" {
			abortUnauthorized(ctx, model.ErrorAuthInvalid)
			return
		}

		ctx.Set(UserIDContextKey, userID)
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, code int) {
	err := model.NewErrorWithMessage(code, model.ErrorMessages[code])
	log.Warnf("Auth rejected for %s: %s", ctx.Request.URL.Path, err.Message)
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Message})
}

// UserIDFromContext 读取鉴权中间件写入的用户 id
func UserIDFromContext(ctx *gin.Context) string {
	return ctx.GetString(UserIDContextKey)
}
