package middleware

import (
	"context"
	"strings"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/policy"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey  = "rfi.user"
	ctxTokenKey = "rfi.access_token"
)

// Resolver – Identity Resolver: access-токен → активный пользователь.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (model.User, error)
}

// Authenticate требует "Authorization: Bearer <token>" и кладёт пользователя в контекст.
func Authenticate(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			httperr.Unauthorized(c)
			return
		}

		user, err := r.Resolve(c.Request.Context(), token)
		if err != nil {
			httperr.Write(c, err)
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// RequireSuperuser ставится после Authenticate.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := policy.RequireSuperuser(CurrentUser(c)); err != nil {
			httperr.Write(c, err)
			return
		}
		c.Next()
	}
}

func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func CurrentUser(c *gin.Context) model.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(model.User); ok {
			return u
		}
	}
	return model.User{}
}

// AccessToken – токен, с которым пришёл текущий запрос (нужен logout).
func AccessToken(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}
