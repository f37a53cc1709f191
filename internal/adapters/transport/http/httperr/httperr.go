// Package httperr переводит доменные ошибки в HTTP-ответы {"error": "..."}.
package httperr

import (
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// Status возвращает HTTP-код и текст, безопасный для клиента.
func Status(err error) (int, string) {
	switch {
	case customErrors.IsInvalidCredentials(err):
		return http.StatusUnauthorized, customErrors.ErrInvalidCredentials.Error()
	case customErrors.IsInvalidToken(err):
		return http.StatusUnauthorized, customErrors.ErrInvalidToken.Error()
	case customErrors.IsInactiveUser(err):
		return http.StatusForbidden, "Inactive user"
	case customErrors.IsForbidden(err):
		return http.StatusForbidden, detail(err, customErrors.ErrForbidden)
	case customErrors.IsDuplicate(err), customErrors.IsInvalidArgument(err):
		return http.StatusBadRequest, detail(err, customErrors.ErrInvalidArgument)
	case customErrors.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Write пишет ответ и прерывает цепочку; исходная ошибка остаётся в c.Errors для логгера.
func Write(c *gin.Context, err error) {
	code, msg := Status(err)
	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// Unauthorized – ответ на запрос без bearer-токена.
func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
}

// detail снимает префикс сентинела: "not enough permissions: Cannot ..." → "Cannot ...".
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
