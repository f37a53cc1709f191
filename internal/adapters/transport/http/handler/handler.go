package handler

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/httperr"
	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// pathID разбирает :id; при ошибке ответ уже записан.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.Write(c, customErrors.NewInvalidArgument("invalid id "+c.Param("id")))
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	httperr.Write(c, customErrors.NewInvalidArgument(err.Error()))
}

// fingerprint – отпечаток идентификатора для логов вместо самого значения.
func fingerprint(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))[:16]
}
