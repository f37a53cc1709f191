package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger пишет входящий запрос и итог; заголовки с учётными данными маскируются.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqHeaders, _ := json.Marshal(scrub(c.Request.Header))
		log.Debug("↘︎ incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("origin", c.GetHeader("Origin")),
			zap.ByteString("hdr", reqHeaders),
		)

		ts := time.Now()
		c.Next()

		latency := time.Since(ts)
		respStatus := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", respStatus),
			zap.Duration("latency", latency),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		}
		if u := CurrentUser(c); u.ID != 0 {
			fields = append(fields, zap.Int64("user_id", u.ID))
		}

		// Ошибки, которые handler сохранил в c.Errors
		for _, e := range c.Errors {
			lvl := log.Warn
			if respStatus >= http.StatusInternalServerError {
				lvl = log.Error
			}
			lvl("handler error", append(fields, zap.Error(e.Err))...)
		}

		if c.IsAborted() {
			log.Warn("↗︎ aborted", fields...)
			return
		}
		log.Info("↗︎ completed", fields...)
	}
}

func scrub(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "authorization") || strings.Contains(lk, "cookie") {
			clone[k] = []string{"[redacted]"}
		}
	}
	return clone
}
