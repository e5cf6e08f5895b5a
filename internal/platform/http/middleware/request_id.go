// Package middleware はすべてのルートに共通するGinミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID はリクエストIDを運ぶヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// ContextRequestID はgin.Contextに保存するリクエストIDのキーです。
const ContextRequestID = "requestID"

// maxRequestIDLen を超えるクライアント指定のIDは採用しません。
const maxRequestIDLen = 128

// RequestID returns a middleware that tags every request with an ID and
// writes one structured access log line once the handler chain finishes.
func RequestID(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		// 1. クライアントが付与したIDを引き継ぐ。なければ生成する
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)

		// 2. 後続のハンドラーを実行
		start := time.Now()
		c.Next()

		// 3. アクセスログ
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("request_id", id),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// GetRequestID はミドルウェアが設定したリクエストIDを返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
