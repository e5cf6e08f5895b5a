package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	bondshandler "bond_dashboard/internal/feature/bonds/transport/handler"
	"bond_dashboard/internal/platform/http/handler"
	"bond_dashboard/internal/platform/http/middleware"
	"bond_dashboard/internal/web"
)

// Options はルーター全体に関わる設定です。
type Options struct {
	// CORSOrigins が空でなければCORSを有効にする
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter はダッシュボード、JSON API、運用系エンドポイントのルートを登録します。
func NewRouter(dashboard *bondshandler.DashboardHandler, db handler.Pinger, metrics http.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(opts.Logger))
	// プリフライトはルートに一致しないため、エンジン全体に適用する
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Origin", "Content-Type", middleware.HeaderRequestID},
			MaxAge:       12 * time.Hour,
		}))
	}
	r.SetHTMLTemplate(web.Templates())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(db))
	r.GET("/metrics", gin.WrapH(metrics))

	// ダッシュボード画面
	r.GET("/", dashboard.Page)

	api := r.Group("/api")
	{
		api.GET("/series", dashboard.ListSeries)
		api.GET("/series/:id/prices", dashboard.GetPrices)
		api.GET("/series/:id/summary", dashboard.GetSummary)
		api.GET("/dashboard", dashboard.GetDashboard)
		api.POST("/cache/purge", dashboard.PurgeCache)
	}

	return r
}
