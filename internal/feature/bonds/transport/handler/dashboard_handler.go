// Package handler はbondsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bond_dashboard/internal/feature/bonds/chart"
	"bond_dashboard/internal/feature/bonds/domain/entity"
	"bond_dashboard/internal/feature/bonds/transport/http/dto"
	"bond_dashboard/internal/feature/bonds/usecase"
	"bond_dashboard/internal/platform/http/middleware"
	"bond_dashboard/internal/web"
)

// seriesParam はチェックされた系列IDを受け取るクエリパラメータ名です。
const seriesParam = "series"

// DashboardUsecase はダッシュボードのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DashboardUsecase interface {
	Groups() []entity.CountryGroup
	Build(ctx context.Context, ids []string) (entity.Dashboard, error)
	Prices(ctx context.Context, id string) ([]entity.PricePoint, error)
	Summary(ctx context.Context, id string) (entity.SummaryTable, error)
}

// CachePurger はキャッシュ済みのクエリ結果を破棄します。
type CachePurger interface {
	Purge(ctx context.Context) error
}

// DashboardHandler はダッシュボード画面とJSON APIのリクエストを処理します。
type DashboardHandler struct {
	uc    DashboardUsecase
	cache CachePurger
}

// NewDashboardHandler は新しいDashboardHandlerを生成します。cacheはnilでもよく、その場合パージは何もしません。
func NewDashboardHandler(uc DashboardUsecase, cache CachePurger) *DashboardHandler {
	return &DashboardHandler{uc: uc, cache: cache}
}

// pageData はダッシュボードテンプレートに渡す値です。
type pageData struct {
	Groups    []entity.CountryGroup
	Dashboard entity.Dashboard
	Chart     *chart.Spec
	Legend    []web.LegendItem
	Error     string
}

// Page はチェックボックスで選択された系列のチャートとサマリーを含むHTMLを返します。
//
// エンドポイント例:
// GET /?series=de10_cdw_uk_10y_gbond&series=de10_cdw_us_10y_gbond
func (h *DashboardHandler) Page(c *gin.Context) {
	data := pageData{Groups: h.uc.Groups(), Legend: web.SummaryLegend}

	d, err := h.uc.Build(c.Request.Context(), c.QueryArray(seriesParam))
	if err != nil {
		status := statusFor(err)
		logFailure(c, status, err)
		data.Error = err.Error()
		c.HTML(status, web.DashboardTemplate, data)
		return
	}

	data.Dashboard = d
	data.Chart = chart.NewLineChart(d.Prices)
	c.HTML(http.StatusOK, web.DashboardTemplate, data)
}

// ListSeries は国別の系列一覧を返します。
//
// GET /api/series
func (h *DashboardHandler) ListSeries(c *gin.Context) {
	groups := h.uc.Groups()
	out := make([]dto.CountryGroup, 0, len(groups))
	for _, g := range groups {
		items := make([]dto.SeriesItem, 0, len(g.Series))
		for _, s := range g.Series {
			items = append(items, toSeriesItem(s))
		}
		out = append(out, dto.CountryGroup{Country: g.Country, Series: items})
	}
	c.JSON(http.StatusOK, out)
}

// GetDashboard はPageと同じ内容をJSONで返します。
//
// GET /api/dashboard?series=...
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	d, err := h.uc.Build(c.Request.Context(), c.QueryArray(seriesParam))
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	out := dto.DashboardResponse{
		Selected: make([]dto.SeriesItem, 0, len(d.Selected)),
		Prices:   make([]dto.BondPriceResponse, 0, len(d.Prices)),
		Summary:  toSummaryResponse(d.Summary),
		Errors:   make([]dto.SeriesErrorResponse, 0, len(d.Errors)),
	}
	for _, s := range d.Selected {
		out.Selected = append(out.Selected, toSeriesItem(s))
	}
	for _, p := range d.Prices {
		out.Prices = append(out.Prices, dto.BondPriceResponse{
			Bond:          p.Bond,
			Date:          formatDate(p.Date),
			AdjustedClose: p.AdjustedClose,
		})
	}
	for _, e := range d.Errors {
		out.Errors = append(out.Errors, dto.SeriesErrorResponse{
			SeriesID: e.Series.ID,
			Bond:     e.Series.DisplayName,
			Stage:    e.Stage,
			Message:  e.Message,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetPrices は1系列の価格データを返します。
//
// GET /api/series/:id/prices
func (h *DashboardHandler) GetPrices(c *gin.Context) {
	points, err := h.uc.Prices(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, lookupStatusFor(err), err)
		return
	}

	out := make([]dto.PriceResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.PriceResponse{Date: formatDate(p.Date), AdjustedClose: p.AdjustedClose})
	}
	c.JSON(http.StatusOK, out)
}

// GetSummary は1系列のサマリー行を返します。
//
// GET /api/series/:id/summary
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	t, err := h.uc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, lookupStatusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(t))
}

// PurgeCache はキャッシュ済みのクエリ結果を破棄します。
//
// POST /api/cache/purge
func (h *DashboardHandler) PurgeCache(c *gin.Context) {
	if h.cache != nil {
		if err := h.cache.Purge(c.Request.Context()); err != nil {
			fail(c, http.StatusBadGateway, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// fail はエラーを記録し、{"error": "..."} 形式で返します。
func fail(c *gin.Context, status int, err error) {
	logFailure(c, status, err)
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

// logFailure はリクエストIDを付けてエラーを記録します。
func logFailure(c *gin.Context, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(c.Request.Context(), level, "request failed",
		"request_id", middleware.GetRequestID(c),
		"path", c.Request.URL.Path,
		"status", status,
		"error", err,
	)
}

// statusFor は選択全体に対するエラーのHTTPステータスを返します。
func statusFor(err error) int {
	if errors.Is(err, usecase.ErrUnknownSeries) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// lookupStatusFor は1系列の取得エラーのHTTPステータスを返します。
func lookupStatusFor(err error) int {
	if errors.Is(err, usecase.ErrUnknownSeries) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func toSeriesItem(s entity.Series) dto.SeriesItem {
	return dto.SeriesItem{
		ID:       s.ID,
		Name:     s.DisplayName,
		Symbol:   s.SummarySymbol,
		Country:  s.Country,
		Maturity: s.Maturity,
	}
}

func toSummaryResponse(t entity.SummaryTable) dto.SummaryResponse {
	out := dto.SummaryResponse{Columns: t.Columns, Rows: t.Rows}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Rows == nil {
		out.Rows = []map[string]any{}
	}
	return out
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
