// Package usecase は債券ダッシュボードのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bond_dashboard/internal/feature/bonds/domain/entity"
)

var (
	// ErrUnknownSeries はレジストリに存在しない系列IDが指定された場合に返されます。
	ErrUnknownSeries = errors.New("unknown series")
	// ErrTableNotFound は系列またはサマリーのテーブルがデータベースに存在しない場合に返されます。
	ErrTableNotFound = errors.New("table not found")
)

// BondRepository は債券データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type BondRepository interface {
	// FindPrices は系列テーブルの価格データを日付順に返します。
	FindPrices(ctx context.Context, seriesID string) ([]entity.PricePoint, error)
	// FindSummary はサマリーテーブルからsymbolの行を返します。
	FindSummary(ctx context.Context, symbol string) (entity.SummaryTable, error)
}

// SeriesCatalog は既知の系列の一覧を提供します。
type SeriesCatalog interface {
	All() []entity.Series
	Lookup(id string) (entity.Series, bool)
	Groups() []entity.CountryGroup
}

// DashboardUsecase は選択された系列からダッシュボードを組み立てます。
type DashboardUsecase struct {
	catalog SeriesCatalog
	repo    BondRepository
}

// NewDashboardUsecase は新しいDashboardUsecaseを生成します。
func NewDashboardUsecase(catalog SeriesCatalog, repo BondRepository) *DashboardUsecase {
	return &DashboardUsecase{catalog: catalog, repo: repo}
}

// Groups はチェックボックス表示用に国別の系列を返します。
func (u *DashboardUsecase) Groups() []entity.CountryGroup {
	return u.catalog.Groups()
}

// Build は選択された系列の価格とサマリーを取得して1つのダッシュボードにまとめます。
// 未知のIDが含まれる場合は ErrUnknownSeries を返します。
// 個々の系列の取得失敗は Dashboard.Errors に記録し、残りの系列の処理を続けます。
func (u *DashboardUsecase) Build(ctx context.Context, ids []string) (entity.Dashboard, error) {
	selected, err := u.resolve(ids)
	if err != nil {
		return entity.Dashboard{}, err
	}

	d := entity.Dashboard{
		Selected: selected,
		Prices:   []entity.BondPrice{},
		Summary:  entity.SummaryTable{Columns: []string{}, Rows: []map[string]any{}},
		Errors:   []entity.SeriesError{},
	}
	if len(selected) == 0 {
		return d, nil
	}

	for _, s := range selected {
		points, err := u.repo.FindPrices(ctx, s.ID)
		if err != nil {
			d.Errors = append(d.Errors, seriesError(s, entity.StagePrices, err))
			continue
		}
		for _, p := range points {
			d.Prices = append(d.Prices, entity.BondPrice{
				Bond:          s.DisplayName,
				Date:          p.Date,
				AdjustedClose: p.AdjustedClose,
			})
		}
	}

	// サマリーはチャートを描画できる場合のみ表示する
	if !d.HasChart() {
		return d, nil
	}

	for _, s := range selected {
		t, err := u.repo.FindSummary(ctx, s.SummarySymbol)
		if err != nil {
			d.Errors = append(d.Errors, seriesError(s, entity.StageSummary, err))
			continue
		}
		d.Summary.Append(tagSummary(t, s.DisplayName))
	}
	if d.HasSummary() {
		d.Summary.Columns = moveToEnd(d.Summary.Columns, entity.BondColumn)
	}
	return d, nil
}

// Prices は1系列の価格データを返します。
func (u *DashboardUsecase) Prices(ctx context.Context, id string) ([]entity.PricePoint, error) {
	s, ok := u.catalog.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, id)
	}
	return u.repo.FindPrices(ctx, s.ID)
}

// Summary は1系列のサマリー行を返します。
func (u *DashboardUsecase) Summary(ctx context.Context, id string) (entity.SummaryTable, error) {
	s, ok := u.catalog.Lookup(id)
	if !ok {
		return entity.SummaryTable{}, fmt.Errorf("%w: %s", ErrUnknownSeries, id)
	}
	return u.repo.FindSummary(ctx, s.SummarySymbol)
}

// resolve はIDを系列に変換し、重複を除いてレジストリ順に並べます。
func (u *DashboardUsecase) resolve(ids []string) ([]entity.Series, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := u.catalog.Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, id)
		}
		want[id] = struct{}{}
	}

	selected := make([]entity.Series, 0, len(want))
	for _, s := range u.catalog.All() {
		if _, ok := want[s.ID]; ok {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

func seriesError(s entity.Series, stage string, err error) entity.SeriesError {
	slog.Warn("failed to fetch bond data", "series", s.ID, "stage", stage, "error", err)
	return entity.SeriesError{Series: s, Stage: stage, Message: err.Error()}
}

// tagSummary はキャッシュ済みのテーブルを書き換えないよう、行をコピーしてBond列を付与します。
func tagSummary(t entity.SummaryTable, bond string) entity.SummaryTable {
	out := entity.SummaryTable{
		Columns: append(append([]string{}, t.Columns...), entity.BondColumn),
		Rows:    make([]map[string]any, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		row := make(map[string]any, len(r)+1)
		for k, v := range r {
			row[k] = v
		}
		row[entity.BondColumn] = bond
		out.Rows = append(out.Rows, row)
	}
	return out
}

func moveToEnd(cols []string, name string) []string {
	out := make([]string, 0, len(cols))
	found := false
	for _, c := range cols {
		if c == name {
			found = true
			continue
		}
		out = append(out, c)
	}
	if found {
		out = append(out, name)
	}
	return out
}
