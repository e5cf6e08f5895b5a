// Package adapters はbondsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"bond_dashboard/internal/feature/bonds/domain/entity"
	"bond_dashboard/internal/feature/bonds/usecase"
)

const (
	// DefaultSchema は系列テーブルとサマリーテーブルが置かれるスキーマです。
	DefaultSchema = "student"
	// DefaultSummaryTable は全銘柄共通のサマリーテーブル名です。
	DefaultSummaryTable = "de10_cdw_bond_summary"

	pgUndefinedTable = "42P01"
)

// ErrInvalidTable はテーブル名として使えない識別子が渡された場合に返されます。
var ErrInvalidTable = errors.New("invalid table identifier")

// テーブル名はバインドできないため、SQLに埋め込む前にこの形式に限定する。
var tablePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Config はテーブルの配置を保持します。
type Config struct {
	Schema       string // 空の場合はスキーマ修飾なし
	SummaryTable string
}

// LoadConfig は環境変数からテーブル配置を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		Schema:       DefaultSchema,
		SummaryTable: DefaultSummaryTable,
	}
	if v, ok := os.LookupEnv("DB_SCHEMA"); ok {
		cfg.Schema = v
	}
	if v := os.Getenv("DB_SUMMARY_TABLE"); v != "" {
		cfg.SummaryTable = v
	}
	return cfg
}

// bondPostgres はBondRepositoryインターフェースのPostgreSQL実装です。
type bondPostgres struct {
	db  *gorm.DB
	cfg Config
}

var _ usecase.BondRepository = (*bondPostgres)(nil)

// NewBondRepository は指定されたDB接続でbondPostgresリポジトリの新しいインスタンスを生成します。
func NewBondRepository(db *gorm.DB, cfg Config) *bondPostgres {
	if cfg.SummaryTable == "" {
		cfg.SummaryTable = DefaultSummaryTable
	}
	return &bondPostgres{db: db, cfg: cfg}
}

// priceModel は系列テーブルのうちチャートに使う列です。
type priceModel struct {
	Date          time.Time `gorm:"column:date"`
	AdjustedClose *float64  `gorm:"column:adjusted_close"`
}

// FindPrices は系列テーブルの全行を日付順に返します。adjusted_closeがNULLの行は除きます。
func (r *bondPostgres) FindPrices(ctx context.Context, seriesID string) ([]entity.PricePoint, error) {
	table, err := r.qualify(seriesID)
	if err != nil {
		return nil, err
	}

	var rows []priceModel
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("date", "adjusted_close").
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, wrapQueryError(seriesID, err)
	}

	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		if m.AdjustedClose == nil {
			continue
		}
		out = append(out, entity.PricePoint{Date: m.Date, AdjustedClose: *m.AdjustedClose})
	}
	return out, nil
}

// FindSummary はサマリーテーブルからsymbolに一致する行を返します。
// 列構成はテーブル定義に従います。
func (r *bondPostgres) FindSummary(ctx context.Context, symbol string) (entity.SummaryTable, error) {
	table, err := r.qualify(r.cfg.SummaryTable)
	if err != nil {
		return entity.SummaryTable{}, err
	}

	rows, err := r.db.WithContext(ctx).
		Table(table).
		Where("symbol = ?", symbol).
		Rows()
	if err != nil {
		return entity.SummaryTable{}, wrapQueryError(r.cfg.SummaryTable, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return entity.SummaryTable{}, err
	}

	out := entity.SummaryTable{Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return entity.SummaryTable{}, fmt.Errorf("scan %s: %w", r.cfg.SummaryTable, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalize(values[i])
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return entity.SummaryTable{}, wrapQueryError(r.cfg.SummaryTable, err)
	}
	return out, nil
}

// Ping はデータベースへの疎通を確認します。
func (r *bondPostgres) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// qualify はテーブル名を検証し、スキーマ修飾した名前を返します。
func (r *bondPostgres) qualify(table string) (string, error) {
	if !tablePattern.MatchString(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	if r.cfg.Schema == "" {
		return table, nil
	}
	if !tablePattern.MatchString(r.cfg.Schema) {
		return "", fmt.Errorf("%w: schema %q", ErrInvalidTable, r.cfg.Schema)
	}
	return r.cfg.Schema + "." + table, nil
}

func wrapQueryError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("%w: %s", usecase.ErrTableNotFound, table)
	}
	return fmt.Errorf("query %s: %w", table, err)
}

// normalize はドライバ依存の型をJSONで往復しても変わらない型に揃えます。
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case float32:
		return float64(x)
	case float64, string, bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}
