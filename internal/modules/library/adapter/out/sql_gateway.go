package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"libtrack/internal/modules/library/domain"
	libraryout "libtrack/internal/modules/library/port/out"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type categoryModel struct {
	bun.BaseModel `bun:"table:categories"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

type bookModel struct {
	bun.BaseModel `bun:"table:books"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title,notnull"`
	Author      string    `bun:"author,notnull"`
	ISBN        string    `bun:"isbn,nullzero"`
	CategoryID  string    `bun:"category_id,nullzero"`
	AddedAt     time.Time `bun:"added_at,notnull"`
	IsAvailable bool      `bun:"is_available,notnull"`
}

type memberModel struct {
	bun.BaseModel `bun:"table:members"`

	ID       string    `bun:"id,pk"`
	Name     string    `bun:"name,notnull"`
	Email    string    `bun:"email,notnull"`
	JoinedAt time.Time `bun:"joined_at,notnull"`
}

type loanModel struct {
	bun.BaseModel `bun:"table:loans"`

	ID         string    `bun:"id,pk"`
	BookID     string    `bun:"book_id,notnull"`
	MemberID   string    `bun:"member_id,notnull"`
	BorrowedAt time.Time `bun:"borrowed_at,notnull"`
	DueAt      time.Time `bun:"due_at,nullzero"`
	ReturnedAt time.Time `bun:"returned_at,nullzero"`
}

// SQLGateway stores the library in four tables through bun. References
// between tables are plain columns without foreign keys so deleted members
// can leave their loans behind.
type SQLGateway struct {
	db     *bun.DB
	logger *clog.Logger
}

// NewSQLGateway opens driver ("sqlite", "postgres" or "mysql") at dsn and
// creates missing tables.
func NewSQLGateway(ctx context.Context, driver, dsn string, logger *clog.Logger) (*SQLGateway, error) {
	driverName := driver
	var dial schema.Dialect
	switch driver {
	case "sqlite":
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dial = sqlitedialect.New()
	case "postgres":
		driverName = "pgx"
		dial = pgdialect.New()
	case "mysql":
		dial = mysqldialect.New()
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}
	gateway := &SQLGateway{db: bun.NewDB(sqlDB, dial), logger: logger}
	if err := gateway.ensureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("sql gateway ready", "driver", driver)
	return gateway, nil
}

var _ libraryout.Gateway = (*SQLGateway)(nil)

func (g *SQLGateway) ensureSchema(ctx context.Context) error {
	for _, model := range []any{(*categoryModel)(nil), (*bookModel)(nil), (*memberModel)(nil), (*loanModel)(nil)} {
		if _, err := g.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

func (g *SQLGateway) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryModel
	if err := g.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Category{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (g *SQLGateway) LoadBooks(ctx context.Context) ([]domain.Book, error) {
	var rows []bookModel
	if err := g.db.NewSelect().Model(&rows).Order("title ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	out := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Book{
			ID:          row.ID,
			Title:       row.Title,
			Author:      row.Author,
			ISBN:        row.ISBN,
			CategoryID:  row.CategoryID,
			AddedAt:     row.AddedAt.UTC(),
			IsAvailable: row.IsAvailable,
		})
	}
	return out, nil
}

func (g *SQLGateway) LoadMembers(ctx context.Context) ([]domain.Member, error) {
	var rows []memberModel
	if err := g.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	out := make([]domain.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Member{ID: row.ID, Name: row.Name, Email: row.Email, JoinedAt: row.JoinedAt.UTC()})
	}
	return out, nil
}

func (g *SQLGateway) LoadLoans(ctx context.Context) ([]domain.Loan, error) {
	var rows []loanModel
	if err := g.db.NewSelect().Model(&rows).Order("borrowed_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select loans: %w", err)
	}
	out := make([]domain.Loan, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Loan{
			ID:         row.ID,
			BookID:     row.BookID,
			MemberID:   row.MemberID,
			BorrowedAt: row.BorrowedAt.UTC(),
			DueAt:      utcOrZero(row.DueAt),
			ReturnedAt: utcOrZero(row.ReturnedAt),
		})
	}
	return out, nil
}

// Save applies the transaction inside one database transaction: upserts
// first, then deletes.
func (g *SQLGateway) Save(ctx context.Context, change domain.Transaction) error {
	if change.Empty() {
		return nil
	}
	return g.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(change.PutCategories) > 0 {
			rows := make([]categoryModel, 0, len(change.PutCategories))
			for _, c := range change.PutCategories {
				rows = append(rows, categoryModel{ID: c.ID, Name: c.Name})
			}
			if err := g.upsert(ctx, tx, &rows); err != nil {
				return fmt.Errorf("upsert categories: %w", err)
			}
		}
		if len(change.PutBooks) > 0 {
			rows := make([]bookModel, 0, len(change.PutBooks))
			for _, b := range change.PutBooks {
				rows = append(rows, bookModel{
					ID:          b.ID,
					Title:       b.Title,
					Author:      b.Author,
					ISBN:        b.ISBN,
					CategoryID:  b.CategoryID,
					AddedAt:     b.AddedAt,
					IsAvailable: b.IsAvailable,
				})
			}
			if err := g.upsert(ctx, tx, &rows); err != nil {
				return fmt.Errorf("upsert books: %w", err)
			}
		}
		if len(change.PutMembers) > 0 {
			rows := make([]memberModel, 0, len(change.PutMembers))
			for _, m := range change.PutMembers {
				rows = append(rows, memberModel{ID: m.ID, Name: m.Name, Email: m.Email, JoinedAt: m.JoinedAt})
			}
			if err := g.upsert(ctx, tx, &rows); err != nil {
				return fmt.Errorf("upsert members: %w", err)
			}
		}
		if len(change.PutLoans) > 0 {
			rows := make([]loanModel, 0, len(change.PutLoans))
			for _, l := range change.PutLoans {
				rows = append(rows, loanModel{
					ID:         l.ID,
					BookID:     l.BookID,
					MemberID:   l.MemberID,
					BorrowedAt: l.BorrowedAt,
					DueAt:      l.DueAt,
					ReturnedAt: l.ReturnedAt,
				})
			}
			if err := g.upsert(ctx, tx, &rows); err != nil {
				return fmt.Errorf("upsert loans: %w", err)
			}
		}

		deletes := []struct {
			model any
			ids   []string
		}{
			{(*loanModel)(nil), change.DeleteLoans},
			{(*bookModel)(nil), change.DeleteBooks},
			{(*memberModel)(nil), change.DeleteMembers},
			{(*categoryModel)(nil), change.DeleteCategories},
		}
		for _, del := range deletes {
			if len(del.ids) == 0 {
				continue
			}
			if _, err := tx.NewDelete().Model(del.model).Where("id IN (?)", bun.In(del.ids)).Exec(ctx); err != nil {
				return fmt.Errorf("delete from %T: %w", del.model, err)
			}
		}
		return nil
	})
}

func (g *SQLGateway) upsert(ctx context.Context, tx bun.Tx, rows any) error {
	q := tx.NewInsert().Model(rows)
	if g.db.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE")
	} else {
		q = q.On("CONFLICT (id) DO UPDATE")
	}
	_, err := q.Exec(ctx)
	return err
}

func (g *SQLGateway) Close() error {
	return g.db.Close()
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
