package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"extracto/internal/artifact"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
	"extracto/internal/statement"

	_ "modernc.org/sqlite"
)

var (
	_ source.Store   = (*SQLiteRepository)(nil)
	_ artifact.Store = (*SQLiteRepository)(nil)
)


type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentStorage),
	}, nil
}

// WithLogger replaces the repository logger.
func (r *SQLiteRepository) WithLogger(l *log.Logger) *SQLiteRepository {
	r.logger = l.WithComponent(log.ComponentStorage)
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append records t and moves the current balance by its amount.
func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertTransaction(ctx, tx, t); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE account SET balance_cents = balance_cents + ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		t.Amount.Cents); err != nil {
		return "", fmt.Errorf("update balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldOperation, log.OpAppend,
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.ISO())
	return "sqlite:" + t.ID, nil
}

// Import inserts historical transactions and sets the current balance as
// given, without moving it by their amounts.
func (r *SQLiteRepository) Import(ctx context.Context, balance core.Money, txs []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction #%d %q: %w", i, t.ID, err)
		}
		if err := insertTransaction(ctx, tx, t); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE account SET balance_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		balance.Cents); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.InfoContext(ctx, "Imported transactions", "count", len(txs), log.FieldClosingCents, balance.Cents)
	return nil
}

// Empty reports whether no transaction has been stored yet.
func (r *SQLiteRepository) Empty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return false, fmt.Errorf("count transactions: %w", err)
	}
	return n == 0, nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, t core.Transaction) error {
	at := t.Date.UTC()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, occurred_at, occurred_on, description, amount_cents, category)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, at.Format(time.RFC3339Nano), core.DateOf(at).ISO(), t.Description, t.Amount.Cents, string(t.Category))
	if err != nil {
		return fmt.Errorf("insert transaction %q: %w", t.ID, err)
	}
	return nil
}

// Transactions lists the period's transactions, latest first.
func (r *SQLiteRepository) Transactions(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, occurred_at, description, amount_cents, category
		 FROM transactions
		 WHERE occurred_on BETWEEN ? AND ?
		 ORDER BY occurred_at DESC, id`,
		core.DateOf(p.Start.Time).ISO(), core.DateOf(p.End.Time).ISO())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			at, cat string
			amount  int64
		)
		if err := rows.Scan(&t.ID, &at, &t.Description, &amount, &cat); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("transaction %q: parse time: %w", t.ID, err)
		}
		t.Date = core.Date{Time: ts}
		t.Amount = core.Money{Cents: amount}
		t.Category = core.Category(cat)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Balance is the current balance minus everything dated after asOf.
func (r *SQLiteRepository) Balance(ctx context.Context, asOf core.Date) (core.Money, error) {
	var current, later int64
	err := r.db.QueryRowContext(ctx, `SELECT balance_cents FROM account WHERE id = 1`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, fmt.Errorf("read balance: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE occurred_on > ?`,
		core.DateOf(asOf.Time).ISO()).Scan(&later)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum later transactions: %w", err)
	}
	return core.Money{Cents: current - later}, nil
}

// Save stores a rendered statement, replacing any earlier one with the same
// name and layout.
func (r *SQLiteRepository) Save(ctx context.Context, doc statement.Document) (string, error) {
	key := artifact.ObjectName(doc)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO statements (name, period_start, period_end, layout, content_type, pages, content, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     pages = excluded.pages,
		     content = excluded.content,
		     generated_at = excluded.generated_at,
		     created_at = CURRENT_TIMESTAMP`,
		key, doc.Period.Start.ISO(), doc.Period.End.ISO(), doc.Layout, doc.ContentType,
		doc.Pages, doc.Content, doc.GeneratedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("save statement %s: %w", key, err)
	}
	r.logger.InfoContext(ctx, "Statement stored",
		log.FieldOperation, log.OpSave,
		log.FieldDocument, key,
		log.FieldBytes, len(doc.Content))
	return "sqlite:" + key, nil
}
