package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
	"extracto/internal/statement"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "extracto.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	repo.WithLogger(log.NewNop())
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func january() core.Period {
	return core.Period{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
}

func TestAppendMovesBalance(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ref, err := repo.Append(ctx, core.Transaction{
		ID: "a", Description: "Mercadona", Amount: core.Money{Cents: -4783},
		Date: core.NewDate(2024, 1, 5), Category: core.Food,
	})
	if err != nil || ref != "sqlite:a" {
		t.Fatalf("Append: ref=%q err=%v", ref, err)
	}
	if _, err := repo.Append(ctx, core.Transaction{ID: "a", Date: core.NewDate(2024, 1, 6), Category: core.Food}); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if _, err := repo.Append(ctx, core.Transaction{ID: "b", Date: core.NewDate(2024, 1, 6), Category: "rent"}); !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	bal, err := repo.Balance(ctx, core.NewDate(2024, 2, 1))
	if err != nil || bal.Cents != -4783 {
		t.Fatalf("balance: %d err=%v", bal.Cents, err)
	}
}

func TestImportAndBuildRequest(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	at := time.Date(2024, 1, 15, 18, 42, 7, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "a", Description: "Mercadona", Amount: core.Money{Cents: -4783}, Date: core.NewDate(2024, 1, 5), Category: core.Food},
		{ID: "b", Description: "Bizum", Amount: core.Money{Cents: 2500}, Date: core.NewDate(2024, 1, 10), Category: core.Transfer},
		{ID: "c", Description: "Netflix", Amount: core.Money{Cents: -1799}, Date: core.Date{Time: at}, Category: core.Entertainment},
		{ID: "d", Description: "Renfe", Amount: core.Money{Cents: -1000}, Date: core.NewDate(2024, 2, 2), Category: core.Transport},
	}
	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		t.Fatalf("fresh database should be empty: %v %v", empty, err)
	}
	if err := repo.Import(ctx, core.Money{Cents: 217}, txs); err != nil {
		t.Fatalf("Import: %v", err)
	}

	req, err := source.BuildRequest(ctx, repo, january())
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.ClosingBalance.Cents != 1217 {
		t.Fatalf("closing balance: got %d, want 1217", req.ClosingBalance.Cents)
	}
	if len(req.Transactions) != 3 {
		t.Fatalf("want 3 transactions, got %d", len(req.Transactions))
	}
	if req.Transactions[0].ID != "c" || !req.Transactions[0].Date.Equal(at) {
		t.Fatalf("want latest first with time kept, got %+v", req.Transactions[0])
	}
	if req.Transactions[2].Category != core.Food || req.Transactions[2].Amount.Cents != -4783 {
		t.Fatalf("unexpected oldest row: %+v", req.Transactions[2])
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.Import(context.Background(), core.Money{Cents: 5}, []core.Transaction{
		{ID: "ok", Date: core.NewDate(2024, 1, 1), Category: core.Food},
		{ID: "", Date: core.NewDate(2024, 1, 2), Category: core.Food},
	})
	if !errors.Is(err, core.ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
	if empty, _ := repo.Empty(context.Background()); !empty {
		t.Fatal("failed import must not leave rows behind")
	}
}

func TestSaveReplacesStatement(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	doc := statement.Document{
		Name:        "STATEMENT_20240101_20240131.pdf",
		ContentType: "application/pdf",
		Pages:       2,
		Content:     []byte("%PDF-1.3 fake"),
		Layout:      "compact",
		Period:      january(),
		GeneratedAt: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
	}

	ref, err := repo.Save(ctx, doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ref != "sqlite:compact/STATEMENT_20240101_20240131.pdf" {
		t.Fatalf("unexpected ref %q", ref)
	}

	doc.Pages = 3
	if _, err := repo.Save(ctx, doc); err != nil {
		t.Fatalf("second Save should replace: %v", err)
	}
	var pages int
	var content []byte
	err = repo.db.QueryRowContext(ctx, `SELECT pages, content FROM statements WHERE name = ?`,
		"compact/STATEMENT_20240101_20240131.pdf").Scan(&pages, &content)
	if err != nil {
		t.Fatalf("query stored statement: %v", err)
	}
	if pages != 3 || string(content) != string(doc.Content) {
		t.Fatalf("unexpected stored row: pages=%d content=%q", pages, content)
	}
	var rows int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM statements`).Scan(&rows); err != nil || rows != 1 {
		t.Fatalf("want one stored statement, got %d (err=%v)", rows, err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	repo, path := newTestRepo(t)
	if err := repo.Import(context.Background(), core.Money{Cents: 42}, nil); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	reopened, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	bal, err := reopened.Balance(context.Background(), core.NewDate(2024, 1, 1))
	if err != nil || bal.Cents != 42 {
		t.Fatalf("balance survives reopen: %d err=%v", bal.Cents, err)
	}
}
