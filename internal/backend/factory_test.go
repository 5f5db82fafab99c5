package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracto/internal/config"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
	"extracto/internal/statement"
	"extracto/internal/storage"
)

func writeData(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "balance.txt"), []byte("12.17\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte(strings.Join([]string{
		"id,date,description,amount,category",
		"a,2024-01-05,Mercadona,-47.83,food",
		"b,2024-01-10,Bizum,25.00,transfer",
		"c,2024-01-15,Netflix,-17.99,entertainment",
	}, "\n")), 0o644))
}

func january() core.Period {
	return core.Period{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
}

func newFactory() *DefaultFactory {
	f := NewFactory(log.NewNop())
	f.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestCreateMemoryFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)

	res, err := newFactory().Create(context.Background(), Config{
		Type: MemoryBackend, Artifacts: FSArtifacts,
		DataDirectory: dir, ArtifactDir: filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	defer res.Cleanup()

	req, err := source.BuildRequest(context.Background(), res.Source, january())
	require.NoError(t, err)
	assert.Len(t, req.Transactions, 3)
	assert.Equal(t, int64(1217), req.ClosingBalance.Cents)

	ref, err := res.Artifacts.Save(context.Background(), statement.Document{Name: "x.json", Content: []byte("{}")})
	require.NoError(t, err)
	assert.FileExists(t, ref)
	assert.Empty(t, res.Checks)
}

func TestCreateMemorySample(t *testing.T) {
	res, err := newFactory().Create(context.Background(), Config{
		Type: MemoryBackend, Artifacts: FSArtifacts,
		DataDirectory: t.TempDir(), ArtifactDir: t.TempDir(),
		SampleSeed: 42, SampleCount: 20,
	})
	require.NoError(t, err)
	defer res.Cleanup()

	p := core.Period{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 3, 10)}
	txs, err := res.Source.Transactions(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, txs, 20, "custom entries fall outside the sample window")
}

func TestCreateSQLiteSeedsOnceAndSharesArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeData(t, dir)
	cfg := Config{
		Type: SQLiteBackend, Artifacts: SQLiteArtifacts,
		DataDirectory: dir, SQLiteDBPath: filepath.Join(dir, "db", "extracto.db"),
	}

	res, err := newFactory().Create(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, res.Source, res.Artifacts)
	require.Contains(t, res.Checks, "sqlite")
	require.NoError(t, res.Checks["sqlite"](context.Background()))

	_, err = res.Source.Append(context.Background(), core.Transaction{
		ID: "d", Amount: core.Money{Cents: -100}, Date: core.NewDate(2024, 2, 1), Category: core.Bills,
	})
	require.NoError(t, err)
	require.NoError(t, res.Cleanup())

	// A second start must not import the files again.
	res, err = newFactory().Create(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Cleanup()
	repo := res.Source.(*storage.SQLiteRepository)
	req, err := source.BuildRequest(context.Background(), repo, january())
	require.NoError(t, err)
	assert.Len(t, req.Transactions, 3)
	assert.Equal(t, int64(1217), req.ClosingBalance.Cents)
	bal, err := repo.Balance(context.Background(), core.NewDate(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1117), bal.Cents)
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	_, err := newFactory().Create(context.Background(), Config{Type: "postgres", Artifacts: FSArtifacts, ArtifactDir: "x"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = newFactory().Create(context.Background(), Config{Type: MemoryBackend, Artifacts: GCSArtifacts})
	assert.ErrorContains(t, err, "GCS bucket is required")

	_, err = newFactory().Create(context.Background(), Config{Type: SheetsBackend, Artifacts: FSArtifacts, ArtifactDir: "x"})
	assert.ErrorContains(t, err, "Spreadsheet ID")
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	app := &config.Config{DataBackend: "sqlite", ArtifactStore: "sqlite", SQLiteDBPath: "./x.db", SampleSeed: 3}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, SQLiteArtifacts, cfg.Artifacts)
	assert.Equal(t, int64(3), cfg.SampleSeed)
}
