package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"extracto/internal/artifact/fs"
	"extracto/internal/artifact/gcs"
	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source/google"
	"extracto/internal/source/memory"
	"extracto/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// build collects what has been opened so a failure halfway can release it.
type build struct {
	repo    *storage.SQLiteRepository
	closers []func() error
}

func (b *build) close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func (b *build) sqlite(path string) (*storage.SQLiteRepository, error) {
	if b.repo != nil {
		return b.repo, nil
	}
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	b.repo = repo
	b.closers = append(b.closers, repo.Close)
	return repo, nil
}

// Create builds the transaction source and the artifact store.
func (f *DefaultFactory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &build{}
	res := &Result{Checks: map[string]Check{}}

	if err := f.createSource(ctx, cfg, b, res); err != nil {
		b.close()
		return nil, err
	}
	if err := f.createArtifacts(ctx, cfg, b, res); err != nil {
		b.close()
		return nil, err
	}
	if b.repo != nil {
		res.Checks["sqlite"] = b.repo.Ping
	}
	res.Cleanup = b.close

	f.logger.InfoContext(ctx, "Initialized backend",
		"data_backend", cfg.Type.String(),
		"artifact_store", string(cfg.Artifacts))
	return res, nil
}

func (f *DefaultFactory) createSource(ctx context.Context, cfg Config, b *build, res *Result) error {
	switch cfg.Type {
	case MemoryBackend:
		balance, txs, err := f.seed(cfg)
		if err != nil {
			return err
		}
		res.Source = memory.New(balance, txs...)
		f.logger.InfoContext(ctx, "Initialized memory backend",
			"data_directory", cfg.DataDirectory, "transactions", len(txs))

	case SQLiteBackend:
		repo, err := b.sqlite(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		repo.WithLogger(f.logger)
		if err := f.seedSQLite(ctx, cfg, repo); err != nil {
			return err
		}
		res.Source = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	case SheetsBackend:
		creds, err := google.ReadCredentials(cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsFile)
		if err != nil {
			return err
		}
		cli, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			BalanceRange:    cfg.GoogleBalanceRange,
			CredentialsJSON: creds,
		}, f.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		res.Source = cli
		f.logger.InfoContext(ctx, "Initialized Google Sheets backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	default:
		return fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
	return nil
}

func (f *DefaultFactory) createArtifacts(ctx context.Context, cfg Config, b *build, res *Result) error {
	switch cfg.Artifacts {
	case FSArtifacts:
		store, err := fs.New(cfg.ArtifactDir)
		if err != nil {
			return err
		}
		res.Artifacts = store

	case GCSArtifacts:
		store, err := gcs.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, store.Close)
		res.Artifacts = store

	case SQLiteArtifacts:
		repo, err := b.sqlite(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		res.Artifacts = repo

	default:
		return fmt.Errorf("unsupported artifact store: %s", cfg.Artifacts)
	}
	return nil
}

// seed reads the data directory; when it holds no transactions and a sample
// seed is configured, a reproducible sample of the last three months is used
// instead.
func (f *DefaultFactory) seed(cfg Config) (core.Money, []core.Transaction, error) {
	files, err := memory.NewFromFiles(cfg.DataDirectory)
	if err != nil {
		return core.Money{}, nil, fmt.Errorf("load data directory: %w", err)
	}
	balance, txs := files.Snapshot()
	if len(txs) > 0 || cfg.SampleSeed == 0 {
		return balance, txs, nil
	}

	today := core.DateOf(f.now())
	start := core.MonthOf(today).Start
	opts := memory.SampleOptions{
		Seed:    uint64(cfg.SampleSeed),
		Period:  core.Period{Start: core.Date{Time: start.AddDate(0, -2, 0)}, End: today},
		Count:   cfg.SampleCount,
		Balance: memory.DefaultBalance,
		Custom:  memory.CustomTransactions(),
	}
	return opts.Balance, memory.Sample(opts), nil
}

// seedSQLite imports the seed data into an empty database.
func (f *DefaultFactory) seedSQLite(ctx context.Context, cfg Config, repo *storage.SQLiteRepository) error {
	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		return err
	}
	balance, txs, err := f.seed(cfg)
	if err != nil || len(txs) == 0 {
		return err
	}
	return repo.Import(ctx, balance, txs)
}
