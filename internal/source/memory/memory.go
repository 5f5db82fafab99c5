package memory

import (
	"bufio"
	"cmp"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"extracto/internal/core"
	"extracto/internal/source"
)

var _ source.Store = (*Store)(nil)

// Store keeps the account in memory: the current balance and every
// transaction ever recorded.
type Store struct {
	mu      sync.Mutex
	balance core.Money
	items   []core.Transaction
}

func New(balance core.Money, txs ...core.Transaction) *Store {
	return &Store{balance: balance, items: slices.Clone(txs)}
}

// NewFromFiles seeds the store from transactions.csv and balance.txt in base.
// Missing files leave the store empty with a zero balance.
func NewFromFiles(base string) (*Store, error) {
	balance, err := readBalance(filepath.Join(base, "balance.txt"))
	if err != nil {
		return nil, err
	}
	txs, err := readTransactions(filepath.Join(base, "transactions.csv"))
	if err != nil {
		return nil, err
	}
	return New(balance, txs...), nil
}

// Append records t and moves the current balance by its amount.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	s.balance = s.balance.Add(t.Amount)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Transactions returns the period's transactions latest first.
func (s *Store) Transactions(_ context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	out := source.Within(s.items, p)
	s.mu.Unlock()
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	return out, nil
}

// Snapshot returns the current balance and a copy of every transaction in
// insertion order.
func (s *Store) Snapshot() (core.Money, []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, slices.Clone(s.items)
}

func (s *Store) Balance(_ context.Context, asOf core.Date) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return source.RollBack(s.balance, s.items, asOf), nil
}

func readBalance(path string) (core.Money, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m, err := core.ParseAmount(line)
		if err != nil {
			return core.Money{}, fmt.Errorf("%s: %w", path, err)
		}
		return m, nil
	}
	return core.Money{}, sc.Err()
}

// readTransactions parses id,date,description,amount,category rows after a
// header line. Blank lines and lines starting with # are skipped.
func readTransactions(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

func parseCSV(r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var out []core.Transaction
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: want 5 fields, got %d", line, len(rec))
		}
		date, err := core.ParseDate(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := core.ParseAmount(rec[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cat, err := core.ParseCategory(rec[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, core.Transaction{
			ID:          strings.TrimSpace(rec[0]),
			Date:        date,
			Description: strings.TrimSpace(rec[2]),
			Amount:      amount,
			Category:    cat,
		})
	}
}
