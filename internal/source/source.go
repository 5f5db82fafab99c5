// Package source defines where statement data comes from.
package source

import (
	"context"
	"fmt"

	"extracto/internal/core"
	"extracto/internal/statement"
)

// Ports for outbound adapters.
type (
	// Reader lists transactions and reports the account balance.
	Reader interface {
		// Transactions returns the transactions dated inside p, in any order.
		Transactions(ctx context.Context, p core.Period) ([]core.Transaction, error)
		// Balance returns the account balance at the end of day asOf.
		Balance(ctx context.Context, asOf core.Date) (core.Money, error)
	}

	// Writer records a custom transaction.
	Writer interface {
		Append(ctx context.Context, t core.Transaction) (ref string, err error)
	}

	Store interface {
		Reader
		Writer
	}
)

// BuildRequest reads what a statement for p needs. Transactions outside the
// period are dropped here; the engine itself never filters.
func BuildRequest(ctx context.Context, r Reader, p core.Period) (statement.Request, error) {
	if err := p.Validate(); err != nil {
		return statement.Request{}, err
	}
	txs, err := r.Transactions(ctx, p)
	if err != nil {
		return statement.Request{}, fmt.Errorf("list transactions %s: %w", p, err)
	}
	closing, err := r.Balance(ctx, p.End)
	if err != nil {
		return statement.Request{}, fmt.Errorf("balance at %s: %w", p.End.ISO(), err)
	}
	return statement.Request{
		Transactions:   Within(txs, p),
		ClosingBalance: closing,
		Period:         p,
	}, nil
}

// Within keeps the transactions dated inside p, preserving order.
func Within(txs []core.Transaction, p core.Period) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// RollBack derives the balance at the end of asOf from the current balance by
// undoing every transaction dated after asOf.
func RollBack(current core.Money, txs []core.Transaction, asOf core.Date) core.Money {
	day := core.DateOf(asOf.Time)
	for _, t := range txs {
		if core.DateOf(t.Date.Time).After(day.Time) {
			current = current.Sub(t.Amount)
		}
	}
	return current
}
