package statement

import (
	"cmp"
	"slices"

	"extracto/internal/core"
)

// Aggregates are the totals derived from a transaction set and its closing balance.
type Aggregates struct {
	Opening     core.Money
	Closing     core.Money
	Net         core.Money // sum of all amounts
	CreditTotal core.Money
	CreditCount int
	DebitTotal  core.Money // sum of absolute debit amounts
	DebitCount  int
	// Categories holds only categories that occur, ascending by total with
	// ties kept in first-seen order.
	Categories []core.CategoryTotal
}

// Aggregate computes the opening balance, credit and debit totals and the
// per-category totals. Zero amounts count toward neither credits nor debits.
func Aggregate(txs []core.Transaction, closing core.Money) Aggregates {
	agg := Aggregates{Closing: closing}
	index := map[core.Category]int{}
	for _, t := range txs {
		agg.Net = agg.Net.Add(t.Amount)
		switch {
		case t.IsCredit():
			agg.CreditTotal = agg.CreditTotal.Add(t.Amount)
			agg.CreditCount++
		case t.IsDebit():
			agg.DebitTotal = agg.DebitTotal.Add(t.Amount.Abs())
			agg.DebitCount++
		}

		i, ok := index[t.Category]
		if !ok {
			i = len(agg.Categories)
			index[t.Category] = i
			agg.Categories = append(agg.Categories, core.CategoryTotal{Category: t.Category})
		}
		agg.Categories[i].Count++
		agg.Categories[i].Total = agg.Categories[i].Total.Add(t.Amount)
	}
	agg.Opening = closing.Sub(agg.Net)

	slices.SortStableFunc(agg.Categories, func(a, b core.CategoryTotal) int {
		return cmp.Compare(a.Total.Cents, b.Total.Cents)
	})
	return agg
}

// ByCategory returns the category totals keyed by category.
func (a Aggregates) ByCategory() map[core.Category]core.CategoryTotal {
	out := make(map[core.Category]core.CategoryTotal, len(a.Categories))
	for _, c := range a.Categories {
		out[c.Category] = c
	}
	return out
}

// Chronological returns a copy of txs sorted ascending by date. Transactions
// on the same instant keep their input order.
func Chronological(txs []core.Transaction) []core.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}
