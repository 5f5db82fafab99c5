package memory

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"extracto/internal/core"
)

// DefaultBalance is the demo account's available balance.
var DefaultBalance = core.Money{Cents: 1217}

var descriptions = map[core.Category][]string{
	core.Shopping:      {"Amazon", "Zara", "El Corte Inglés", "MediaMarkt", "IKEA"},
	core.Food:          {"Mercadona", "Carrefour", "Lidl", "Uber Eats", "Glovo"},
	core.Transport:     {"Renfe", "Metro Madrid", "Cabify", "Repsol", "BP Gasolinera"},
	core.Bills:         {"Iberdrola", "Vodafone", "Naturgy", "Movistar", "Endesa"},
	core.Entertainment: {"Netflix", "Spotify", "HBO Max", "Steam", "PlayStation Store"},
	core.Transfer:      {"Bizum - Juan", "Bizum - María", "Transfer to savings", "BBVA plan estars..."},
	core.Subscription:  {"Gym membership", "iCloud Storage", "Google One", "Debit viva agua s..."},
}

// SampleOptions drives the demo data generator.
type SampleOptions struct {
	Seed    uint64
	Period  core.Period
	Count   int
	Balance core.Money
	// Custom transactions are added as-is and their descriptions join the
	// random pool of their category.
	Custom []core.Transaction
}

// Sample generates Count debits between 1.00 and 151.00 spread over the
// period, merges the custom ones and returns everything latest first. The
// same options always produce the same transactions.
func Sample(opts SampleOptions) []core.Transaction {
	r := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	pool := make(map[core.Category][]string, len(descriptions))
	for c, d := range descriptions {
		pool[c] = slices.Clone(d)
	}
	for _, t := range opts.Custom {
		if t.Description != "" && !slices.Contains(pool[t.Category], t.Description) {
			pool[t.Category] = append(pool[t.Category], t.Description)
		}
	}

	start := opts.Period.Start.Time
	span := opts.Period.End.AddDate(0, 0, 1).Sub(start)
	out := make([]core.Transaction, 0, opts.Count+len(opts.Custom))
	for i := 0; i < opts.Count; i++ {
		cat := core.Categories[r.IntN(len(core.Categories))]
		descs := pool[cat]
		var offset time.Duration
		if span > 0 {
			offset = time.Duration(r.Int64N(int64(span)))
		}
		out = append(out, core.Transaction{
			ID:          fmt.Sprintf("txn-%d", i),
			Description: descs[r.IntN(len(descs))],
			Amount:      core.Money{Cents: -(100 + r.Int64N(15001))},
			Date:        core.Date{Time: start.Add(offset)},
			Category:    cat,
		})
	}
	out = append(out, opts.Custom...)

	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return cmp.Compare(b.Date.UnixNano(), a.Date.UnixNano())
	})
	return out
}

// NewSample returns a store holding Sample(opts) whose current balance is
// opts.Balance.
func NewSample(opts SampleOptions) *Store {
	return New(opts.Balance, Sample(opts)...)
}

// CustomTransactions are the hand-written demo entries.
func CustomTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "custom-1", Description: "Bizum - Carlos", Amount: core.Money{Cents: -2500}, Date: core.NewDate(2026, 2, 20), Category: core.Transfer},
		{ID: "custom-2", Description: "Mercadona", Amount: core.Money{Cents: -4783}, Date: core.NewDate(2026, 2, 18), Category: core.Food},
		{ID: "custom-3", Description: "Netflix", Amount: core.Money{Cents: -1799}, Date: core.NewDate(2026, 2, 15), Category: core.Entertainment},
	}
}
