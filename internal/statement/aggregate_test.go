package statement_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracto/internal/core"
	"extracto/internal/statement"
)

func cents(c int64) core.Money { return core.Money{Cents: c} }

func tx(id string, amount int64, cat core.Category, y, m, d int) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: "Movement " + id,
		Amount:      cents(amount),
		Date:        core.NewDate(y, m, d),
		Category:    cat,
	}
}

// scenarioTransactions is the reference statement: closing 12.17, opening 52.99.
func scenarioTransactions() []core.Transaction {
	return []core.Transaction{
		tx("c", -1799, core.Entertainment, 2024, 1, 15),
		tx("a", -4783, core.Food, 2024, 1, 5),
		tx("b", 2500, core.Transfer, 2024, 1, 10),
	}
}

func TestAggregateScenario(t *testing.T) {
	agg := statement.Aggregate(scenarioTransactions(), cents(1217))

	assert.Equal(t, cents(5299), agg.Opening)
	assert.Equal(t, cents(1217), agg.Closing)
	assert.Equal(t, cents(-4082), agg.Net)
	assert.Equal(t, cents(2500), agg.CreditTotal)
	assert.Equal(t, 1, agg.CreditCount)
	assert.Equal(t, cents(6582), agg.DebitTotal)
	assert.Equal(t, 2, agg.DebitCount)

	require.Len(t, agg.Categories, 3)
	assert.Equal(t, core.Food, agg.Categories[0].Category)
	assert.Equal(t, core.Entertainment, agg.Categories[1].Category)
	assert.Equal(t, core.Transfer, agg.Categories[2].Category)
}

func TestAggregateEmpty(t *testing.T) {
	agg := statement.Aggregate(nil, cents(1000))

	assert.Equal(t, cents(1000), agg.Opening)
	assert.True(t, agg.Net.IsZero())
	assert.True(t, agg.CreditTotal.IsZero())
	assert.True(t, agg.DebitTotal.IsZero())
	assert.Zero(t, agg.CreditCount)
	assert.Zero(t, agg.DebitCount)
	assert.Empty(t, agg.Categories)
}

func TestAggregateZeroAmounts(t *testing.T) {
	txs := []core.Transaction{
		tx("1", 0, core.Bills, 2024, 3, 1),
		tx("2", 0, core.Bills, 2024, 3, 2),
		tx("3", -500, core.Food, 2024, 3, 3),
	}
	agg := statement.Aggregate(txs, cents(0))

	assert.Zero(t, agg.CreditCount)
	assert.Equal(t, 1, agg.DebitCount)
	assert.Equal(t, cents(500), agg.Opening)

	bills := agg.ByCategory()[core.Bills]
	assert.Equal(t, 2, bills.Count)
	assert.True(t, bills.Total.IsZero())
}

func TestAggregateCategoryTiesKeepFirstSeen(t *testing.T) {
	txs := []core.Transaction{
		tx("1", -1000, core.Transport, 2024, 5, 1),
		tx("2", -1000, core.Shopping, 2024, 5, 2),
		tx("3", -3000, core.Bills, 2024, 5, 3),
		tx("4", -1000, core.Food, 2024, 5, 4),
	}
	agg := statement.Aggregate(txs, cents(0))

	var order []core.Category
	for _, c := range agg.Categories {
		order = append(order, c.Category)
	}
	assert.Equal(t, []core.Category{core.Bills, core.Transport, core.Shopping, core.Food}, order)
}

func TestAggregateConservation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 50; round++ {
		n := r.IntN(300)
		txs := make([]core.Transaction, n)
		var sum int64
		for i := range txs {
			amount := r.Int64N(200000) - 100000
			sum += amount
			txs[i] = tx("t", amount, core.Categories[r.IntN(len(core.Categories))], 2024, 1+r.IntN(12), 1+r.IntN(28))
		}
		closing := cents(r.Int64N(1000000))
		agg := statement.Aggregate(txs, closing)

		var byCategory int64
		count := 0
		for _, c := range agg.Categories {
			byCategory += c.Total.Cents
			count += c.Count
		}
		require.Equal(t, sum, byCategory, "round %d", round)
		require.Equal(t, n, count, "round %d", round)
		require.Equal(t, closing, agg.Opening.Add(agg.Net), "round %d", round)
		require.Equal(t, agg.Net, agg.CreditTotal.Sub(agg.DebitTotal), "round %d", round)
	}
}

func TestChronologicalIsStableAndCopies(t *testing.T) {
	in := []core.Transaction{
		tx("late", 100, core.Food, 2024, 2, 1),
		tx("same-1", 100, core.Food, 2024, 1, 10),
		tx("early", 100, core.Food, 2024, 1, 1),
		tx("same-2", 100, core.Food, 2024, 1, 10),
	}
	out := statement.Chronological(in)

	var ids []string
	for _, x := range out {
		ids = append(ids, x.ID)
	}
	assert.Equal(t, []string{"early", "same-1", "same-2", "late"}, ids)
	assert.Equal(t, "late", in[0].ID, "input must not be reordered")
}
