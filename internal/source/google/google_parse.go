package google

import (
	"errors"
	"fmt"
	"strings"

	"extracto/internal/core"
)

// Column layout of a movements sheet.
const (
	colDate = iota
	colDescription
	colAmount
	colCategory
	colID
	minColumns = colCategory + 1
)

// parseTransactions converts a values matrix (as returned by Sheets API)
// into transactions. A header row, blank rows and rows that do not parse are
// skipped; skipped counts the latter. Rows without an ID get a positional one.
func parseTransactions(values [][]interface{}, year int) (txs []core.Transaction, skipped int) {
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) < minColumns || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		date, err := core.ParseDate(row[colDate])
		if err != nil {
			if i != 0 {
				skipped++
			}
			continue
		}
		amount, err := core.ParseAmount(row[colAmount])
		if err != nil {
			skipped++
			continue
		}
		cat, err := core.ParseCategory(row[colCategory])
		if err != nil {
			skipped++
			continue
		}
		id := strings.TrimSpace(safeGet(row, colID))
		if id == "" {
			id = fmt.Sprintf("sheet-%d-%d", year, i+1)
		}
		txs = append(txs, core.Transaction{
			ID:          id,
			Description: row[colDescription],
			Amount:      amount,
			Date:        date,
			Category:    cat,
		})
	}
	return txs, skipped
}

// parseBalance reads the single cell of the balance range.
func parseBalance(values [][]interface{}) (core.Money, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return core.Money{}, errors.New("balance cell is empty")
	}
	return core.ParseAmount(strings.TrimSpace(fmt.Sprint(values[0][0])))
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
