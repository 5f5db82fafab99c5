package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(" " + string(c) + " ")
		if err != nil || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if got, err := ParseCategory("FOOD"); err != nil || got != Food {
		t.Fatalf("expected case-insensitive match, got %q, %v", got, err)
	}
	if _, err := ParseCategory("groceries"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "txn-1",
		Description: "Mercadona",
		Amount:      Money{Cents: -4783},
		Date:        NewDate(2024, 1, 5),
		Category:    Food,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := good
	zero.Amount = Money{}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount must be legal, got %v", err)
	}

	bads := []Transaction{
		{ID: "", Date: NewDate(2024, 1, 1), Category: Food},
		{ID: "a", Date: Date{Time: time.Time{}}, Category: Food},
		{ID: "a", Date: NewDate(2024, 1, 1), Category: "groceries"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPeriodValidate(t *testing.T) {
	if _, err := NewPeriod(NewDate(2024, 1, 31), NewDate(2024, 1, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := NewPeriod(NewDate(2024, 1, 1), NewDate(2024, 1, 1)); err != nil {
		t.Fatalf("single-day period must be valid, got %v", err)
	}
	if err := (Period{End: NewDate(2024, 1, 1)}).Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod for zero start, got %v", err)
	}
}

func TestPeriodContains(t *testing.T) {
	p := Period{Start: NewDate(2024, 1, 1), End: NewDate(2024, 1, 31)}
	late := Date{Time: time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)}
	if !p.Contains(late) {
		t.Fatalf("last day with time-of-day should be inside")
	}
	if p.Contains(NewDate(2024, 2, 1)) || p.Contains(NewDate(2023, 12, 31)) {
		t.Fatalf("days outside the bounds must not be contained")
	}
}

func TestPeriodMonths(t *testing.T) {
	p := Period{Start: NewDate(2024, 1, 15), End: NewDate(2024, 3, 10)}
	months := p.Months()
	want := []string{"2024-01-15..2024-01-31", "2024-02-01..2024-02-29", "2024-03-01..2024-03-10"}
	if len(months) != len(want) {
		t.Fatalf("got %d months, want %d", len(months), len(want))
	}
	for i, m := range months {
		if m.String() != want[i] {
			t.Fatalf("month %d = %s, want %s", i, m, want[i])
		}
	}
}

func TestDateFormats(t *testing.T) {
	d := NewDate(2024, 1, 5)
	if d.Compact() != "20240105" || d.ISO() != "2024-01-05" {
		t.Fatalf("unexpected formats %s %s", d.Compact(), d.ISO())
	}
	parsed, err := ParseDate("2024-01-05")
	if err != nil || !parsed.Equal(d.Time) {
		t.Fatalf("ParseDate: %v %v", parsed, err)
	}
}
