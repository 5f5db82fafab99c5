package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Shopping      Category = "shopping"
	Food          Category = "food"
	Transport     Category = "transport"
	Bills         Category = "bills"
	Entertainment Category = "entertainment"
	Transfer      Category = "transfer"
	Subscription  Category = "subscription"
)

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Period is an inclusive range of calendar days.
	Period struct {
		Start Date
		End   Date
	}

	Transaction struct {
		ID          string
		Description string
		Amount      Money // negative = debit, positive = credit
		Date        Date
		Category    Category
	}
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrEmptyID         = errors.New("empty transaction id")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// Categories lists the closed category enumeration in declaration order.
var Categories = []Category{Shopping, Food, Transport, Bills, Entertainment, Transfer, Subscription}

func (c Category) IsValid() bool {
	switch c {
	case Shopping, Food, Transport, Bills, Entertainment, Transfer, Subscription:
		return true
	}
	return false
}

// Label returns a human-readable name for the category.
func (c Category) Label() string {
	switch c {
	case Shopping:
		return "Shopping"
	case Food:
		return "Food"
	case Transport:
		return "Transport"
	case Bills:
		return "Bills"
	case Entertainment:
		return "Entertainment"
	case Transfer:
		return "Transfer"
	case Subscription:
		return "Subscription"
	}
	return "Unknown"
}

// ParseCategory accepts any casing and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day and zone of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO calendar day (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Compact formats the date as YYYYMMDD.
func (d Date) Compact() string {
	return d.Format("20060102")
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(time.DateOnly)
}

// NewPeriod builds a validated period.
func NewPeriod(start, end Date) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) Period {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return Period{Start: first, End: last}
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidPeriod)
	}
	if p.Start.After(p.End.Time) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, p.Start.ISO(), p.End.ISO())
	}
	return nil
}

// Contains reports whether d falls on a day inside the period.
func (p Period) Contains(d Date) bool {
	day := DateOf(d.Time)
	return !day.Before(DateOf(p.Start.Time).Time) && !day.After(DateOf(p.End.Time).Time)
}

// Months splits the period on calendar month boundaries. The first and last
// pieces are clipped to the period bounds.
func (p Period) Months() []Period {
	if p.Validate() != nil {
		return nil
	}
	var out []Period
	for cur := DateOf(p.Start.Time); !cur.After(p.End.Time); {
		m := MonthOf(cur)
		piece := Period{Start: cur, End: m.End}
		if piece.End.After(p.End.Time) {
			piece.End = DateOf(p.End.Time)
		}
		out = append(out, piece)
		cur = Date{Time: m.End.AddDate(0, 0, 1)}
	}
	return out
}

func (p Period) String() string {
	return p.Start.ISO() + ".." + p.End.ISO()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	return nil
}

// IsDebit reports whether the transaction takes money out of the account.
func (t Transaction) IsDebit() bool { return t.Amount.Cents < 0 }

// IsCredit reports whether the transaction brings money into the account.
func (t Transaction) IsCredit() bool { return t.Amount.Cents > 0 }
