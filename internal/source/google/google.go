package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"extracto/internal/core"
	"extracto/internal/log"
	"extracto/internal/source"
)

// Ensure interface conformance
var _ source.Store = (*Client)(nil)

// Client reads the account from a spreadsheet with one movements sheet per
// year ("2024 Movimientos") and a cell holding the current balance.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year; the year is prefixed per request.
	sheetBase    string
	balanceRange string
	now          func() time.Time
	logger       *log.Logger
}

// Config selects the spreadsheet and where to find things in it.
type Config struct {
	SpreadsheetID   string
	SheetName       string // default "Movimientos"
	BalanceRange    string // default "Cuenta!B1"
	CredentialsJSON []byte
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME, GOOGLE_BALANCE_RANGE.
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		BalanceRange:    os.Getenv("GOOGLE_BALANCE_RANGE"),
		CredentialsJSON: creds,
	}, logger)
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(cfg.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return newClient(svc, cfg, logger), nil
}

func newClient(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Movimientos"
	}
	balance := strings.TrimSpace(cfg.BalanceRange)
	if balance == "" {
		balance = "Cuenta!B1"
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     sheet,
		balanceRange:  balance,
		now:           time.Now,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// credentialsFromEnv loads service account credentials inline or from a file.
func credentialsFromEnv() ([]byte, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return ReadCredentials(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"), file)
}

// ReadCredentials prefers inline JSON and falls back to reading file.
func ReadCredentials(inline, file string) ([]byte, error) {
	inline, file = strings.TrimSpace(inline), strings.TrimSpace(file)
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Transactions reads every yearly sheet the period touches.
func (c *Client) Transactions(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out []core.Transaction
	for year := p.Start.Year(); year <= p.End.Year(); year++ {
		txs, err := c.readYear(ctx, year)
		if err != nil {
			return nil, err
		}
		out = append(out, source.Within(txs, p)...)
	}
	return out, nil
}

// Balance reads the current balance and rolls back everything dated after asOf.
func (c *Client) Balance(ctx context.Context, asOf core.Date) (core.Money, error) {
	if c.svc == nil {
		return core.Money{}, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.balanceRange).Context(ctx).Do()
	if err != nil {
		return core.Money{}, fmt.Errorf("read %s: %w", c.balanceRange, err)
	}
	current, err := parseBalance(resp.Values)
	if err != nil {
		return core.Money{}, fmt.Errorf("parse %s: %w", c.balanceRange, err)
	}

	var later []core.Transaction
	for year := asOf.Year(); year <= c.now().Year(); year++ {
		txs, err := c.readYear(ctx, year)
		if err != nil {
			return core.Money{}, err
		}
		later = append(later, txs...)
	}
	return source.RollBack(current, later, asOf), nil
}

// Append writes t as the next row of its year's sheet.
func (c *Client) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, t.Date.Year())

	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", sheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{t.Date.ISO(), t.Description, t.Amount.String(), string(t.Category), t.ID}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}
	c.logger.InfoContext(ctx, "Transaction appended", log.FieldOperation, log.OpAppend, "range", dataRange)
	return dataRange, nil
}

func (c *Client) readYear(ctx context.Context, year int) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:E", yearPrefixedName(c.sheetBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, skipped := parseTransactions(resp.Values, year)
	if skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped unreadable rows", "range", rng, "skipped", skipped)
	}
	return txs, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
