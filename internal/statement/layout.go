package statement

import (
	"fmt"
	"strings"

	"extracto/internal/canvas"
	"extracto/internal/core"
)

// Section is a block drawn once on the first page before the ledger.
type Section string

const (
	SectionTitle      Section = "title"
	SectionOffice     Section = "office"
	SectionAccount    Section = "account"
	SectionMovements  Section = "movements"
	SectionCategories Section = "categories"
)

// Theme holds every colour the layout uses.
type Theme struct {
	Primary  canvas.Color // header bar, section bars, column header
	Accent   canvas.Color // accent stripes and tagline
	Text     canvas.Color
	Muted    canvas.Color // labels and page numbers
	Inverse  canvas.Color // text on primary backgrounds
	Band     canvas.Color // summary table header
	Stripe   canvas.Color // summary rows
	RowShade canvas.Color // ledger rows
	Border   canvas.Color
	Debit    canvas.Color
	Credit   canvas.Color
}

// Columns are ledger column positions. Left-aligned columns are offsets from
// the table's left edge; right-aligned amounts are offsets back from its right edge.
type Columns struct {
	Movement     float64
	Date         float64
	Description  float64
	ChargesRight float64
	CreditsRight float64
	BalanceRight float64

	DescriptionWidth float64 // widest a description may render
}

// Layout is the fixed geometry and styling of a statement. All lengths are
// millimetres and font sizes points. Two layouts differ only in values, never
// in code path.
type Layout struct {
	Name  string
	Theme Theme

	Margin            float64
	ContentTop        float64 // y where content starts below the page header
	FooterReserve     float64 // rows start only while y <= page height - FooterReserve
	FooterHeight      float64
	PageNumberOffset  float64 // baseline of the page label above the bottom edge
	SectionBarHeight  float64
	SectionGap        float64
	CornerRadius      float64 // 0 draws square section bars
	InfoLineHeight    float64
	SummaryRowHeight  float64
	TableHeaderHeight float64
	RowHeight         float64
	TableGap          float64 // space after a summary table

	// SummaryColumns are fractions of the table width: label, count,
	// value, closing label, closing value.
	SummaryColumns [5]float64

	TextSize    float64
	RowTextSize float64

	Columns          Columns
	DescriptionLimit int // runes shown before elision
	MovementBase     int // movement numbers are MovementBase + row index

	// Sections drawn on page one, in order.
	Sections []Section
}

// ClassicLayout reproduces the navy and cyan statement with square bars.
func ClassicLayout() Layout {
	return Layout{
		Name: "classic",
		Theme: Theme{
			Primary:  canvas.RGB(18, 32, 63),
			Accent:   canvas.RGB(0, 191, 219),
			Text:     canvas.RGB(40, 40, 40),
			Muted:    canvas.RGB(120, 130, 145),
			Inverse:  canvas.RGB(255, 255, 255),
			Band:     canvas.RGB(240, 240, 240),
			Stripe:   canvas.RGB(250, 250, 250),
			RowShade: canvas.RGB(248, 249, 252),
			Border:   canvas.RGB(200, 200, 200),
			Debit:    canvas.RGB(180, 40, 40),
			Credit:   canvas.RGB(0, 120, 60),
		},
		Margin:            15,
		ContentTop:        30,
		FooterReserve:     25,
		FooterHeight:      14,
		PageNumberOffset:  17,
		SectionBarHeight:  8,
		SectionGap:        4,
		InfoLineHeight:    5,
		SummaryRowHeight:  7,
		TableHeaderHeight: 8,
		RowHeight:         6.5,
		TableGap:          6,
		SummaryColumns:    [5]float64{0.35, 0.08, 0.22, 0.13, 0.22},
		TextSize:          7.5,
		RowTextSize:       6,
		Columns: Columns{
			Movement:     2,
			Date:         18,
			Description:  42,
			ChargesRight: 42,
			CreditsRight: 18,
			BalanceRight: 2,

			DescriptionWidth: 80,
		},
		DescriptionLimit: 40,
		MovementBase:     10000,
		Sections:         []Section{SectionTitle, SectionOffice, SectionAccount, SectionMovements, SectionCategories},
	}
}

// CompactLayout is the alternative presentation: rounded bars, tighter rows,
// a narrower description column and the summaries ahead of the account block.
func CompactLayout() Layout {
	l := ClassicLayout()
	l.Name = "compact"
	l.Theme.Primary = canvas.RGB(0, 68, 129)
	l.Theme.Accent = canvas.RGB(45, 204, 205)
	l.Theme.RowShade = canvas.RGB(242, 246, 250)
	l.CornerRadius = 1.5
	l.RowHeight = 5.5
	l.SummaryRowHeight = 6
	l.Columns.Description = 38
	l.Columns.DescriptionWidth = 72
	l.DescriptionLimit = 38
	l.Sections = []Section{SectionTitle, SectionMovements, SectionCategories, SectionAccount}
	return l
}

// LayoutByName resolves "classic" or "compact"; empty selects classic.
func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "classic":
		return ClassicLayout(), nil
	case "compact":
		return CompactLayout(), nil
	}
	return Layout{}, fmt.Errorf("%w %q", ErrUnknownLayout, name)
}

// Branding is the account holder and institution text printed on every statement.
type Branding struct {
	BankName       string
	Tagline        string
	HolderLines    []string
	OfficeAddress  string
	OfficePhone    string
	AccountNumber  string
	Currency       string
	ArtifactPrefix string
	Legal          string

	Labels     Labels
	Categories map[core.Category]string
}

// Labels are the fixed captions of the document.
type Labels struct {
	Title            string
	OfficeSection    string
	AccountSection   string
	SummarySection   string
	CategorySection  string
	LedgerSection    string
	Address          string
	Phone            string
	AccountNumber    string
	CutOffDate       string
	AvailableBalance string
	Period           string
	Count            string
	Value            string
	OpeningBalance   string
	Credits          string
	Debits           string
	ClosingBalance   string
	Movement         string
	Date             string
	Description      string
	Charges          string
	CreditsColumn    string
	Balance          string
	Category         string
	GeneratedAt      string
	Page             string // format with page and total
}

// DefaultBranding is the Spanish retail-bank statement.
func DefaultBranding() Branding {
	return Branding{
		BankName:       "BBVA",
		Tagline:        "Creando Oportunidades",
		HolderLines:    []string{"BBVA ACCOUNT HOLDER", "CUSTOMER@EMAIL.COM", "MADRID - SPAIN"},
		OfficeAddress:  "C/ Gran Vía 1, Madrid",
		OfficePhone:    "00 34 912 345 678",
		AccountNumber:  "ES12 0182 **** **** 0067",
		Currency:       "€",
		ArtifactPrefix: "STATEMENT",
		Legal:          "En cumplimiento de lo dispuesto en la Ley de Protección de Datos. Este documento es informativo.",
		Labels: Labels{
			Title:            "Extracto de Cuenta",
			OfficeSection:    "Información de la oficina",
			AccountSection:   "Información de la cuenta",
			SummarySection:   "Resumen de movimientos",
			CategorySection:  "Resumen por categoría",
			LedgerSection:    "Detalles de transacciones",
			Address:          "DIRECCIÓN:",
			Phone:            "TELÉFONO:",
			AccountNumber:    "Número de cuenta:",
			CutOffDate:       "Fecha de corte:",
			AvailableBalance: "Saldo disponible:",
			Period:           "Período:",
			Count:            "No.",
			Value:            "Valor",
			OpeningBalance:   "SALDO CIERRE MES ANTERIOR",
			Credits:          "+ ABONOS",
			Debits:           "- CARGOS",
			ClosingBalance:   "SALDO FINAL",
			Movement:         "Movi-",
			Date:             "Fecha",
			Description:      "Concepto",
			Charges:          "Cargos",
			CreditsColumn:    "Abonos",
			Balance:          "Saldo",
			Category:         "Categoría",
			GeneratedAt:      "Generado el",
			Page:             "Página %d de %d",
		},
		Categories: map[core.Category]string{
			core.Shopping:      "Compras",
			core.Food:          "Alimentación",
			core.Transport:     "Transporte",
			core.Bills:         "Recibos",
			core.Entertainment: "Ocio",
			core.Transfer:      "Transferencias",
			core.Subscription:  "Suscripciones",
		},
	}
}

func (b Branding) categoryName(c core.Category) string {
	if name, ok := b.Categories[c]; ok {
		return name
	}
	return c.Label()
}
