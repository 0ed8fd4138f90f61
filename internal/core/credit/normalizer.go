package credit

import (
	"strings"

	"credit-service/internal/config"
	"credit-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Normalizer turns monetary cells into amounts. It never fails: blank,
// placeholder and unparseable input all become zero.
type Normalizer struct {
	placeholders []string
	currency     string
	thousands    string
	decimalSep   string
}

// NewNormalizer builds a normalizer from the monetary text policy.
func NewNormalizer(cfg config.NormalizerConfig) *Normalizer {
	placeholders := make([]string, 0, len(cfg.PlaceholderTokens))
	for _, tok := range cfg.PlaceholderTokens {
		if t := strings.ToUpper(strings.TrimSpace(tok)); t != "" {
			placeholders = append(placeholders, t)
		}
	}
	return &Normalizer{
		placeholders: placeholders,
		currency:     strings.ToUpper(cfg.CurrencySymbol),
		thousands:    cfg.ThousandsSeparator,
		decimalSep:   cfg.DecimalSeparator,
	}
}

// Normalize converts one cell. Numeric cells are taken as they are.
func (n *Normalizer) Normalize(cell domain.Cell) decimal.Decimal {
	switch cell.Kind {
	case domain.CellNumber:
		return decimal.NewFromFloat(cell.Number)
	case domain.CellText:
		return n.NormalizeText(cell.Text)
	default:
		return decimal.Zero
	}
}

// NormalizeText parses Brazilian-formatted money text such as "R$ 1.234,56".
func (n *Normalizer) NormalizeText(val string) decimal.Decimal {
	s := strings.ToUpper(strings.TrimSpace(val))
	if s == "" || n.IsPlaceholder(s) {
		return decimal.Zero
	}

	if n.currency != "" {
		s = strings.ReplaceAll(s, n.currency, "")
	}
	if n.thousands != "" {
		s = strings.ReplaceAll(s, n.thousands, "")
	}
	if n.decimalSep != "" && n.decimalSep != "." {
		s = strings.ReplaceAll(s, n.decimalSep, ".")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// IsPlaceholder reports whether the text carries a non-monetary marker
// (shared cost, head office, withdrawn, missing, report or contract).
func (n *Normalizer) IsPlaceholder(val string) bool {
	s := strings.ToUpper(val)
	for _, tok := range n.placeholders {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
