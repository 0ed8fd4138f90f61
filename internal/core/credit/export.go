package credit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"credit-service/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// gerarCSVContas escreve as contas conciliadas em CSV ';' Windows-1252,
// o formato aberto diretamente pelo Excel em português.
func gerarCSVContas(accounts []domain.AccountDetail) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tw := transform.NewWriter(&buffer, encoder)
	writer := csv.NewWriter(tw)
	writer.Comma = ';'

	header := []string{"Cliente", "CNPJ", "Consultor", "Saldo Devedor", "Dias Atraso", "Limite", "Disponível", "Status"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, a := range accounts {
		record := []string{
			sanitizeForCSV(a.Customer),
			sanitizeForCSV(a.TaxID),
			sanitizeForCSV(a.Agent),
			formatTwoDecimalsComma(a.TotalBalance),
			strconv.Itoa(a.MaxDaysOverdue),
			formatTwoDecimalsComma(a.LimitAmount),
			formatTwoDecimalsComma(a.AvailableCredit),
			string(a.Status),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func formatTwoDecimalsComma(val decimal.Decimal) string {
	return strings.Replace(val.StringFixed(2), ".", ",", 1)
}

// sanitizeForCSV drops embedded line breaks/tabs, turns other control
// characters into spaces and trims.
func sanitizeForCSV(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		if r < 32 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
