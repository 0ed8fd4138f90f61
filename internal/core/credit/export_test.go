package credit

import (
	"strings"
	"testing"

	"credit-service/internal/domain"

	"golang.org/x/text/encoding/charmap"
)

func TestGerarCSVContas(t *testing.T) {
	accounts := []domain.AccountDetail{
		{ReconciledAccount: domain.ReconciledAccount{
			Customer:        "ACME",
			TaxID:           "12.345.678/0001-90",
			Agent:           "Ana",
			TotalBalance:    dec("1000"),
			MaxDaysOverdue:  20,
			LimitAmount:     dec("800"),
			AvailableCredit: dec("-200"),
			Status:          domain.StatusBlocked,
		}},
		{ReconciledAccount: domain.ReconciledAccount{
			Customer:        "  Café; Ltda\n",
			TotalBalance:    dec("10.5"),
			LimitAmount:     dec("100"),
			AvailableCredit: dec("89.5"),
			Status:          domain.StatusOK,
		}},
	}

	raw, err := gerarCSVContas(accounts)
	if err != nil {
		t.Fatalf("gerarCSVContas failed: %v", err)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		t.Fatalf("output is not Windows-1252: %v", err)
	}

	want := strings.Join([]string{
		"Cliente;CNPJ;Consultor;Saldo Devedor;Dias Atraso;Limite;Disponível;Status",
		"ACME;12.345.678/0001-90;Ana;1000,00;20;800,00;-200,00;BLOQUEADO",
		`"Café; Ltda";;;10,50;0;100,00;89,50;OK`,
		"",
	}, "\n")
	if string(decoded) != want {
		t.Errorf("csv mismatch:\ngot:\n%s\nwant:\n%s", decoded, want)
	}
}

func TestSanitizeForCSV(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  ACME  ", want: "ACME"},
		{in: "linha\r\nquebrada", want: "linhaquebrada"},
		{in: "a\tb", want: "ab"},
		{in: "a\x01b", want: "a b"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		if got := sanitizeForCSV(tt.in); got != tt.want {
			t.Errorf("sanitizeForCSV(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
