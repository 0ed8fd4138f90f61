// package domain/models.go
package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors surfaced by the reconciliation pipeline.
var (
	// ErrMissingTable means the receivables sheet could not be located, read, or has no rows.
	ErrMissingTable = errors.New("a aba 'Report' não foi encontrada ou está vazia")

	// ErrUnsupportedFormat means the uploaded file is neither .xlsx nor .xls.
	ErrUnsupportedFormat = errors.New("formato de planilha não suportado")
)

// Recognized column headers, after upper-case/trim normalization.
const (
	ColumnCustomer = "CLIENTE"
	ColumnBalance  = "SALDO"
	ColumnDueDate  = "VENCIMENTO"
	ColumnTaxID    = "CNPJ"
	ColumnInvoice  = "NF"
)

// --- Tabelas brutas ---

// CellKind tells how a spreadsheet cell was stored.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single spreadsheet value: text, number or empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell builds a text cell. Blank text is an empty cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// IsEmpty reports whether the cell holds nothing.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell as it would be displayed.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Row maps a normalized column header to its cell.
type Row map[string]Cell

// RawTable is one parsed sheet: ordered headers plus data rows.
type RawTable struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no rows or no columns.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0 || len(t.Columns) == 0
}

// Workbook is the ordered set of sheets of one uploaded file.
type Workbook struct {
	Sheets []RawTable
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet returns the sheet with the exact given name.
func (w *Workbook) Sheet(name string) (RawTable, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return RawTable{}, false
}

// --- Registros derivados ---

// ReceivableRecord is one open receivable (boleto) after normalization.
type ReceivableRecord struct {
	Customer    string          `json:"customer"`
	Balance     decimal.Decimal `json:"balance"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	DaysOverdue int             `json:"days_overdue"`
	Invoice     string          `json:"invoice,omitempty"`
	TaxID       string          `json:"tax_id,omitempty"`
	RawDueDate  string          `json:"raw_due_date,omitempty"`
	RawBalance  string          `json:"raw_balance,omitempty"`
}

// CustomerSummary aggregates the receivables of one customer.
type CustomerSummary struct {
	Customer       string          `json:"customer"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	MaxDaysOverdue int             `json:"max_days_overdue"`
}

// CreditLimitRecord is one row of the credit-limit roster.
type CreditLimitRecord struct {
	Customer    string          `json:"customer"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	Agent       string          `json:"agent,omitempty"`
	TaxID       string          `json:"tax_id,omitempty"`
}

// AccountStatus is the exposure status of a reconciled account.
type AccountStatus string

const (
	StatusOK      AccountStatus = "OK"
	StatusBlocked AccountStatus = "BLOQUEADO"
)

// ReconciledAccount is a customer's balance merged with its credit limit.
type ReconciledAccount struct {
	Customer        string          `json:"customer"`
	TotalBalance    decimal.Decimal `json:"total_balance"`
	MaxDaysOverdue  int             `json:"max_days_overdue"`
	LimitAmount     decimal.Decimal `json:"limit_amount"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	Status          AccountStatus   `json:"status"`
	HasLimit        bool            `json:"has_limit"`
	Agent           string          `json:"agent,omitempty"`
	TaxID           string          `json:"tax_id,omitempty"`
}

// Blocked reports whether the customer owes more than its limit.
func (a ReconciledAccount) Blocked() bool {
	return a.AvailableCredit.IsNegative()
}

// Reconciliation is the output of one engine run.
type Reconciliation struct {
	CustomerColumn string              `json:"customer_column"`
	AgentColumn    string              `json:"agent_column,omitempty"`
	LimitColumn    string              `json:"limit_column,omitempty"`
	AgentFilter    string              `json:"agent_filter,omitempty"`
	Filtered       bool                `json:"filtered"`
	Receivables    []ReceivableRecord  `json:"receivables"`
	Limits         []CreditLimitRecord `json:"limits"`
	Accounts       []ReconciledAccount `json:"accounts"`
}

// --- Relatório ---

// AgingPoint is the overdue balance for one exact days-overdue value.
type AgingPoint struct {
	DaysOverdue int             `json:"days_overdue"`
	Balance     decimal.Decimal `json:"balance"`
}

// Dashboard holds the aging and exposure metrics of a run.
type Dashboard struct {
	OpenBalance     decimal.Decimal `json:"open_balance"`
	OverdueBalance  decimal.Decimal `json:"overdue_balance"`
	OverduePercent  decimal.Decimal `json:"overdue_percent"`
	BlockedAccounts int             `json:"blocked_accounts"`
	TotalLimit      decimal.Decimal `json:"total_limit"`
	Aging           []AgingPoint    `json:"aging"`
}

// AccountDetail is a reconciled account with its receivable history.
type AccountDetail struct {
	ReconciledAccount
	History []ReceivableRecord `json:"history"`
}

// MatchHint flags a customer with no limits row and the closest roster name.
type MatchHint struct {
	Customer   string `json:"customer"`
	Suggestion string `json:"suggestion,omitempty"`
}

// SheetSelection records which sheets were picked for each role.
type SheetSelection struct {
	Receivables string `json:"receivables"`
	Limits      string `json:"limits,omitempty"`
}

// Report is the full result of analysing one workbook.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	SourceFile  string          `json:"source_file"`
	Cached      bool            `json:"cached"`
	Sheets      SheetSelection  `json:"sheets"`
	Agent       string          `json:"agent"`
	Agents      []string        `json:"agents"`
	Result      *Reconciliation `json:"result"`
	Accounts    []AccountDetail `json:"accounts"`
	Dashboard   Dashboard       `json:"dashboard"`
	Unmatched   []MatchHint     `json:"unmatched,omitempty"`
	Notices     []string        `json:"notices,omitempty"`
}
