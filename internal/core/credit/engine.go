package credit

import (
	"sort"
	"strings"
	"time"

	"credit-service/internal/config"
	"credit-service/internal/domain"

	"github.com/shopspring/decimal"
)

// DateParser reads a due date out of a cell; false means absent.
type DateParser interface {
	Parse(cell domain.Cell) (time.Time, bool)
}

// Engine reconciles receivables against the credit-limit roster. Reconcile
// is a pure function of its inputs: no state survives between runs.
type Engine struct {
	normalizer *Normalizer
	resolver   *Resolver
	dates      DateParser
	allAgents  map[string]bool
}

// NewEngine wires the collaborators. allAgents lists the filter values that
// mean "no agent filter"; the empty string always does.
func NewEngine(normalizer *Normalizer, resolver *Resolver, dates DateParser, allAgents []string) *Engine {
	sentinels := map[string]bool{"": true}
	for _, a := range allAgents {
		sentinels[strings.ToLower(strings.TrimSpace(a))] = true
	}
	return &Engine{
		normalizer: normalizer,
		resolver:   resolver,
		dates:      dates,
		allAgents:  sentinels,
	}
}

// IsAllAgents reports whether the filter value selects every agent.
func (e *Engine) IsAllAgents(agent string) bool {
	return e.allAgents[strings.ToLower(strings.TrimSpace(agent))]
}

// Reconcile runs the whole pipeline. An empty receivables table is the only
// fatal condition; a missing limits table or unresolvable columns degrade to
// zero limits or no filtering.
func (e *Engine) Reconcile(receivables, limits domain.RawTable, agentFilter string, now time.Time) (*domain.Reconciliation, error) {
	if receivables.Empty() {
		return nil, domain.ErrMissingTable
	}

	customerCol, _ := e.resolver.Resolve(config.RoleCustomer, receivables.Columns)
	result := &domain.Reconciliation{CustomerColumn: customerCol}

	records := e.buildRecords(receivables, customerCol, now)

	if !limits.Empty() {
		result.AgentColumn, _ = e.resolver.ResolveAgentColumn(limits.Columns)
		result.LimitColumn, _ = e.resolver.Resolve(config.RoleLimit, limits.Columns)
	}

	activeLimits := limits
	if !e.IsAllAgents(agentFilter) {
		result.AgentFilter = agentFilter
		if result.AgentColumn != "" {
			activeLimits = FilterByAgent(limits, result.AgentColumn, agentFilter)
			records = RestrictToCustomers(records, FirstColumnValues(activeLimits))
			result.Filtered = true
		}
	}

	limitRecords := e.buildLimits(activeLimits, result.LimitColumn, result.AgentColumn)

	result.Receivables = records
	result.Limits = limitRecords
	result.Accounts = Merge(Aggregate(records), limitRecords)
	return result, nil
}

// ListAgents returns the distinct agents of the limits table, sorted.
func (e *Engine) ListAgents(limits domain.RawTable) []string {
	if limits.Empty() {
		return nil
	}
	col, ok := e.resolver.ResolveAgentColumn(limits.Columns)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var agents []string
	for _, row := range limits.Rows {
		a := row[col].String()
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		agents = append(agents, a)
	}
	sort.Strings(agents)
	return agents
}

func (e *Engine) buildRecords(table domain.RawTable, customerCol string, now time.Time) []domain.ReceivableRecord {
	records := make([]domain.ReceivableRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		balanceCell := row[domain.ColumnBalance]
		dueCell := row[domain.ColumnDueDate]

		rec := domain.ReceivableRecord{
			Customer:   row[customerCol].String(),
			Balance:    e.normalizer.Normalize(balanceCell),
			Invoice:    row[domain.ColumnInvoice].String(),
			TaxID:      row[domain.ColumnTaxID].String(),
			RawDueDate: dueCell.String(),
			RawBalance: balanceCell.String(),
		}
		if due, ok := e.dates.Parse(dueCell); ok {
			rec.DueDate = &due
		}
		rec.DaysOverdue = DaysOverdue(rec.DueDate, rec.Balance, now)
		records = append(records, rec)
	}
	return records
}

func (e *Engine) buildLimits(table domain.RawTable, limitCol, agentCol string) []domain.CreditLimitRecord {
	if table.Empty() {
		return nil
	}
	customerCol := table.Columns[0]
	limits := make([]domain.CreditLimitRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := domain.CreditLimitRecord{
			Customer:    row[customerCol].String(),
			LimitAmount: e.normalizer.Normalize(row[limitCol]),
			TaxID:       row[domain.ColumnTaxID].String(),
		}
		if agentCol != "" {
			rec.Agent = row[agentCol].String()
		}
		limits = append(limits, rec)
	}
	return limits
}

// FilterByAgent keeps the limits rows whose agent column equals agent.
func FilterByAgent(table domain.RawTable, agentCol, agent string) domain.RawTable {
	filtered := domain.RawTable{Name: table.Name, Columns: table.Columns}
	for _, row := range table.Rows {
		if row[agentCol].String() == agent {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// FirstColumnValues returns the set of customer identifiers of a limits table.
func FirstColumnValues(table domain.RawTable) map[string]bool {
	values := make(map[string]bool)
	if len(table.Columns) == 0 {
		return values
	}
	first := table.Columns[0]
	for _, row := range table.Rows {
		if v := row[first].String(); v != "" {
			values[v] = true
		}
	}
	return values
}

// RestrictToCustomers keeps the records whose customer is in the set.
func RestrictToCustomers(records []domain.ReceivableRecord, customers map[string]bool) []domain.ReceivableRecord {
	kept := make([]domain.ReceivableRecord, 0, len(records))
	for _, r := range records {
		if customers[r.Customer] {
			kept = append(kept, r)
		}
	}
	return kept
}

// Aggregate sums balances and takes the worst aging per customer. Records
// without a customer are left out. Output is ordered by customer.
func Aggregate(records []domain.ReceivableRecord) []domain.CustomerSummary {
	index := make(map[string]int)
	var summaries []domain.CustomerSummary
	for _, r := range records {
		if r.Customer == "" {
			continue
		}
		i, ok := index[r.Customer]
		if !ok {
			i = len(summaries)
			index[r.Customer] = i
			summaries = append(summaries, domain.CustomerSummary{Customer: r.Customer, TotalBalance: decimal.Zero})
		}
		summaries[i].TotalBalance = summaries[i].TotalBalance.Add(r.Balance)
		if r.DaysOverdue > summaries[i].MaxDaysOverdue {
			summaries[i].MaxDaysOverdue = r.DaysOverdue
		}
	}
	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].Customer < summaries[b].Customer
	})
	return summaries
}

// Merge left-joins summaries with limits on the literal customer string. The
// first limits row of a customer wins; unmatched customers get a zero limit.
func Merge(summaries []domain.CustomerSummary, limits []domain.CreditLimitRecord) []domain.ReconciledAccount {
	byCustomer := make(map[string]domain.CreditLimitRecord, len(limits))
	for _, l := range limits {
		if _, dup := byCustomer[l.Customer]; !dup {
			byCustomer[l.Customer] = l
		}
	}

	accounts := make([]domain.ReconciledAccount, 0, len(summaries))
	for _, s := range summaries {
		acc := domain.ReconciledAccount{
			Customer:       s.Customer,
			TotalBalance:   s.TotalBalance,
			MaxDaysOverdue: s.MaxDaysOverdue,
			LimitAmount:    decimal.Zero,
		}
		if l, ok := byCustomer[s.Customer]; ok {
			acc.LimitAmount = l.LimitAmount
			acc.HasLimit = true
			acc.Agent = l.Agent
			acc.TaxID = l.TaxID
		}
		acc.AvailableCredit = acc.LimitAmount.Sub(acc.TotalBalance)
		acc.Status = domain.StatusOK
		if acc.Blocked() {
			acc.Status = domain.StatusBlocked
		}
		accounts = append(accounts, acc)
	}
	return accounts
}
