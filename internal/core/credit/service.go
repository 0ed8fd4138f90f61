package credit

import (
	"errors"
	"fmt"
	"io"
	"time"

	"credit-service/internal/config"
	"credit-service/internal/core/workbook"
	"credit-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllAgentsLabel is shown as the agent of an unfiltered report.
const AllAgentsLabel = "Todos"

// Service define a interface do serviço de análise de crédito.
type Service interface {
	Analyze(file io.Reader, filename string, agent string) (*domain.Report, error)
	ListAgents(file io.Reader, filename string) ([]string, error)
	ExportCSV(report *domain.Report) ([]byte, error)
	ResetCache()
}

type service struct {
	engine   *Engine
	resolver *Resolver
	cache    *workbook.Cache
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithClock fixes the reference instant used for aging.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService cria uma nova instância do serviço de crédito.
func NewService(cfg config.Config, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := NewResolver(cfg.Resolver.SheetRules, cfg.Resolver.ColumnRules)
	engine := NewEngine(
		NewNormalizer(cfg.Normalizer),
		resolver,
		workbook.NewDateParser(cfg.Dates),
		cfg.Resolver.AllAgents,
	)
	svc := &service{
		engine:   engine,
		resolver: resolver,
		cache:    workbook.NewCache(cfg.Cache.MaxEntries),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Analyze reconciles the uploaded workbook, optionally restricted to one agent.
func (s *service) Analyze(file io.Reader, filename string, agent string) (*domain.Report, error) {
	wb, key, cached, err := s.load(file, filename)
	if err != nil {
		return nil, err
	}

	receivablesName, limitsName := s.resolver.ResolveSheets(wb.SheetNames())
	if receivablesName == "" {
		s.cache.Invalidate(key)
		return nil, domain.ErrMissingTable
	}
	receivables, _ := wb.Sheet(receivablesName)
	var limits domain.RawTable
	if limitsName != "" {
		limits, _ = wb.Sheet(limitsName)
	}

	now := s.now()
	result, err := s.engine.Reconcile(receivables, limits, agent, now)
	if err != nil {
		// planilha sem dados não ocupa o cache
		s.cache.Invalidate(key)
		return nil, fmt.Errorf("aba %q: %w", receivablesName, err)
	}

	report := &domain.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		SourceFile:  filename,
		Cached:      cached,
		Sheets:      domain.SheetSelection{Receivables: receivablesName, Limits: limitsName},
		Agent:       AllAgentsLabel,
		Agents:      s.engine.ListAgents(limits),
		Result:      result,
		Accounts:    AccountDetails(result),
		Dashboard:   BuildDashboard(result),
		Unmatched:   UnmatchedHints(result.Accounts, result.Limits),
	}
	if result.AgentFilter != "" {
		report.Agent = result.AgentFilter
	}
	report.Notices = s.notices(report)

	s.logger.Info("Conciliação de crédito concluída",
		zap.String("run_id", report.RunID),
		zap.String("file", filename),
		zap.Bool("cached", cached),
		zap.String("receivables_sheet", receivablesName),
		zap.String("limits_sheet", limitsName),
		zap.String("customer_column", result.CustomerColumn),
		zap.String("agent_column", result.AgentColumn),
		zap.String("limit_column", result.LimitColumn),
		zap.String("agent", report.Agent),
		zap.Int("receivables", len(result.Receivables)),
		zap.Int("accounts", len(result.Accounts)),
		zap.Int("blocked", report.Dashboard.BlockedAccounts),
	)
	for _, n := range report.Notices {
		s.logger.Warn(n, zap.String("run_id", report.RunID))
	}
	return report, nil
}

// ListAgents returns the agents offered by the workbook's limits sheet.
func (s *service) ListAgents(file io.Reader, filename string) ([]string, error) {
	wb, _, _, err := s.load(file, filename)
	if err != nil {
		return nil, err
	}
	_, limitsName := s.resolver.ResolveSheets(wb.SheetNames())
	if limitsName == "" {
		return []string{}, nil
	}
	limits, _ := wb.Sheet(limitsName)
	agents := s.engine.ListAgents(limits)
	if agents == nil {
		agents = []string{}
	}
	return agents, nil
}

// ExportCSV renders the report's accounts as a spreadsheet-friendly CSV.
func (s *service) ExportCSV(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, errors.New("relatório vazio")
	}
	out, err := gerarCSVContas(report.Accounts)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar CSV final: %w", err)
	}
	return out, nil
}

// ResetCache forgets every parsed workbook.
func (s *service) ResetCache() {
	n := s.cache.Len()
	s.cache.Reset()
	s.logger.Info("Cache de planilhas limpo", zap.Int("entries", n))
}

// load parses the upload, reusing the cached workbook for identical bytes. It
// also returns the cache key of the upload.
func (s *service) load(file io.Reader, filename string) (*domain.Workbook, string, bool, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: erro ao ler arquivo: %v", domain.ErrMissingTable, err)
	}

	key := workbook.Fingerprint(data)
	if wb, ok := s.cache.Get(key); ok {
		return wb, key, true, nil
	}

	wb, err := workbook.Load(data, filename)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return nil, key, false, err
		}
		return nil, key, false, fmt.Errorf("%w: %v", domain.ErrMissingTable, err)
	}
	s.cache.Put(key, wb)
	return wb, key, false, nil
}

func (s *service) notices(report *domain.Report) []string {
	var notices []string
	if report.Sheets.Limits == "" {
		notices = append(notices, "Aba de limites não encontrada: limites considerados zero")
	}
	if report.Result.AgentFilter != "" && !report.Result.Filtered {
		notices = append(notices, "Coluna de consultor não encontrada: filtro ignorado")
	}
	if n := len(report.Unmatched); n > 0 {
		notices = append(notices, fmt.Sprintf("%d cliente(s) sem limite cadastrado", n))
	}
	return notices
}
