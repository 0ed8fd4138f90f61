// Package config loads the service settings: compiled defaults, then an
// optional YAML file, then environment variables (a local .env is honored).
package config

import (
	"fmt"
	"os"
	"strings"

	"credit-service/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Roles understood by the name resolver.
const (
	RoleReceivables = "receivables"
	RoleLimits      = "limits"
	RoleCustomer    = "customer"
	RoleAgent       = "agent"
	RoleLimit       = "limit"
)

// Rule maps a set of name tokens to a role. Tokens are matched as
// case/accent-insensitive substrings unless Exact is set. Fallback is the
// positional index used when nothing matches; absent or negative means the
// role stays unresolved.
type Rule struct {
	Role     string   `yaml:"role"`
	Tokens   []string `yaml:"tokens"`
	Exact    bool     `yaml:"exact"`
	Fallback *int     `yaml:"fallback,omitempty"`
}

// Position builds a Fallback value.
func Position(i int) *int {
	return &i
}

// FallbackIndex returns the positional fallback, if the rule has one.
func (r Rule) FallbackIndex() (int, bool) {
	if r.Fallback == nil || *r.Fallback < 0 {
		return 0, false
	}
	return *r.Fallback, true
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	Mode        string `yaml:"mode"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NormalizerConfig is the monetary text policy.
type NormalizerConfig struct {
	PlaceholderTokens  []string `yaml:"placeholder_tokens"`
	CurrencySymbol     string   `yaml:"currency_symbol"`
	ThousandsSeparator string   `yaml:"thousands_separator"`
	DecimalSeparator   string   `yaml:"decimal_separator"`
}

type ResolverConfig struct {
	SheetRules  []Rule   `yaml:"sheet_rules"`
	ColumnRules []Rule   `yaml:"column_rules"`
	AllAgents   []string `yaml:"all_agents"`
}

// DateConfig bounds the years accepted for a parsed due date.
type DateConfig struct {
	MinYear int `yaml:"min_year"`
	MaxYear int `yaml:"max_year"`
}

type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Resolver   ResolverConfig   `yaml:"resolver"`
	Dates      DateConfig       `yaml:"dates"`
	Cache      CacheConfig      `yaml:"cache"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8084", Mode: "release", MaxUploadMB: 32},
		Log:    LogConfig{Level: "info"},
		Normalizer: NormalizerConfig{
			PlaceholderTokens:  []string{"COMPARTILHA", "MATRIZ", "RETIRADO", "FALTA", "DRE", "CONTRATO"},
			CurrencySymbol:     "R$",
			ThousandsSeparator: ".",
			DecimalSeparator:   ",",
		},
		Resolver: ResolverConfig{
			SheetRules: []Rule{
				{Role: RoleReceivables, Tokens: []string{"REPORT", "BOLETOS", "RECEB"}, Fallback: Position(0)},
				{Role: RoleLimits, Tokens: []string{"LIMITE"}, Fallback: Position(1)},
			},
			ColumnRules: []Rule{
				{Role: RoleCustomer, Tokens: []string{domain.ColumnCustomer}, Exact: true, Fallback: Position(0)},
				{Role: RoleAgent, Tokens: []string{"CONSULTOR", "VENDEDOR", "REPRESENTANTE", "RESPONSAVEL", "AGENTE"}, Fallback: Position(1)},
				{Role: RoleLimit, Tokens: []string{"LIMITE"}, Fallback: Position(0)},
			},
			AllAgents: []string{"all", "todos"},
		},
		Dates: DateConfig{MinYear: 1990, MaxYear: 2100},
		Cache: CacheConfig{MaxEntries: 1},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("erro ao ler configuração %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("erro ao interpretar configuração %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// FromEnv loads .env (if present), the YAML file named by CREDIT_CONFIG
// (default config.yaml) and applies PORT, LOG_LEVEL and GIN_MODE overrides.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CREDIT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server: mode inválido %q", c.Server.Mode)
	}
	if c.Dates.MinYear > c.Dates.MaxYear {
		return fmt.Errorf("dates: min_year %d maior que max_year %d", c.Dates.MinYear, c.Dates.MaxYear)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache: max_entries negativo (%d)", c.Cache.MaxEntries)
	}
	if strings.TrimSpace(c.Normalizer.DecimalSeparator) == "" {
		return fmt.Errorf("normalizer: decimal_separator vazio")
	}
	seen := make(map[string]bool)
	for _, r := range append(append([]Rule{}, c.Resolver.SheetRules...), c.Resolver.ColumnRules...) {
		if r.Role == "" {
			return fmt.Errorf("resolver: regra sem role")
		}
		if seen[r.Role] {
			return fmt.Errorf("resolver: role %q duplicada", r.Role)
		}
		seen[r.Role] = true
	}
	return nil
}
