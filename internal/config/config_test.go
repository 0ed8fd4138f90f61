package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
normalizer:
  placeholder_tokens: [CONTRATO, ISENTO]
resolver:
  column_rules:
    - {role: agent, tokens: [GERENTE], fallback: -1}
    - {role: limit, tokens: [TETO]}
dates:
  min_year: 2000
cache:
  max_entries: 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("mode should keep default, got %q", cfg.Server.Mode)
	}
	if diff := cmp.Diff([]string{"CONTRATO", "ISENTO"}, cfg.Normalizer.PlaceholderTokens); diff != "" {
		t.Errorf("placeholder tokens mismatch (-want +got):\n%s", diff)
	}
	wantRules := []Rule{
		{Role: RoleAgent, Tokens: []string{"GERENTE"}, Fallback: Position(-1)},
		{Role: RoleLimit, Tokens: []string{"TETO"}},
	}
	if diff := cmp.Diff(wantRules, cfg.Resolver.ColumnRules); diff != "" {
		t.Errorf("column rules mismatch (-want +got):\n%s", diff)
	}
	if cfg.Dates.MinYear != 2000 || cfg.Dates.MaxYear != 2100 {
		t.Errorf("dates = %+v, want min 2000 max 2100", cfg.Dates)
	}
	if cfg.Cache.MaxEntries != 4 {
		t.Errorf("cache max entries = %d, want 4", cfg.Cache.MaxEntries)
	}
	if cfg.Normalizer.DecimalSeparator != "," {
		t.Errorf("decimal separator should keep default, got %q", cfg.Normalizer.DecimalSeparator)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "inverted years", mutate: func(c *Config) { c.Dates.MinYear = 2200 }, wantErr: true},
		{name: "negative cache", mutate: func(c *Config) { c.Cache.MaxEntries = -1 }, wantErr: true},
		{name: "blank decimal separator", mutate: func(c *Config) { c.Normalizer.DecimalSeparator = " " }, wantErr: true},
		{name: "unknown gin mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: true},
		{
			name: "duplicated role",
			mutate: func(c *Config) {
				c.Resolver.ColumnRules = append(c.Resolver.ColumnRules, Rule{Role: RoleAgent, Tokens: []string{"X"}})
			},
			wantErr: true,
		},
		{
			name: "rule without role",
			mutate: func(c *Config) {
				c.Resolver.SheetRules = append(c.Resolver.SheetRules, Rule{Tokens: []string{"X"}})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CREDIT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GIN_MODE", "test")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.Log.Level != "debug" || cfg.Server.Mode != "test" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Server, cfg.Log)
	}
}

func TestRule_FallbackIndex(t *testing.T) {
	tests := []struct {
		name   string
		rule   Rule
		want   int
		wantOK bool
	}{
		{name: "absent", rule: Rule{Role: RoleAgent}},
		{name: "negative", rule: Rule{Role: RoleAgent, Fallback: Position(-1)}},
		{name: "first", rule: Rule{Role: RoleCustomer, Fallback: Position(0)}, want: 0, wantOK: true},
		{name: "second", rule: Rule{Role: RoleAgent, Fallback: Position(1)}, want: 1, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.FallbackIndex()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FallbackIndex() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
