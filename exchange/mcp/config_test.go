package mcp

import "testing"

func TestConfigInitDefaults(t *testing.T) {
	cfg := &Config{ClientID: "client"}
	cfg.Init()
	if cfg.TenantID != "common" {
		t.Errorf("TenantID = %q", cfg.TenantID)
	}
	if cfg.TokenCachePath != "~/.mcp-exchange/token_cache.json" {
		t.Errorf("TokenCachePath = %q", cfg.TokenCachePath)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d", cfg.TimeoutSeconds)
	}
	if cfg.Timezone != "America/Chicago" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestConfigInitKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		ClientID:       "client",
		TenantID:       "my-tenant",
		TokenCachePath: "/tmp/cache.json",
		TimeoutSeconds: 5,
		Timezone:       "Europe/Warsaw",
	}
	cfg.Init()
	if cfg.TenantID != "my-tenant" || cfg.TimeoutSeconds != 5 || cfg.Timezone != "Europe/Warsaw" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfigAuthority(t *testing.T) {
	cfg := &Config{TenantID: "contoso"}
	if got := cfg.Authority(); got != "https://login.microsoftonline.com/contoso" {
		t.Errorf("Authority = %q", got)
	}
}

func TestNewServiceRequiresClientID(t *testing.T) {
	if _, err := NewService(&Config{}); err == nil {
		t.Error("expected error for missing client ID")
	}
}

func TestNewServiceRejectsBadTimezone(t *testing.T) {
	if _, err := NewService(&Config{ClientID: "client", Timezone: "Not/AZone"}); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
