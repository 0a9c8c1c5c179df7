package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want the default", cfg.API.BaseURL)
	}
	if cfg.API.Token != "" {
		t.Errorf("Token = %q, want empty", cfg.API.Token)
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	in := ctlConfig{API: apiConfig{BaseURL: "https://cantiere.example.com", Token: "tok-123"}}
	if err := saveConfig(in); err != nil {
		t.Fatalf("saveConfig() error = %v", err)
	}
	if !configExists() {
		t.Fatal("configExists() = false after save")
	}

	out, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if out.API.BaseURL != in.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", out.API.BaseURL, in.API.BaseURL)
	}
	if out.API.Token != in.API.Token {
		t.Errorf("Token = %q, want %q", out.API.Token, in.API.Token)
	}
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "cantiere", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[api]\ntoken = \"tok\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want the default kept", cfg.API.BaseURL)
	}
	if cfg.API.Token != "tok" {
		t.Errorf("Token = %q, want %q", cfg.API.Token, "tok")
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("short"); got != "********" {
		t.Errorf("maskToken(short) = %q", got)
	}
	if got := maskToken("tok-1234567890-end"); got != "tok-...-end" {
		t.Errorf("maskToken(long) = %q", got)
	}
}
