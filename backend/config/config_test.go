package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
analysis:
  endpoint: "http://analysis.test/analyze"
  file_field: "image"
  timeout_seconds: 15
report:
  filename: "report.pdf"
  wrap_width_mm: 120
session:
  secret: "test-secret"
  token_expire_hours: 2
  max_sessions: 5
export:
  dir: "/tmp/reports"
  minio: true
minio:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "reports"
  expire_days: 14
log:
  level: "debug"
  format: "json"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.Endpoint != "http://analysis.test/analyze" {
		t.Errorf("Expected endpoint http://analysis.test/analyze, got %s", cfg.Analysis.Endpoint)
	}
	if cfg.Analysis.FileField != "image" {
		t.Errorf("Expected file field image, got %s", cfg.Analysis.FileField)
	}
	if cfg.Analysis.Timeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", cfg.Analysis.Timeout())
	}
	if cfg.Report.Filename != "report.pdf" {
		t.Errorf("Expected report filename report.pdf, got %s", cfg.Report.Filename)
	}
	if cfg.Report.WrapWidthMM != 120 {
		t.Errorf("Expected wrap width 120, got %v", cfg.Report.WrapWidthMM)
	}
	if cfg.Report.Title != DefaultReportTitle {
		t.Errorf("Expected default title, got %s", cfg.Report.Title)
	}
	if cfg.Session.MaxSessions != 5 {
		t.Errorf("Expected max_sessions 5, got %d", cfg.Session.MaxSessions)
	}
	if !cfg.Export.Minio || cfg.Export.Dir != "/tmp/reports" {
		t.Errorf("Unexpected export config: %+v", cfg.Export)
	}
	if cfg.Minio.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.WriteString("server:\n  port: 0\n")
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.Endpoint != DefaultEndpoint {
		t.Errorf("Expected default endpoint, got %s", cfg.Analysis.Endpoint)
	}
	if cfg.Analysis.FileField != "file" {
		t.Errorf("Expected default file field 'file', got %s", cfg.Analysis.FileField)
	}
	if cfg.Analysis.Timeout() != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %v", cfg.Analysis.Timeout())
	}
	if cfg.Analysis.MaxUploadBytes() != 20<<20 {
		t.Errorf("Expected 20MB upload limit, got %d", cfg.Analysis.MaxUploadBytes())
	}
	if cfg.Report.Filename != "Thermo-Insights-Report.pdf" {
		t.Errorf("Expected default report filename, got %s", cfg.Report.Filename)
	}
	if cfg.Session.TokenExpireHours != 12 {
		t.Errorf("Expected default token expiry 12h, got %d", cfg.Session.TokenExpireHours)
	}
	if cfg.RateLimit.Window() != time.Minute {
		t.Errorf("Expected default rate limit window 1m, got %v", cfg.RateLimit.Window())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/non/existent/config.yaml")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.WriteString("server: [unclosed")
	tmpFile.Close()

	if _, err := Load(tmpFile.Name()); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Report.WrapWidthMM != DefaultWrapWidthMM {
		t.Errorf("Expected wrap width %v, got %v", DefaultWrapWidthMM, cfg.Report.WrapWidthMM)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log level info, got %s", cfg.Log.Level)
	}
}

func TestApplyDefaultsNegativeWrapWidth(t *testing.T) {
	cfg := &Config{Report: ReportConfig{WrapWidthMM: -5}}
	cfg.ApplyDefaults()
	if cfg.Report.WrapWidthMM != DefaultWrapWidthMM {
		t.Errorf("Expected wrap width %v, got %v", DefaultWrapWidthMM, cfg.Report.WrapWidthMM)
	}
}
