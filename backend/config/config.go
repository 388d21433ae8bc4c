package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Report    ReportConfig    `yaml:"report"`
	Session   SessionConfig   `yaml:"session"`
	Export    ExportConfig    `yaml:"export"`
	Minio     MinioConfig     `yaml:"minio"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// AnalysisConfig describes the remote analysis service contract
type AnalysisConfig struct {
	Endpoint       string `yaml:"endpoint"`
	FileField      string `yaml:"file_field"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
}

type ReportConfig struct {
	Filename    string  `yaml:"filename"`
	Title       string  `yaml:"title"`
	Footer      string  `yaml:"footer"`
	WrapWidthMM float64 `yaml:"wrap_width_mm"` // clamped to the printable width
}

type SessionConfig struct {
	Secret           string `yaml:"secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
	MaxSessions      int    `yaml:"max_sessions"` // negative = unlimited
}

// ExportConfig controls where exported reports are archived besides the
// download itself. Both targets are optional.
type ExportConfig struct {
	Dir   string `yaml:"dir"`
	Minio bool   `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	DefaultEndpoint     = "http://localhost:5000/analyze"
	DefaultFileField    = "file"
	DefaultReportName   = "Thermo-Insights-Report.pdf"
	DefaultReportTitle  = "Thermo-Insights Analysis Report"
	DefaultReportFooter = "Thermalytics (c)2024 - contact: support@thermalytics.app"
	DefaultWrapWidthMM  = 160.0
)

// Load reads the YAML file at path and fills in defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with their defaults
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Analysis.Endpoint == "" {
		c.Analysis.Endpoint = DefaultEndpoint
	}
	if c.Analysis.FileField == "" {
		c.Analysis.FileField = DefaultFileField
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = 60
	}
	if c.Analysis.MaxUploadMB == 0 {
		c.Analysis.MaxUploadMB = 20
	}
	if c.Report.Filename == "" {
		c.Report.Filename = DefaultReportName
	}
	if c.Report.Title == "" {
		c.Report.Title = DefaultReportTitle
	}
	if c.Report.Footer == "" {
		c.Report.Footer = DefaultReportFooter
	}
	if c.Report.WrapWidthMM <= 0 {
		c.Report.WrapWidthMM = DefaultWrapWidthMM
	}
	if c.Session.TokenExpireHours == 0 {
		c.Session.TokenExpireHours = 12
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 100
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Timeout returns the analysis request timeout
func (a AnalysisConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the largest accepted thermal image in bytes
func (a AnalysisConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) << 20
}

// Window returns the rate limit window
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}
