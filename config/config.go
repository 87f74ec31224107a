// Package config resolves application settings from defaults, an optional
// YAML file, and environment variables, in that order. A .env file next to
// the binary is honored so shared-account credentials stay out of the
// environment setup.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDataDir      = "data"
	defaultHistoryFile  = "history.xlsx"
	defaultEmployeeFile = "employees.csv"
	defaultArchiveFile  = "calldesk.db"
)

// Config holds all settings. YAML tags bind the optional config file, env
// tags the environment overrides.
type Config struct {
	DataDir       string `yaml:"data_dir" env:"CALLDESK_DATA_DIR"`
	HistoryFile   string `yaml:"history_file" env:"CALLDESK_HISTORY_FILE"`
	EmployeeFile  string `yaml:"employee_file" env:"CALLDESK_EMPLOYEE_FILE"`
	ArchiveFile   string `yaml:"archive_file" env:"CALLDESK_ARCHIVE_FILE"`
	ReportFont    string `yaml:"report_font" env:"CALLDESK_REPORT_FONT"`
	EnableWatcher bool   `yaml:"enable_watcher" env:"CALLDESK_ENABLE_WATCHER"`

	SMTP SMTPConfig `yaml:"smtp"`
	LLM  LLMConfig  `yaml:"llm"`
}

// SMTPConfig carries the shared submission account. The env names match
// the secrets the original deployment used.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"CALLDESK_SMTP_HOST"`
	Port     int    `yaml:"port" env:"CALLDESK_SMTP_PORT"`
	Username string `yaml:"username" env:"GMAIL_ADDRESS"`
	Password string `yaml:"-" env:"GMAIL_PASSWORD"`
}

type LLMConfig struct {
	APIKey  string `yaml:"-" env:"GROQ_API_KEY"`
	BaseURL string `yaml:"base_url" env:"CALLDESK_LLM_BASE_URL"`
	Model   string `yaml:"model" env:"CALLDESK_LLM_MODEL"`
}

// Load builds the effective configuration. path names an optional YAML
// file; empty means env/defaults only.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataDir:       defaultDataDir,
		HistoryFile:   defaultHistoryFile,
		EmployeeFile:  defaultEmployeeFile,
		ArchiveFile:   defaultArchiveFile,
		EnableWatcher: true,
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	log.Printf("config: data_dir=%s history=%s employees=%s archive=%s watcher=%v",
		cfg.DataDir, cfg.HistoryFile, cfg.EmployeeFile, cfg.ArchiveFile, cfg.EnableWatcher)
	return cfg, nil
}

// HistoryPath returns the workbook location under DataDir.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, c.HistoryFile)
}

// EmployeePath returns the directory CSV location under DataDir.
func (c Config) EmployeePath() string {
	return filepath.Join(c.DataDir, c.EmployeeFile)
}

// ArchivePath returns the analysis archive location under DataDir.
func (c Config) ArchivePath() string {
	return filepath.Join(c.DataDir, c.ArchiveFile)
}
