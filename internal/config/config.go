package config

import (
	"fmt"
	"time"

	"rgccr-notice-check/internal/scraper"
)

type Config struct {
	Source        SourceConfig        `yaml:"source"`
	HTTP          HttpConfig          `yaml:"http"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	Selectors     scraper.Selectors   `yaml:"selectors"`
	Storage       StorageConfig       `yaml:"storage"`
	Notify        NotifyConfig        `yaml:"notify"`
	Report        ReportConfig        `yaml:"report"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type SourceConfig struct {
	URL         string `yaml:"url"`
	NoticeLimit int    `yaml:"notice_limit"`
	RunTimeoutS int    `yaml:"run_timeout_s"`
}

type HttpConfig struct {
	UserAgent        string `yaml:"user_agent"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS   int    `yaml:"total_timeout_ms"`
	MaxRetries       int    `yaml:"max_retries"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type StorageConfig struct {
	// Driver is "file" (flat text artifact) or "mssql".
	Driver           string `yaml:"driver"`
	Path             string `yaml:"path"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type NotifyConfig struct {
	// TestMode routes deliveries to the test recipient sets. It is also
	// forced on when the file named by TestMarkerFile exists, so a deploy
	// can be switched without editing config. Resolved once at load time.
	TestMode       bool           `yaml:"test_mode"`
	TestMarkerFile string         `yaml:"test_marker_file"`
	DigestLimit    int            `yaml:"digest_limit"`
	Email          EmailConfig    `yaml:"email"`
	Telegram       TelegramConfig `yaml:"telegram"`
}

type EmailConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Sender         string   `yaml:"sender"`
	SenderName     string   `yaml:"sender_name"`
	Password       string   `yaml:"password"`
	Recipients     []string `yaml:"recipients"`
	TestRecipients []string `yaml:"test_recipients"`
}

type TelegramConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Token       string   `yaml:"token"`
	ChatIDs     []string `yaml:"chat_ids"`
	TestChatIDs []string `yaml:"test_chat_ids"`
}

type ReportConfig struct {
	// TelegramChatID is the operator chat for out-of-band failure alerts.
	// Empty disables out-of-band reporting; failures are then only logged.
	TelegramChatID string `yaml:"telegram_chat_id"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`
}

func (c *Config) applyDefaults() {
	if c.Source.NoticeLimit == 0 {
		c.Source.NoticeLimit = 10
	}
	if c.Source.RunTimeoutS == 0 {
		c.Source.RunTimeoutS = 60
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "rgccr-notice-check/1.0"
	}
	if c.HTTP.ConnectTimeoutMS == 0 {
		c.HTTP.ConnectTimeoutMS = 5000
	}
	if c.HTTP.TotalTimeoutMS == 0 {
		c.HTTP.TotalTimeoutMS = 15000
	}
	if c.Backoff.MinMS == 0 {
		c.Backoff.MinMS = 250
	}
	if c.Backoff.MaxMS == 0 {
		c.Backoff.MaxMS = 2000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/latest_notices.txt"
	}
	if c.Storage.CommandTimeoutMS == 0 {
		c.Storage.CommandTimeoutMS = 5000
	}
	if c.Notify.DigestLimit == 0 {
		c.Notify.DigestLimit = 5
	}
	if c.Notify.Email.Port == 0 {
		c.Notify.Email.Port = 465
	}
	if c.Notify.Email.SenderName == "" {
		c.Notify.Email.SenderName = "Notice Bot"
	}
	if c.Observability.LogPath == "" {
		c.Observability.LogPath = "data/notice-check.log"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogMaxSizeMB == 0 {
		c.Observability.LogMaxSizeMB = 10
	}
	if c.Observability.LogMaxBackups == 0 {
		c.Observability.LogMaxBackups = 3
	}
	if c.Observability.LogMaxAgeDays == 0 {
		c.Observability.LogMaxAgeDays = 28
	}
	c.Selectors.ApplyDefaults()
}

// Validation
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if c.Source.NoticeLimit <= 0 {
		return fmt.Errorf("source.notice_limit must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Backoff.MinMS <= 0 || c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.min_ms and backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Storage.Driver != "file" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'file' or 'mssql'")
	}
	if c.Storage.Driver == "mssql" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for the mssql driver")
	}
	if !c.Notify.Email.Enabled && !c.Notify.Telegram.Enabled {
		return fmt.Errorf("at least one notify channel must be enabled")
	}
	if c.Notify.Email.Enabled {
		if c.Notify.Email.Host == "" || c.Notify.Email.Sender == "" {
			return fmt.Errorf("notify.email.host and notify.email.sender are required")
		}
		if len(c.EmailRecipients()) == 0 {
			return fmt.Errorf("notify.email has no recipients for the active mode")
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.Token == "" {
			return fmt.Errorf("notify.telegram.token is required")
		}
		if len(c.TelegramChatIDs()) == 0 {
			return fmt.Errorf("notify.telegram has no chat ids for the active mode")
		}
	}
	if c.Report.TelegramChatID != "" && c.Notify.Telegram.Token == "" {
		return fmt.Errorf("report.telegram_chat_id requires notify.telegram.token")
	}
	return nil
}

// EmailRecipients returns the email recipient set for the active mode.
func (c *Config) EmailRecipients() []string {
	if c.Notify.TestMode {
		return c.Notify.Email.TestRecipients
	}
	return c.Notify.Email.Recipients
}

// TelegramChatIDs returns the chat targets for the active mode.
func (c *Config) TelegramChatIDs() []string {
	if c.Notify.TestMode {
		return c.Notify.Telegram.TestChatIDs
	}
	return c.Notify.Telegram.ChatIDs
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRunTimeout() time.Duration {
	return time.Duration(c.Source.RunTimeoutS) * time.Second
}
