package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
source:
  url: "https://rgccr.gov.bd/notice_categories/notice/"
notify:
  telegram:
    enabled: true
    token: "${TEST_TG_TOKEN}"
    chat_ids:
      - "100"
    test_chat_ids:
      - "200"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("TEST_TG_TOKEN", "tok-123")

	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Notify.Telegram.Token != "tok-123" {
		t.Errorf("env var not expanded: %q", cfg.Notify.Telegram.Token)
	}
	if cfg.Source.NoticeLimit != 10 {
		t.Errorf("notice_limit default not applied: %d", cfg.Source.NoticeLimit)
	}
	if cfg.Notify.DigestLimit != 5 {
		t.Errorf("digest_limit default not applied: %d", cfg.Notify.DigestLimit)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path == "" {
		t.Errorf("storage defaults not applied: %+v", cfg.Storage)
	}
	if cfg.Selectors.Table == "" || len(cfg.Selectors.Title) == 0 {
		t.Errorf("selector defaults not applied: %+v", cfg.Selectors)
	}
}

func TestLoadConfigMissingURL(t *testing.T) {
	t.Setenv("TEST_TG_TOKEN", "tok")

	_, err := LoadConfig(writeConfig(t, `
notify:
  telegram:
    enabled: true
    token: "t"
    chat_ids: ["1"]
`))
	if err == nil {
		t.Fatal("expected validation error for missing source.url")
	}
}

func TestLoadConfigNoChannelEnabled(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
source:
  url: "https://example.edu/notices"
`))
	if err == nil {
		t.Fatal("expected validation error when no notify channel is enabled")
	}
}

func TestLoadConfigMarkerFileForcesTestMode(t *testing.T) {
	t.Setenv("TEST_TG_TOKEN", "tok")
	marker := filepath.Join(t.TempDir(), "test_mode")
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	yaml := minimalYAML + "  test_marker_file: \"" + marker + "\"\n"
	cfg, err := LoadConfig(writeConfig(t, yaml))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Notify.TestMode {
		t.Error("marker file should force test mode")
	}
	if got := cfg.TelegramChatIDs(); len(got) != 1 || got[0] != "200" {
		t.Errorf("test mode should select test chat ids, got %v", got)
	}
}

func TestRecipientSelectionByMode(t *testing.T) {
	cfg := &Config{
		Notify: NotifyConfig{
			Email: EmailConfig{
				Recipients:     []string{"prod@example.edu"},
				TestRecipients: []string{"test@example.edu"},
			},
			Telegram: TelegramConfig{
				ChatIDs:     []string{"prod"},
				TestChatIDs: []string{"test"},
			},
		},
	}

	if got := cfg.EmailRecipients(); got[0] != "prod@example.edu" {
		t.Errorf("production mode should use production recipients, got %v", got)
	}

	cfg.Notify.TestMode = true
	if got := cfg.EmailRecipients(); got[0] != "test@example.edu" {
		t.Errorf("test mode should use test recipients, got %v", got)
	}
	if got := cfg.TelegramChatIDs(); got[0] != "test" {
		t.Errorf("test mode should use test chat ids, got %v", got)
	}
}
