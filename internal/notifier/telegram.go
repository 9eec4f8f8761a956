package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
)

const (
	telegramAPI    = "https://api.telegram.org"
	sendRetryLimit = 3
)

// TelegramClient speaks the Bot API sendMessage method directly; the job
// only ever sends plain text, so a bot framework would be dead weight.
type TelegramClient struct {
	token   string
	apiBase string
	httpc   *http.Client
}

func NewTelegramClient(token string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		apiBase: telegramAPI,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// SendMessage posts a plain-text message to one chat, honoring the
// retry_after hint when the Bot API rate limits us.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < sendRetryLimit; attempt++ {
		result, err := c.sendOnce(ctx, payload)
		if err != nil {
			return err
		}
		if result.OK {
			return nil
		}

		lastErr = fmt.Errorf("telegram API error %d: %s", result.ErrorCode, result.Description)
		if result.ErrorCode != http.StatusTooManyRequests {
			return lastErr
		}

		wait := time.Duration(result.Parameters.RetryAfter) * time.Second
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *TelegramClient) sendOnce(ctx context.Context, payload []byte) (*sendMessageResponse, error) {
	url := c.apiBase + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode telegram response: %w", err)
	}
	return &result, nil
}

// TelegramChannel sends the digest to every configured chat. Per-chat
// failures are collected so one bad chat ID does not starve the rest.
type TelegramChannel struct {
	client      *TelegramClient
	chatIDs     []string
	digestLimit int
	logger      *observability.Logger
}

func NewTelegramChannel(client *TelegramClient, chatIDs []string, digestLimit int, logger *observability.Logger) *TelegramChannel {
	return &TelegramChannel{
		client:      client,
		chatIDs:     chatIDs,
		digestLimit: digestLimit,
		logger:      logger,
	}
}

func (t *TelegramChannel) Name() string {
	return "telegram"
}

func (t *TelegramChannel) Send(ctx context.Context, notices []notice.Notice) error {
	text := formatTelegramDigest(notices, t.digestLimit)

	var failures []string
	for _, chatID := range t.chatIDs {
		if err := t.client.SendMessage(ctx, chatID, text); err != nil {
			t.logger.Error("telegram delivery failed", "chat_id", chatID, "error", err.Error())
			failures = append(failures, fmt.Sprintf("chat %s: %v", chatID, err))
			continue
		}
		t.logger.Debug("telegram message sent", "chat_id", chatID)
	}

	if len(failures) > 0 {
		return fmt.Errorf("telegram: %s", strings.Join(failures, "; "))
	}
	return nil
}

func formatTelegramDigest(notices []notice.Notice, limit int) string {
	if len(notices) > limit {
		notices = notices[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📢 New Notices (Last %d):\n\n", len(notices))
	for i, n := range notices {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, n.Date, n.Title)
		fmt.Fprintf(&b, "   🔗 %s\n", n.URL)
	}
	return b.String()
}

var _ Channel = (*TelegramChannel)(nil)
