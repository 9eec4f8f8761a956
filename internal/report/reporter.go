// Package report delivers run-failure alerts out of band to the operator.
// Reporting is best effort: a reporter that fails must never raise a
// secondary error that masks the failure being reported.
package report

import (
	"context"
	"fmt"

	"rgccr-notice-check/internal/notifier"
	"rgccr-notice-check/internal/observability"
)

// TelegramReporter pushes failure descriptions to a fixed operator chat.
// With no chat configured it degrades to log-only.
type TelegramReporter struct {
	client *notifier.TelegramClient
	chatID string
	logger *observability.Logger
}

func NewTelegramReporter(client *notifier.TelegramClient, chatID string, logger *observability.Logger) *TelegramReporter {
	return &TelegramReporter{
		client: client,
		chatID: chatID,
		logger: logger,
	}
}

func (r *TelegramReporter) Report(ctx context.Context, stage string, err error) {
	if r.chatID == "" || r.client == nil {
		return
	}

	text := fmt.Sprintf("❌ notice-check failed at %s: %v", stage, err)
	if sendErr := r.client.SendMessage(ctx, r.chatID, text); sendErr != nil {
		// Swallowed on purpose; the original failure is the one that matters.
		r.logger.Error("failed to deliver error report",
			"stage", stage,
			"error", sendErr.Error(),
		)
	}
}
