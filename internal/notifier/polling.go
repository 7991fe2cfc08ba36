package notifier

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommandHandler answers one chat command; "" means no reply.
type CommandHandler func(ctx context.Context, command string) string

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

const (
	pollTimeoutSec = 30
	pollErrorPause = 5 * time.Second
)

// StartPolling long-polls getUpdates and dispatches commands to handler.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for ctx.Err() == nil {
		next, err := t.pollOnce(ctx, offset, pollTimeoutSec, handler)
		if err == nil {
			offset = next
			continue
		}
		if ctx.Err() != nil {
			break
		}
		t.Logger.Warn("telegram polling failed", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(pollErrorPause):
		}
	}
	t.Logger.Info("telegram polling stopped")
}

// pollOnce handles one batch of updates and returns the next offset.
func (t *TelegramNotifier) pollOnce(ctx context.Context, offset, timeoutSec int, handler CommandHandler) (int, error) {
	var updates []update
	err := t.call(ctx, "getUpdates", map[string]int{"offset": offset, "timeout": timeoutSec}, &updates)
	if err != nil {
		return offset, err
	}

	for _, u := range updates {
		offset = u.UpdateID + 1
		if u.Message == nil {
			continue
		}
		cmd := strings.TrimSpace(u.Message.Text)
		if cmd == "" {
			continue
		}
		t.Logger.Info("telegram command", zap.String("command", cmd))
		reply := handler(ctx, cmd)
		if reply == "" {
			continue
		}
		if err := t.Send(ctx, reply); err != nil {
			t.Logger.Error("telegram reply failed", zap.Error(err))
		}
	}
	return offset, nil
}
