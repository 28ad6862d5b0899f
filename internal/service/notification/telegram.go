package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

var _ Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier 通过 Telegram Bot API 向聊天发送 HTML 消息
type TelegramNotifier struct {
	botToken string
	cli      *http.Client
	baseURL  string
}

type TelegramOption func(n *TelegramNotifier)

// WithTelegramBaseURL 覆盖 API 地址, 测试用
func WithTelegramBaseURL(url string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = url
	}
}

func NewTelegramNotifier(botToken string, opts ...TelegramOption) *TelegramNotifier {
	n := &TelegramNotifier{
		botToken: botToken,
		cli:      &http.Client{Timeout: 15 * time.Second},
		baseURL:  telegramAPIBase,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *TelegramNotifier) Platform() Platform {
	return PlatformTelegram
}

func (n *TelegramNotifier) Deliver(ctx context.Context, recipient Recipient, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    recipient.TargetID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.cli.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram responded %d for chat %s: %s",
			resp.StatusCode, recipient.TargetID, string(payload))
	}
	return nil
}
