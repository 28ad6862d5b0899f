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

const discordAPIBase = "https://discord.com/api/v10"

var _ Notifier = (*DiscordNotifier)(nil)

// DiscordNotifier 通过 Discord Bot API 向频道发送消息
type DiscordNotifier struct {
	botToken string
	cli      *http.Client
	baseURL  string
}

type DiscordOption func(n *DiscordNotifier)

// WithDiscordBaseURL 覆盖 API 地址, 测试用
func WithDiscordBaseURL(url string) DiscordOption {
	return func(n *DiscordNotifier) {
		n.baseURL = url
	}
}

func NewDiscordNotifier(botToken string, opts ...DiscordOption) *DiscordNotifier {
	n := &DiscordNotifier{
		botToken: botToken,
		// 网络调用必须有界超时, 否则会阻塞优雅停机
		cli:     &http.Client{Timeout: 15 * time.Second},
		baseURL: discordAPIBase,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *DiscordNotifier) Platform() Platform {
	return PlatformDiscord
}

func (n *DiscordNotifier) Deliver(ctx context.Context, recipient Recipient, text string) error {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/channels/%s/messages", n.baseURL, recipient.TargetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+n.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.cli.Do(req)
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord responded %d for channel %s: %s",
			resp.StatusCode, recipient.TargetID, string(payload))
	}
	return nil
}
