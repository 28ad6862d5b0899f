package notification

import (
	"context"

	"github.com/KNICEX/position-tracker/internal/service/tracker"
)

type Platform string

const (
	PlatformDiscord  Platform = "discord"
	PlatformTelegram Platform = "telegram"
)

// Recipient 一个通知接收方, 来自配置, 核心逻辑只读
type Recipient struct {
	Platform Platform
	Name     string
	// TargetID Discord 频道 ID 或 Telegram 聊天 ID
	TargetID string
	// RoleID 可选, Discord 消息中艾特的身份组
	RoleID string
}

// Notifier 单个平台的投递通道
type Notifier interface {
	Platform() Platform
	Deliver(ctx context.Context, recipient Recipient, text string) error
}

// Message 待分发的事件, Commentary 为可选的 AI 复盘点评
type Message struct {
	Event      tracker.PositionEvent
	Commentary string
}
