package notification

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/KNICEX/position-tracker/internal/service/tracker"
	"github.com/KNICEX/position-tracker/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// Formatter 把仓位事件渲染为各平台的消息文本
// 同一个事件对所有接收方只有展示差异 (艾特/标记语法), 数据内容完全一致
type Formatter struct {
	now func() time.Time
}

type FormatterOption func(f *Formatter)

func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) {
		f.now = now
	}
}

func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format 渲染消息, 任何内部异常都降级为最简 fallback 文本, 绝不向外抛出
func (f *Formatter) Format(msg Message, recipient Recipient) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("message formatting panicked, using fallback",
				"symbol", msg.Event.Position.TradingPair.ToString(), "panic", r)
			text = fmt.Sprintf("❌ %s position update (formatting unavailable)",
				msg.Event.Position.TradingPair.ToString())
		}
	}()

	switch recipient.Platform {
	case PlatformTelegram:
		return f.formatTelegram(msg)
	default:
		return f.formatDiscord(msg, recipient)
	}
}

func (f *Formatter) formatDiscord(msg Message, recipient Recipient) string {
	event := msg.Event
	pos := event.Position

	var b strings.Builder
	if recipient.RoleID != "" {
		fmt.Fprintf(&b, "<@&%s>\n\n", recipient.RoleID)
	}

	if event.Type == tracker.EventClosed {
		fmt.Fprintf(&b, "## 🔒 **POSITION CLOSED** %s\n\n", resultEmoji(event.PnlPercent))
		fmt.Fprintf(&b, "%s **%s** • Final Result: **%s**\n\n",
			pnlEmoji(event.PnlPercent), pos.TradingPair.ToString(), decimalx.SignedPercent(event.PnlPercent))
		b.WriteString("**📊 Performance Summary:**\n")
		fmt.Fprintf(&b, "• **Max Profit:** `%s`\n", decimalx.SignedPercent(event.MaxProfit))
		fmt.Fprintf(&b, "• **Max Drawdown:** `%s`\n", decimalx.SignedPercent(event.MaxDrawdown))
		fmt.Fprintf(&b, "• **Duration:** `%s`\n\n", FormatDuration(event.Duration))
		fmt.Fprintf(&b, "⏰ Closed at %s", f.now().Format("15:04:05"))
		if event.StartedUnknown {
			b.WriteString("\n⚠️ *Position was opened while the bot was offline*")
		}
	} else {
		header, accent := eventStyle(event, pos.PositionSide)
		fmt.Fprintf(&b, "## %s **%s**\n\n", header, eventLabel(event))
		fmt.Fprintf(&b, "%s **%s** • **%s** (%sx)\n\n",
			accent, pos.TradingPair.ToString(), pos.PositionSide, pos.Leverage.StringFixed(0))
		fmt.Fprintf(&b, "**💰 Entry Price:** `%s`\n", decimalx.Price(pos.EntryPrice))
		fmt.Fprintf(&b, "**📈 Current Price:** `%s`\n", decimalx.Price(event.RefPrice))
		fmt.Fprintf(&b, "**%s PnL:** `%s`\n\n", pnlEmoji(event.PnlPercent), decimalx.SignedPercent(event.PnlPercent))
		fmt.Fprintf(&b, "⏰ %s", f.now().Format("15:04:05"))
	}

	if msg.Commentary != "" {
		fmt.Fprintf(&b, "\n\n💡 *%s*", msg.Commentary)
	}
	return b.String()
}

func (f *Formatter) formatTelegram(msg Message) string {
	event := msg.Event
	pos := event.Position

	var b strings.Builder
	if event.Type == tracker.EventClosed {
		fmt.Fprintf(&b, "🔒 <b>POSITION CLOSED</b> %s\n\n", resultEmoji(event.PnlPercent))
		fmt.Fprintf(&b, "%s <b>%s</b> • Final: <b>%s</b>\n\n",
			pnlEmoji(event.PnlPercent), pos.TradingPair.ToString(), decimalx.SignedPercent(event.PnlPercent))
		b.WriteString("📊 <b>Performance:</b>\n")
		fmt.Fprintf(&b, "• Max Profit: <code>%s</code>\n", decimalx.SignedPercent(event.MaxProfit))
		fmt.Fprintf(&b, "• Max Drawdown: <code>%s</code>\n", decimalx.SignedPercent(event.MaxDrawdown))
		fmt.Fprintf(&b, "• Duration: <code>%s</code>\n\n", FormatDuration(event.Duration))
		fmt.Fprintf(&b, "⏰ Closed at %s", f.now().Format("15:04:05"))
		if event.StartedUnknown {
			b.WriteString("\n⚠️ <i>Position was opened while the bot was offline</i>")
		}
	} else {
		header, _ := eventStyle(event, pos.PositionSide)
		fmt.Fprintf(&b, "%s <b>%s</b>\n\n", header, eventLabel(event))
		fmt.Fprintf(&b, "<b>%s</b> • <b>%s</b> (%sx)\n\n",
			pos.TradingPair.ToString(), pos.PositionSide, pos.Leverage.StringFixed(0))
		fmt.Fprintf(&b, "💰 Entry: <code>%s</code>\n", decimalx.Price(pos.EntryPrice))
		fmt.Fprintf(&b, "📈 Current: <code>%s</code>\n", decimalx.Price(event.RefPrice))
		fmt.Fprintf(&b, "%s PnL: <code>%s</code>\n\n", pnlEmoji(event.PnlPercent), decimalx.SignedPercent(event.PnlPercent))
		fmt.Fprintf(&b, "⏰ %s", f.now().Format("15:04:05"))
	}

	if msg.Commentary != "" {
		fmt.Fprintf(&b, "\n\n💡 <i>%s</i>", msg.Commentary)
	}
	return b.String()
}

// StartupInfo 上线广播内容
type StartupInfo struct {
	ExchangeName string
	Platforms    []Platform
	StartedAt    time.Time
}

// FormatStartup 渲染上线广播消息
func (f *Formatter) FormatStartup(platform Platform, info StartupInfo) string {
	var b strings.Builder
	if platform == PlatformTelegram {
		b.WriteString("🤖 <b>POSITION TRACKER ONLINE</b>\n\n")
		b.WriteString("✅ <b>Connected &amp; Ready</b>\n\n")
		fmt.Fprintf(&b, "• <b>Exchange:</b> %s\n", info.ExchangeName)
		b.WriteString("• <b>Status:</b> Monitoring positions\n")
		fmt.Fprintf(&b, "• <b>Started:</b> %s\n\n", info.StartedAt.Format("15:04:05"))
		b.WriteString("🚀 <b>Ready to track your trades!</b>")
		return b.String()
	}

	b.WriteString("## 🤖 **POSITION TRACKER ONLINE**\n\n")
	b.WriteString("✅ **Connected & Ready**\n\n")
	fmt.Fprintf(&b, "• **Exchange:** %s\n", info.ExchangeName)
	for _, p := range info.Platforms {
		fmt.Fprintf(&b, "• **%s:** Notifications active\n", platformLabel(p))
	}
	b.WriteString("• **Status:** Monitoring positions\n")
	fmt.Fprintf(&b, "• **Started:** %s\n\n", info.StartedAt.Format("15:04:05"))
	b.WriteString("🚀 **Ready to track your trades!**")
	return b.String()
}

func platformLabel(p Platform) string {
	switch p {
	case PlatformDiscord:
		return "Discord"
	case PlatformTelegram:
		return "Telegram"
	default:
		return string(p)
	}
}

func eventLabel(event tracker.PositionEvent) string {
	switch event.Type {
	case tracker.EventOpened:
		return "NEW POSITION"
	case tracker.EventResized:
		switch event.Direction {
		case tracker.ResizeIncreased:
			return "POSITION INCREASED (DCA)"
		case tracker.ResizeReduced:
			return "POSITION REDUCED"
		default:
			return "POSITION UPDATED"
		}
	case tracker.EventClosed:
		return "POSITION CLOSED"
	default:
		return "POSITION UPDATE"
	}
}

func eventStyle(event tracker.PositionEvent, side exchange.PositionSide) (header, accent string) {
	switch event.Type {
	case tracker.EventOpened:
		if side == exchange.PositionSideShort {
			return "🚀", "🔴"
		}
		return "🚀", "🟢"
	case tracker.EventResized:
		switch event.Direction {
		case tracker.ResizeIncreased:
			return "📈", "🔵"
		case tracker.ResizeReduced:
			return "📉", "🟡"
		}
	}
	return "📋", "⚪"
}

func pnlEmoji(pnl decimal.Decimal) string {
	switch pnl.Sign() {
	case 1:
		return "🟢"
	case -1:
		return "🔴"
	default:
		return "🟡"
	}
}

func resultEmoji(pnl decimal.Decimal) string {
	switch pnl.Sign() {
	case 1:
		return "🎉"
	case -1:
		return "💔"
	default:
		return "😐"
	}
}

// FormatDuration 人类可读的持仓时长
// <60s -> "42s", <1h -> "12m 3s", 其余 -> "3h 25m"
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
