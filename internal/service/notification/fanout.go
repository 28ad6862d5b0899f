package notification

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrent = 4

// DeliveryResult 单个接收方的投递结果
type DeliveryResult struct {
	Recipient Recipient
	Err       error
}

// Dispatcher 把一条逻辑消息扇出到所有已配置的接收方
// 每个投递相互独立: 单个接收方失败只记录日志, 不影响其余接收方, 也不在本周期重试
type Dispatcher struct {
	formatter     *Formatter
	notifiers     map[Platform]Notifier
	recipients    []Recipient
	maxConcurrent int
}

type DispatcherOption func(d *Dispatcher)

// WithMaxConcurrent 限制同时进行的投递数
func WithMaxConcurrent(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxConcurrent = n
	}
}

func NewDispatcher(formatter *Formatter, notifiers []Notifier, recipients []Recipient, opts ...DispatcherOption) *Dispatcher {
	byPlatform := make(map[Platform]Notifier, len(notifiers))
	for _, n := range notifiers {
		byPlatform[n.Platform()] = n
	}
	d := &Dispatcher{
		formatter:     formatter,
		notifiers:     byPlatform,
		recipients:    recipients,
		maxConcurrent: defaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) RecipientCount() int {
	return len(d.recipients)
}

// Dispatch 把事件消息投递给全部接收方, 返回每个接收方的结果
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) []DeliveryResult {
	return d.send(ctx, func(recipient Recipient) string {
		return d.formatter.Format(msg, recipient)
	})
}

// Broadcast 向全部接收方发送每个平台一份的纯文本消息 (如上线通知)
func (d *Dispatcher) Broadcast(ctx context.Context, textPerPlatform map[Platform]string) []DeliveryResult {
	return d.send(ctx, func(recipient Recipient) string {
		return textPerPlatform[recipient.Platform]
	})
}

func (d *Dispatcher) send(ctx context.Context, render func(Recipient) string) []DeliveryResult {
	results := make([]DeliveryResult, len(d.recipients))

	var g errgroup.Group
	g.SetLimit(d.maxConcurrent)
	for i, recipient := range d.recipients {
		i, recipient := i, recipient
		results[i].Recipient = recipient

		notifier, ok := d.notifiers[recipient.Platform]
		if !ok {
			results[i].Err = fmt.Errorf("no notifier configured for platform %s", recipient.Platform)
			slog.Error("skipping recipient without notifier",
				"recipient", recipient.Name, "platform", recipient.Platform)
			continue
		}

		g.Go(func() error {
			text := render(recipient)
			if text == "" {
				return nil
			}
			if err := notifier.Deliver(ctx, recipient, text); err != nil {
				results[i].Err = err
				slog.Error("failed to deliver notification",
					"recipient", recipient.Name, "platform", recipient.Platform, "error", err)
				return nil
			}
			slog.Info("notification delivered",
				"recipient", recipient.Name, "platform", recipient.Platform)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
