package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KNICEX/position-tracker/internal/service/exchange"
	"github.com/KNICEX/position-tracker/internal/service/notification"
	"github.com/KNICEX/position-tracker/internal/service/tracker"
	"github.com/KNICEX/position-tracker/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePositionService struct {
	positions []exchange.Position
	err       error
}

func (s *fakePositionService) GetActivePositions(ctx context.Context, pairs []exchange.TradingPair) ([]exchange.Position, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.positions, nil
}

type fakeMarketService struct{}

func (s *fakeMarketService) Ticker(ctx context.Context, pair exchange.TradingPair) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("no market data in test")
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Platform() notification.Platform {
	return notification.PlatformDiscord
}

func (n *recordingNotifier) Deliver(ctx context.Context, recipient notification.Recipient, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func btcPosition(qty string) exchange.Position {
	return exchange.Position{
		TradingPair:  exchange.TradingPair{Base: "BTC", Quote: "USDT"},
		PositionSide: exchange.PositionSideLong,
		EntryPrice:   decimalx.MustFromString("100"),
		MarkPrice:    decimalx.MustFromString("110"),
		Quantity:     decimalx.MustFromString(qty),
		Leverage:     decimal.NewFromInt(5),
	}
}

func newTestTask(positionSvc exchange.PositionService) (*PositionMonitorTask, *recordingNotifier) {
	notifier := &recordingNotifier{}
	dispatcher := notification.NewDispatcher(
		notification.NewFormatter(),
		[]notification.Notifier{notifier},
		[]notification.Recipient{{Platform: notification.PlatformDiscord, Name: "srv", TargetID: "1"}},
	)
	differ := tracker.NewDiffer(&fakeMarketService{})
	task := NewPositionMonitorTask(positionSvc, differ, dispatcher, time.Second*10)
	return task, notifier
}

func TestPositionMonitorTask_DispatchesOpenEvent(t *testing.T) {
	positionSvc := &fakePositionService{}
	task, notifier := newTestTask(positionSvc)

	// 第一个周期无持仓
	require.NoError(t, task.Run(context.Background()))
	assert.Empty(t, notifier.Messages())

	positionSvc.positions = []exchange.Position{btcPosition("1")}
	require.NoError(t, task.Run(context.Background()))

	messages := notifier.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "NEW POSITION")
	assert.Contains(t, messages[0], "BTCUSDT")
}

func TestPositionMonitorTask_FetchFailureSkipsCycle(t *testing.T) {
	positionSvc := &fakePositionService{}
	task, notifier := newTestTask(positionSvc)

	require.NoError(t, task.Run(context.Background()))
	positionSvc.positions = []exchange.Position{btcPosition("1")}
	require.NoError(t, task.Run(context.Background()))

	// 拉取失败: 不产生任何事件, previous 保持不变
	positionSvc.err = errors.New("exchange timeout")
	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, notifier.Messages(), 1)

	// 恢复后仓位未变, 没有虚假的平仓/开仓事件
	positionSvc.err = nil
	require.NoError(t, task.Run(context.Background()))
	assert.Len(t, notifier.Messages(), 1)
}

func TestPositionMonitorTask_CloseAfterFailureWindow(t *testing.T) {
	positionSvc := &fakePositionService{}
	task, notifier := newTestTask(positionSvc)

	require.NoError(t, task.Run(context.Background()))
	positionSvc.positions = []exchange.Position{btcPosition("1")}
	require.NoError(t, task.Run(context.Background()))

	positionSvc.err = errors.New("exchange timeout")
	require.Error(t, task.Run(context.Background()))

	// 恢复后仓位已消失 -> 正常产生平仓事件
	positionSvc.err = nil
	positionSvc.positions = nil
	require.NoError(t, task.Run(context.Background()))

	messages := notifier.Messages()
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1], "POSITION CLOSED")
}

func TestPositionMonitorTask_Status(t *testing.T) {
	positionSvc := &fakePositionService{positions: []exchange.Position{btcPosition("1")}}
	task, _ := newTestTask(positionSvc)

	st := task.Status()
	assert.Empty(t, st.ActiveSymbols)
	assert.Equal(t, time.Second*10, st.Interval)
	assert.Equal(t, 1, st.Recipients)

	require.NoError(t, task.Run(context.Background()))

	st = task.Status()
	assert.Equal(t, []string{"BTCUSDT"}, st.ActiveSymbols)
	assert.False(t, st.LastCycleAt.IsZero())
}

func TestPositionMonitorTask_Name(t *testing.T) {
	task, _ := newTestTask(&fakePositionService{})
	assert.True(t, strings.Contains(task.Name(), "monitor"))
}
