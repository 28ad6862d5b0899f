package repo

import (
	"context"
	"testing"
	"time"

	"github.com/KNICEX/position-tracker/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initTestRepo(t *testing.T) TradeEventRepo {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, InitTables(db))
	return NewTradeEventRepo(db)
}

func TestTradeEventRepo_CreateAndFind(t *testing.T) {
	repo := initTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, entity.TradeEvent{
		BaseSymbol:   "BTC",
		QuoteSymbol:  "USDT",
		EventType:    "opened",
		PositionSide: "LONG",
		Quantity:     "1",
		EntryPrice:   "100",
		RefPrice:     "110",
		PnlPercent:   "50",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = repo.Create(ctx, entity.TradeEvent{
		BaseSymbol:  "ETH",
		QuoteSymbol: "USDT",
		EventType:   "closed",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	recent, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	btc, err := repo.FindBySymbol(ctx, "BTC", "USDT")
	require.NoError(t, err)
	require.Len(t, btc, 1)
	assert.Equal(t, "opened", btc[0].EventType)
}
