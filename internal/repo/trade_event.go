package repo

import (
	"context"

	"github.com/KNICEX/position-tracker/internal/entity"
	"gorm.io/gorm"
)

type TradeEventRepo interface {
	Create(ctx context.Context, event entity.TradeEvent) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]entity.TradeEvent, error)
	FindBySymbol(ctx context.Context, base, quote string) ([]entity.TradeEvent, error)
}

type tradeEventRepo struct {
	db *gorm.DB
}

func NewTradeEventRepo(db *gorm.DB) TradeEventRepo {
	return &tradeEventRepo{
		db: db,
	}
}

func (r *tradeEventRepo) Create(ctx context.Context, event entity.TradeEvent) (int64, error) {
	err := r.db.WithContext(ctx).Create(&event).Error
	if err != nil {
		return 0, err
	}
	return event.Id, nil
}

func (r *tradeEventRepo) FindRecent(ctx context.Context, limit int) ([]entity.TradeEvent, error) {
	var events []entity.TradeEvent
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *tradeEventRepo) FindBySymbol(ctx context.Context, base, quote string) ([]entity.TradeEvent, error) {
	var events []entity.TradeEvent
	err := r.db.WithContext(ctx).
		Where("base_symbol = ? AND quote_symbol = ?", base, quote).
		Order("created_at desc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
