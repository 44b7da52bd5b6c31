package repository

import (
	"context"
	"fmt"

	"deals_api/internal/domain/model"

	"gorm.io/gorm"
)

type LoadLogRepository interface {
	Create(ctx context.Context, entry *model.DataLoadLog) error
	List(ctx context.Context, limit, offset int) ([]model.DataLoadLog, int64, error)
}

type pgLoadLogRepository struct {
	db *gorm.DB
}

func NewPgLoadLogRepository(db *gorm.DB) LoadLogRepository {
	return &pgLoadLogRepository{db: db}
}

func (r *pgLoadLogRepository) Create(ctx context.Context, entry *model.DataLoadLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("pgLoadLogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLoadLogRepository) List(ctx context.Context, limit, offset int) ([]model.DataLoadLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.DataLoadLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("pgLoadLogRepository.List count: %w", err)
	}
	entries := []model.DataLoadLog{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("pgLoadLogRepository.List query: %w", err)
	}
	return entries, total, nil
}
