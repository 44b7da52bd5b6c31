package repository

import (
	"context"
	"errors"
	"fmt"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	List(ctx context.Context, limit, offset int) ([]model.Category, int64, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
	// CountProducts counts every product referencing the category, soft-deleted ones included.
	CountProducts(ctx context.Context, id uint) (int64, error)
}

type pgCategoryRepository struct {
	db *gorm.DB
}

func NewPgCategoryRepository(db *gorm.DB) CategoryRepository {
	return &pgCategoryRepository{db: db}
}

func (r *pgCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("pgCategoryRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCategoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	category := &model.Category{}
	if err := r.db.WithContext(ctx).First(category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCategoryRepository.FindByID: %w", err)
	}
	return category, nil
}

func (r *pgCategoryRepository) List(ctx context.Context, limit, offset int) ([]model.Category, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("pgCategoryRepository.List count: %w", err)
	}

	categories := []model.Category{}
	err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&categories).Error
	if err != nil {
		return nil, 0, fmt.Errorf("pgCategoryRepository.List query: %w", err)
	}
	return categories, total, nil
}

func (r *pgCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	res := r.db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"name": category.Name,
		"slug": category.Slug,
	})
	if res.Error != nil {
		return fmt.Errorf("pgCategoryRepository.Update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		if common.IsForeignKeyViolation(res.Error) {
			return fmt.Errorf("category %d still has products: %w", id, common.ErrBadRequest)
		}
		return fmt.Errorf("pgCategoryRepository.Delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCategoryRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductDeal{}).Where("category_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("pgCategoryRepository.CountProducts: %w", err)
	}
	return count, nil
}
