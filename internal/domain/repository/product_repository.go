package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const bulkInsertBatchSize = 500

type ProductRepository interface {
	Create(ctx context.Context, product *model.ProductDeal) error
	// BulkCreate inserts every product in one transaction: all rows commit or none do.
	BulkCreate(ctx context.Context, products []model.ProductDeal) error
	FindByID(ctx context.Context, id uint) (*model.ProductDeal, error)
	List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.ProductDeal, int64, error)
	Update(ctx context.Context, product *model.ProductDeal) error
	SoftDeleteByID(ctx context.Context, id uint) (*model.ProductDeal, error)
	SoftDeleteByDate(ctx context.Context, date time.Time) (int64, error)
	DeactivateByDate(ctx context.Context, date time.Time) (int64, error)
}

type pgProductRepository struct {
	db *gorm.DB
}

func NewPgProductRepository(db *gorm.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

func (r *pgProductRepository) Create(ctx context.Context, p *model.ProductDeal) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("pgProductRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProductRepository) BulkCreate(ctx context.Context, products []model.ProductDeal) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).CreateInBatches(products, bulkInsertBatchSize).Error; err != nil {
			return fmt.Errorf("pgProductRepository.BulkCreate: %w", err)
		}
		return nil
	})
}

func (r *pgProductRepository) FindByID(ctx context.Context, id uint) (*model.ProductDeal, error) {
	p := &model.ProductDeal{}
	err := r.db.WithContext(ctx).Where("deleted = ?", false).First(p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepository) List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.ProductDeal, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.ProductDeal{}).Where("deleted = ?", false)
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Active != nil {
		base = base.Where("active = ?", *filter.Active)
	}

	// Count total matching products (without limit/offset)
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.List count: %w", err)
	}

	query := base.Session(&gorm.Session{})
	switch filter.DiscountOrder {
	case model.DiscountAsc:
		query = query.Order("discount ASC NULLS LAST").Order("id ASC")
	case model.DiscountDesc:
		query = query.Order("discount DESC NULLS LAST").Order("id ASC")
	default:
		query = query.Order("date DESC").Order("id ASC")
	}

	products := []model.ProductDeal{}
	if err := query.Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("pgProductRepository.List query: %w", err)
	}
	return products, total, nil
}

func (r *pgProductRepository) Update(ctx context.Context, p *model.ProductDeal) error {
	res := r.db.WithContext(ctx).Model(p).Where("deleted = ?", false).Select(
		"title", "price", "total_rating", "img", "discount", "url", "date", "active", "category_id", "updated_at",
	).Updates(p)
	if res.Error != nil {
		return fmt.Errorf("pgProductRepository.Update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProductRepository) SoftDeleteByID(ctx context.Context, id uint) (*model.ProductDeal, error) {
	p := &model.ProductDeal{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("deleted = ?", false).First(p, id).Error; err != nil {
			return err
		}
		return tx.Model(p).Update("deleted", true).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProductRepository.SoftDeleteByID: %w", err)
	}
	p.Deleted = true
	return p, nil
}

func (r *pgProductRepository) SoftDeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ProductDeal{}).
		Where("date = ? AND deleted = ?", date.Format(model.DateLayout), false).
		Update("deleted", true)
	if res.Error != nil {
		return 0, fmt.Errorf("pgProductRepository.SoftDeleteByDate: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *pgProductRepository) DeactivateByDate(ctx context.Context, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ProductDeal{}).
		Where("date = ? AND deleted = ? AND active = ?", date.Format(model.DateLayout), false, true).
		Update("active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("pgProductRepository.DeactivateByDate: %w", res.Error)
	}
	return res.RowsAffected, nil
}
