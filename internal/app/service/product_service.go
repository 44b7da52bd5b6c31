package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository"
)

// LoadEventPublisher announces committed CSV loads to the load-log worker.
type LoadEventPublisher interface {
	PublishLoadEvent(ctx context.Context, event model.LoadEvent) error
}

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	events       LoadEventPublisher
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	events LoadEventPublisher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		events:       events,
	}
}

type CreateProductRequest struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	TotalRating *int     `json:"total_rating"`
	Img         *string  `json:"img"`
	Discount    *int     `json:"discount"`
	URL         *string  `json:"url"`
	Date        *string  `json:"date"`
	CategoryID  uint     `json:"category_id"`
}

// UpdateProductRequest only touches the fields that are present.
type UpdateProductRequest struct {
	ID          uint     `json:"id"`
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	TotalRating *int     `json:"total_rating,omitempty"`
	Img         *string  `json:"img,omitempty"`
	Discount    *int     `json:"discount,omitempty"`
	URL         *string  `json:"url,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	CategoryID  *uint    `json:"category_id,omitempty"`
}

func errProductNotFound() error {
	return common.NewError(common.ErrNotFound, "Product not found.")
}

func (s *ProductService) ensureCategory(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errCategoryNotFound()
		}
		return err
	}
	return nil
}

func parseRequestDate(value *string) (time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return Today(), nil
	}
	d, err := ParseDate(*value)
	if err != nil {
		return time.Time{}, common.NewError(common.ErrValidation, "Invalid date: "+err.Error())
	}
	return d, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.ProductDeal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.CategoryID == 0 {
		return nil, common.NewError(common.ErrValidation, "Product title and category_id are required")
	}
	date, err := parseRequestDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &model.ProductDeal{
		Title:       title,
		Price:       req.Price,
		TotalRating: req.TotalRating,
		Img:         req.Img,
		Discount:    req.Discount,
		URL:         req.URL,
		Date:        date,
		Active:      true,
		CategoryID:  req.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*model.ProductDeal, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProductNotFound()
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter model.ProductFilter, page common.PageRequest) ([]model.ProductDeal, common.PageMeta, error) {
	if filter.CategoryID != nil {
		if err := s.ensureCategory(ctx, *filter.CategoryID); err != nil {
			return nil, common.PageMeta{}, err
		}
	}
	products, total, err := s.productRepo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, common.PageMeta{}, err
	}
	return products, common.NewPageMeta(page, len(products), total), nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, req UpdateProductRequest) (*model.ProductDeal, error) {
	if req.ID == 0 {
		return nil, common.NewError(common.ErrValidation, "Product id is required")
	}
	product, err := s.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, common.NewError(common.ErrValidation, "Product title cannot be empty")
		}
		product.Title = title
	}
	if req.Price != nil {
		product.Price = req.Price
	}
	if req.TotalRating != nil {
		product.TotalRating = req.TotalRating
	}
	if req.Img != nil {
		product.Img = req.Img
	}
	if req.Discount != nil {
		product.Discount = req.Discount
	}
	if req.URL != nil {
		product.URL = req.URL
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.Date != nil {
		if product.Date, err = parseRequestDate(req.Date); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *req.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProductNotFound()
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (*model.ProductDeal, error) {
	product, err := s.productRepo.SoftDeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProductNotFound()
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) DeleteProductsByDate(ctx context.Context, date time.Time) (int64, error) {
	return s.productRepo.SoftDeleteByDate(ctx, date)
}

func (s *ProductService) DeactivateProductsByDate(ctx context.Context, date time.Time) (int64, error) {
	return s.productRepo.DeactivateByDate(ctx, date)
}

// LoadProductsCSV parses an uploaded CSV and inserts every row under categoryID in a
// single transaction. It returns the number of inserted rows.
func (s *ProductService) LoadProductsCSV(ctx context.Context, categoryID uint, fileName string, file io.Reader, opts LoadOptions, loadedBy string) (int, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return 0, common.NewError(common.ErrBadRequest, "File must be in CSV format.")
	}
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return 0, err
	}

	products, err := ParseProductsCSV(file, categoryID, opts)
	if err != nil {
		return 0, err
	}
	if err := s.productRepo.BulkCreate(ctx, products); err != nil {
		return 0, err
	}

	event := model.LoadEvent{
		CategoryID:   categoryID,
		FileName:     filepath.Base(fileName),
		RowsInserted: len(products),
		LoadedBy:     loadedBy,
		LoadedAt:     time.Now().UTC(),
	}
	if s.events != nil {
		if err := s.events.PublishLoadEvent(ctx, event); err != nil {
			// Rows are committed; only the audit entry is lost.
			log.Printf("ERROR: Failed to publish load event for category %d: %v", categoryID, err)
		}
	}
	return len(products), nil
}

func LoadSuccessMessage(rows int) string {
	return fmt.Sprintf("File successfully processed and a total of %d data inserted into the database.", rows)
}
