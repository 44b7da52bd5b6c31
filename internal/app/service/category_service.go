package service

import (
	"context"
	"errors"
	"strings"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository"

	"github.com/gosimple/slug"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

type CategoryRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func errCategoryNotFound() error {
	return common.NewError(common.ErrNotFound, "Category not found.")
}

func (s *CategoryService) CreateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewError(common.ErrValidation, "Category name is required")
	}
	category := &model.Category{Name: name, Slug: slug.Make(name)}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errCategoryNotFound()
		}
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, page common.PageRequest) ([]model.Category, common.PageMeta, error) {
	categories, total, err := s.categoryRepo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, common.PageMeta{}, err
	}
	return categories, common.NewPageMeta(page, len(categories), total), nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if req.ID == 0 || name == "" {
		return nil, common.NewError(common.ErrValidation, "Category id and name are required")
	}
	category, err := s.GetCategory(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug.Make(name)
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errCategoryNotFound()
		}
		return nil, err
	}
	return s.GetCategory(ctx, req.ID)
}

// DeleteCategory refuses to remove a category that any product still references.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.NewError(common.ErrBadRequest, "Category cannot be deleted because it has associated products.")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errCategoryNotFound()
		}
		return err
	}
	return nil
}
