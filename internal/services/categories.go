package services

import (
	"context"
	"errors"
	"strings"

	"financetracker/internal/core"
	"financetracker/internal/storage"
)

type CategoryService struct {
	repo *storage.SQLiteRepository
}

func NewCategoryService(repo *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.repo.ListCategories(ctx, userID)
}

// Create stores a new category. Reusing a name the user already has fails
// with core.DuplicateCategoryError.
func (s *CategoryService) Create(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	saved, err := s.repo.CreateCategory(ctx, userID, c)
	if errors.Is(err, storage.ErrDuplicate) {
		return core.Category{}, core.DuplicateCategoryError()
	}
	return saved, err
}
