package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/domain"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Create(category *domain.Category) error
	FindByID(id uint) (*domain.Category, error)
	ListByRestaurant(restaurantID uint) ([]domain.Category, error)
	Update(id, restaurantID uint, updates map[string]any) error
	Delete(id, restaurantID uint) error
}

type GormCategoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(category *domain.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) FindByID(id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) ListByRestaurant(restaurantID uint) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.Where("restaurant_id = ?", restaurantID).Order("created_at ASC").Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) Update(id, restaurantID uint, updates map[string]any) error {
	res := r.db.Model(&domain.Category{}).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *GormCategoryRepository) Delete(id, restaurantID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND restaurant_id = ?", id, restaurantID).Delete(&domain.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.Exec("DELETE FROM dish_categories WHERE category_id = ?", id).Error
	})
}
