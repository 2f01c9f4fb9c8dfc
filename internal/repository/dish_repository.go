package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/observability"
)

var ErrDishNotFound = errors.New("dish not found")

type DishRepository interface {
	Create(dish *domain.Dish, categoryIDs []uint) error
	FindByID(id uint) (*domain.Dish, error)
	ListByRestaurant(restaurantID uint) ([]domain.Dish, error)
	ListPaged(restaurantID uint, req PageRequest) (PageResult[domain.Dish], error)
	Update(id, restaurantID uint, updates map[string]any, categoryIDs []uint) error
	Delete(id, restaurantID uint) error
}

type GormDishRepository struct{ db *gorm.DB }

func NewDishRepository(db *gorm.DB) DishRepository { return &GormDishRepository{db: db} }

func (r *GormDishRepository) Create(dish *domain.Dish, categoryIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dish).Error; err != nil {
			return err
		}
		return replaceDishCategories(tx, dish, categoryIDs)
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "dish", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "dish", "create", "success")
	return nil
}

func (r *GormDishRepository) FindByID(id uint) (*domain.Dish, error) {
	var dish domain.Dish
	if err := r.db.Preload("Categories").First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return &dish, nil
}

func (r *GormDishRepository) ListByRestaurant(restaurantID uint) ([]domain.Dish, error) {
	var dishes []domain.Dish
	err := r.db.Preload("Categories").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&dishes).Error
	return dishes, err
}

func (r *GormDishRepository) ListPaged(restaurantID uint, req PageRequest) (PageResult[domain.Dish], error) {
	page := req.normalized()
	result := PageResult[domain.Dish]{Page: page.Page, PageSize: page.PageSize}

	base := r.db.Model(&domain.Dish{}).Where("restaurant_id = ?", restaurantID)
	if err := base.Count(&result.Total).Error; err != nil {
		return PageResult[domain.Dish]{}, err
	}
	err := r.db.Preload("Categories").
		Where("restaurant_id = ?", restaurantID).
		Order("id DESC").
		Offset(page.offset()).
		Limit(page.PageSize).
		Find(&result.Items).Error
	if err != nil {
		return PageResult[domain.Dish]{}, err
	}
	result.TotalPages = totalPages(result.Total, page.PageSize)
	return result, nil
}

func (r *GormDishRepository) Update(id, restaurantID uint, updates map[string]any, categoryIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		dish := &domain.Dish{ID: id, RestaurantID: restaurantID}
		if len(updates) > 0 {
			res := tx.Model(&domain.Dish{}).
				Where("id = ? AND restaurant_id = ?", id, restaurantID).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrDishNotFound
			}
		} else {
			var count int64
			if err := tx.Model(&domain.Dish{}).Where("id = ? AND restaurant_id = ?", id, restaurantID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrDishNotFound
			}
		}
		if categoryIDs == nil {
			return nil
		}
		return replaceDishCategories(tx, dish, categoryIDs)
	})
	if err != nil {
		status := "error"
		if errors.Is(err, ErrDishNotFound) {
			status = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "dish", "update", status)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "dish", "update", "success")
	return nil
}

func (r *GormDishRepository) Delete(id, restaurantID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND restaurant_id = ?", id, restaurantID).Delete(&domain.Dish{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDishNotFound
		}
		return tx.Exec("DELETE FROM dish_categories WHERE dish_id = ?", id).Error
	})
}

func replaceDishCategories(tx *gorm.DB, dish *domain.Dish, categoryIDs []uint) error {
	var categories []domain.Category
	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ? AND restaurant_id = ?", categoryIDs, dish.RestaurantID).Find(&categories).Error; err != nil {
			return err
		}
	}
	return tx.Model(dish).Association("Categories").Replace(categories)
}
