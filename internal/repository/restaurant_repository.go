package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/domain"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

type RestaurantRepository interface {
	Create(restaurant *domain.Restaurant) error
	FindByID(id uint) (*domain.Restaurant, error)
	FindByPublicID(publicID string) (*domain.Restaurant, error)
	ListByOwner(ownerID uint) ([]domain.Restaurant, error)
	// DeleteOwned removes the restaurant only when it belongs to ownerID,
	// along with its categories, dishes and dish-category links.
	DeleteOwned(id, ownerID uint) error
}

type GormRestaurantRepository struct{ db *gorm.DB }

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

func (r *GormRestaurantRepository) Create(restaurant *domain.Restaurant) error {
	return r.db.Create(restaurant).Error
}

func (r *GormRestaurantRepository) FindByID(id uint) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	if err := r.db.First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &restaurant, nil
}

func (r *GormRestaurantRepository) FindByPublicID(publicID string) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	if err := r.db.Where("public_id = ?", publicID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &restaurant, nil
}

func (r *GormRestaurantRepository) ListByOwner(ownerID uint) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&restaurants).Error
	return restaurants, err
}

func (r *GormRestaurantRepository) DeleteOwned(id, ownerID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Restaurant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRestaurantNotFound
		}
		var dishIDs []uint
		if err := tx.Model(&domain.Dish{}).Where("restaurant_id = ?", id).Pluck("id", &dishIDs).Error; err != nil {
			return err
		}
		if len(dishIDs) > 0 {
			if err := tx.Exec("DELETE FROM dish_categories WHERE dish_id IN ?", dishIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&domain.Dish{}).Error; err != nil {
			return err
		}
		return tx.Where("restaurant_id = ?", id).Delete(&domain.Category{}).Error
	})
}
