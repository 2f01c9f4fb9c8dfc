package service

import (
	"context"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/repository"
)

type OTPServiceInterface interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (*VerifyResult, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type UserServiceInterface interface {
	GetByID(id uint) (*domain.User, error)
	UpdateProfile(id uint, update ProfileUpdate) (*domain.User, error)
}

type RestaurantServiceInterface interface {
	Create(ctx context.Context, ownerID uint, name, location string) (*RestaurantView, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]RestaurantView, error)
	GetOwned(ctx context.Context, id, ownerID uint) (*RestaurantView, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type MenuServiceInterface interface {
	CreateCategory(ctx context.Context, ownerID, restaurantID uint, in CategoryInput) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID, restaurantID uint) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, ownerID, restaurantID, categoryID uint, in CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, ownerID, restaurantID, categoryID uint) error
	CreateDish(ctx context.Context, ownerID, restaurantID uint, in DishInput) (*domain.Dish, error)
	ListDishes(ctx context.Context, ownerID, restaurantID uint, page repository.PageRequest) (repository.PageResult[domain.Dish], error)
	UpdateDish(ctx context.Context, ownerID, restaurantID, dishID uint, in DishUpdate) (*domain.Dish, error)
	DeleteDish(ctx context.Context, ownerID, restaurantID, dishID uint) error
	SetDishImage(ctx context.Context, ownerID, restaurantID, dishID uint, imageKey, imageURL string) (*domain.Dish, error)
	PublicMenu(ctx context.Context, publicID string) (*PublicMenuView, error)
}
