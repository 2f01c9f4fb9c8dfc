package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
)

var (
	ErrInvalidRestaurant = errors.New("invalid restaurant fields")

	// ErrNotOwner is returned when a caller addresses a restaurant that
	// exists but belongs to someone else. Handlers map it to 404 so
	// ownership cannot be probed.
	ErrNotOwner = errors.New("restaurant not owned by caller")
)

type RestaurantService struct {
	cfg            *config.Config
	restaurantRepo repository.RestaurantRepository
	menuCache      MenuCacheStore
}

func NewRestaurantService(cfg *config.Config, restaurantRepo repository.RestaurantRepository, menuCache MenuCacheStore) *RestaurantService {
	return &RestaurantService{cfg: cfg, restaurantRepo: restaurantRepo, menuCache: menuCache}
}

// RestaurantView is a restaurant plus its shareable public menu link.
type RestaurantView struct {
	domain.Restaurant
	MenuURL string `json:"menu_url"`
}

func (s *RestaurantService) Create(ctx context.Context, ownerID uint, name, location string) (*RestaurantView, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	// Bounds mirror the column sizes so postgres never rejects what
	// validation accepted.
	if name == "" || len(name) > 120 || len(location) > 240 {
		return nil, ErrInvalidRestaurant
	}
	restaurant := &domain.Restaurant{
		PublicID: uuid.New().String(),
		Name:     name,
		Location: location,
		OwnerID:  ownerID,
	}
	if err := s.restaurantRepo.Create(restaurant); err != nil {
		observability.RecordMenuOperation(ctx, "restaurant", "create", "error")
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	observability.RecordMenuOperation(ctx, "restaurant", "create", "ok")
	return s.view(restaurant), nil
}

func (s *RestaurantService) ListByOwner(ctx context.Context, ownerID uint) ([]RestaurantView, error) {
	restaurants, err := s.restaurantRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	views := make([]RestaurantView, 0, len(restaurants))
	for i := range restaurants {
		views = append(views, *s.view(&restaurants[i]))
	}
	return views, nil
}

func (s *RestaurantService) GetOwned(ctx context.Context, id, ownerID uint) (*RestaurantView, error) {
	restaurant, err := s.ownedRestaurant(id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.view(restaurant), nil
}

func (s *RestaurantService) Delete(ctx context.Context, id, ownerID uint) error {
	restaurant, err := s.ownedRestaurant(id, ownerID)
	if err != nil {
		return err
	}
	if err := s.restaurantRepo.DeleteOwned(id, ownerID); err != nil {
		observability.RecordMenuOperation(ctx, "restaurant", "delete", "error")
		return fmt.Errorf("delete restaurant: %w", err)
	}
	if err := s.menuCache.Invalidate(ctx, restaurant.PublicID); err != nil {
		observability.RecordMenuCacheEvent(ctx, "invalidate_error")
	}
	observability.RecordMenuOperation(ctx, "restaurant", "delete", "ok")
	return nil
}

// ownedRestaurant loads the restaurant and checks ownership. Foreign
// restaurants are reported as not found.
func (s *RestaurantService) ownedRestaurant(id, ownerID uint) (*domain.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return restaurant, nil
}

func (s *RestaurantService) view(restaurant *domain.Restaurant) *RestaurantView {
	return &RestaurantView{
		Restaurant: *restaurant,
		MenuURL:    s.menuURL(restaurant.PublicID),
	}
}

func (s *RestaurantService) menuURL(publicID string) string {
	base := strings.TrimRight(s.cfg.PublicMenuBaseURL, "/")
	return base + "/" + url.PathEscape(publicID)
}
