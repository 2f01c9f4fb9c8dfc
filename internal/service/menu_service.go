package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/observability"
	"github.com/platemenu/platemenu/internal/repository"
)

var (
	ErrInvalidCategory = errors.New("invalid category fields")
	ErrInvalidDish     = errors.New("invalid dish fields")
)

var validSpiceLevels = map[string]struct{}{
	"":       {},
	"mild":   {},
	"medium": {},
	"hot":    {},
}

// MenuService manages a restaurant's categories and dishes and renders the
// public menu. Every mutation goes through an ownership check on the parent
// restaurant and invalidates the cached public menu.
type MenuService struct {
	cfg            *config.Config
	restaurantRepo repository.RestaurantRepository
	categoryRepo   repository.CategoryRepository
	dishRepo       repository.DishRepository
	menuCache      MenuCacheStore
	storage        StorageService
	rebuilds       singleflight.Group
}

// NewMenuService wires the menu domain. storage may be nil when no object
// storage backend is configured; dish views then fall back to the stored
// image URL.
func NewMenuService(
	cfg *config.Config,
	restaurantRepo repository.RestaurantRepository,
	categoryRepo repository.CategoryRepository,
	dishRepo repository.DishRepository,
	menuCache MenuCacheStore,
	storage StorageService,
) *MenuService {
	return &MenuService{
		cfg:            cfg,
		restaurantRepo: restaurantRepo,
		categoryRepo:   categoryRepo,
		dishRepo:       dishRepo,
		menuCache:      menuCache,
		storage:        storage,
	}
}

type CategoryInput struct {
	Name string `json:"name"`
}

type DishInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	SpiceLevel  string  `json:"spice_level"`
	IsVeg       bool    `json:"is_veg"`
	CategoryIDs []uint  `json:"category_ids"`
}

func (s *MenuService) CreateCategory(ctx context.Context, ownerID, restaurantID uint, in CategoryInput) (*domain.Category, error) {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return nil, ErrInvalidCategory
	}
	category := &domain.Category{Name: name, RestaurantID: restaurantID}
	if err := s.categoryRepo.Create(category); err != nil {
		observability.RecordMenuOperation(ctx, "category", "create", "error")
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "category", "create", "ok")
	return category, nil
}

func (s *MenuService) ListCategories(ctx context.Context, ownerID, restaurantID uint) ([]domain.Category, error) {
	if _, err := s.ownedRestaurant(restaurantID, ownerID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByRestaurant(restaurantID)
}

func (s *MenuService) UpdateCategory(ctx context.Context, ownerID, restaurantID, categoryID uint, in CategoryInput) (*domain.Category, error) {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return nil, ErrInvalidCategory
	}
	if err := s.categoryRepo.Update(categoryID, restaurantID, map[string]any{"name": name}); err != nil {
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			observability.RecordMenuOperation(ctx, "category", "update", "error")
		}
		return nil, err
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "category", "update", "ok")
	return s.categoryRepo.FindByID(categoryID)
}

func (s *MenuService) DeleteCategory(ctx context.Context, ownerID, restaurantID, categoryID uint) error {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(categoryID, restaurantID); err != nil {
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			observability.RecordMenuOperation(ctx, "category", "delete", "error")
		}
		return err
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "category", "delete", "ok")
	return nil
}

func (s *MenuService) CreateDish(ctx context.Context, ownerID, restaurantID uint, in DishInput) (*domain.Dish, error) {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := validateDishInput(in); err != nil {
		return nil, err
	}
	dish := &domain.Dish{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		SpiceLevel:   strings.ToLower(strings.TrimSpace(in.SpiceLevel)),
		IsVeg:        in.IsVeg,
		RestaurantID: restaurantID,
	}
	if err := s.dishRepo.Create(dish, in.CategoryIDs); err != nil {
		observability.RecordMenuOperation(ctx, "dish", "create", "error")
		return nil, fmt.Errorf("create dish: %w", err)
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "dish", "create", "ok")
	return s.dishByID(ctx, dish.ID)
}

func (s *MenuService) ListDishes(ctx context.Context, ownerID, restaurantID uint, page repository.PageRequest) (repository.PageResult[domain.Dish], error) {
	if _, err := s.ownedRestaurant(restaurantID, ownerID); err != nil {
		return repository.PageResult[domain.Dish]{}, err
	}
	result, err := s.dishRepo.ListPaged(restaurantID, page)
	if err != nil {
		return repository.PageResult[domain.Dish]{}, err
	}
	for i := range result.Items {
		s.refreshDishImage(ctx, &result.Items[i])
	}
	return result, nil
}

type DishUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
	SpiceLevel  *string  `json:"spice_level"`
	IsVeg       *bool    `json:"is_veg"`
	CategoryIDs []uint   `json:"category_ids"`
}

func (s *MenuService) UpdateDish(ctx context.Context, ownerID, restaurantID, dishID uint, in DishUpdate) (*domain.Dish, error) {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 120 {
			return nil, ErrInvalidDish
		}
		updates["name"] = name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if len(desc) > 500 {
			return nil, ErrInvalidDish
		}
		updates["description"] = desc
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, ErrInvalidDish
		}
		updates["price"] = *in.Price
	}
	if in.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.SpiceLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*in.SpiceLevel))
		if _, ok := validSpiceLevels[level]; !ok {
			return nil, ErrInvalidDish
		}
		updates["spice_level"] = level
	}
	if in.IsVeg != nil {
		updates["is_veg"] = *in.IsVeg
	}
	if err := s.dishRepo.Update(dishID, restaurantID, updates, in.CategoryIDs); err != nil {
		if !errors.Is(err, repository.ErrDishNotFound) {
			observability.RecordMenuOperation(ctx, "dish", "update", "error")
		}
		return nil, err
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "dish", "update", "ok")
	return s.dishByID(ctx, dishID)
}

func (s *MenuService) DeleteDish(ctx context.Context, ownerID, restaurantID, dishID uint) error {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return err
	}
	if err := s.dishRepo.Delete(dishID, restaurantID); err != nil {
		if !errors.Is(err, repository.ErrDishNotFound) {
			observability.RecordMenuOperation(ctx, "dish", "delete", "error")
		}
		return err
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "dish", "delete", "ok")
	return nil
}

// SetDishImage records the stored object key and serving URL for a dish.
func (s *MenuService) SetDishImage(ctx context.Context, ownerID, restaurantID, dishID uint, imageKey, imageURL string) (*domain.Dish, error) {
	restaurant, err := s.ownedRestaurant(restaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"image_key": imageKey, "image_url": imageURL}
	if err := s.dishRepo.Update(dishID, restaurantID, updates, nil); err != nil {
		if !errors.Is(err, repository.ErrDishNotFound) {
			observability.RecordMenuOperation(ctx, "dish", "set_image", "error")
		}
		return nil, err
	}
	s.invalidateMenu(ctx, restaurant.PublicID)
	observability.RecordMenuOperation(ctx, "dish", "set_image", "ok")
	return s.dishByID(ctx, dishID)
}

// PublicMenuView is the read-only menu served to diners. It carries no
// owner or internal identifiers beyond the public ID itself.
type PublicMenuView struct {
	PublicID      string               `json:"public_id"`
	Name          string               `json:"name"`
	Location      string               `json:"location,omitempty"`
	Categories    []PublicCategoryView `json:"categories"`
	Uncategorized []PublicDishView     `json:"uncategorized,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

type PublicCategoryView struct {
	Name   string           `json:"name"`
	Dishes []PublicDishView `json:"dishes"`
}

type PublicDishView struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	SpiceLevel  string  `json:"spice_level,omitempty"`
	IsVeg       bool    `json:"is_veg"`
}

// PublicMenu renders the menu for a restaurant's public ID. Lookups go
// through the cache; concurrent rebuilds of the same menu are collapsed so
// a cache miss under load hits the database once.
func (s *MenuService) PublicMenu(ctx context.Context, publicID string) (*PublicMenuView, error) {
	start := time.Now()

	if payload, ok, err := s.menuCache.Get(ctx, publicID); err == nil && ok {
		var view PublicMenuView
		if err := json.Unmarshal(payload, &view); err == nil {
			observability.RecordMenuCacheEvent(ctx, "hit")
			observability.RecordPublicMenuDuration(ctx, "hit", time.Since(start))
			return &view, nil
		}
		observability.RecordMenuCacheEvent(ctx, "decode_error")
	} else if err != nil {
		observability.RecordMenuCacheEvent(ctx, "get_error")
	} else {
		observability.RecordMenuCacheEvent(ctx, "miss")
	}

	result, err, _ := s.rebuilds.Do(publicID, func() (any, error) {
		return s.buildPublicMenu(ctx, publicID)
	})
	if err != nil {
		observability.RecordPublicMenuDuration(ctx, "error", time.Since(start))
		return nil, err
	}
	view := result.(*PublicMenuView)

	if payload, err := json.Marshal(view); err == nil {
		if err := s.menuCache.Set(ctx, publicID, payload, s.cfg.MenuCacheTTL); err != nil {
			observability.RecordMenuCacheEvent(ctx, "set_error")
		}
	}
	observability.RecordPublicMenuDuration(ctx, "rebuilt", time.Since(start))
	return view, nil
}

func (s *MenuService) buildPublicMenu(ctx context.Context, publicID string) (*PublicMenuView, error) {
	restaurant, err := s.restaurantRepo.FindByPublicID(publicID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByRestaurant(restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	dishes, err := s.dishRepo.ListByRestaurant(restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}

	categorized := make(map[uint]bool, len(dishes))
	byCategory := make(map[uint][]PublicDishView, len(categories))
	for _, dish := range dishes {
		view := s.publicDishView(ctx, dish)
		for _, cat := range dish.Categories {
			byCategory[cat.ID] = append(byCategory[cat.ID], view)
			categorized[dish.ID] = true
		}
	}

	menu := &PublicMenuView{
		PublicID:    restaurant.PublicID,
		Name:        restaurant.Name,
		Location:    restaurant.Location,
		Categories:  make([]PublicCategoryView, 0, len(categories)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, cat := range categories {
		menu.Categories = append(menu.Categories, PublicCategoryView{
			Name:   cat.Name,
			Dishes: byCategory[cat.ID],
		})
	}
	for _, dish := range dishes {
		if !categorized[dish.ID] {
			menu.Uncategorized = append(menu.Uncategorized, s.publicDishView(ctx, dish))
		}
	}
	return menu, nil
}

// refreshDishImage swaps the stored upload-time URL for a freshly presigned
// one. Presigned GET links expire, so every served payload re-signs from the
// object key; the stored URL is only a fallback when storage is unavailable.
func (s *MenuService) refreshDishImage(ctx context.Context, dish *domain.Dish) {
	if s.storage == nil || dish.ImageKey == "" {
		return
	}
	presigned, err := s.storage.DishImageURL(ctx, dish.ImageKey)
	if err != nil {
		observability.RecordMenuOperation(ctx, "dish", "presign_image", "error")
		return
	}
	dish.ImageURL = presigned
}

func (s *MenuService) dishByID(ctx context.Context, id uint) (*domain.Dish, error) {
	dish, err := s.dishRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	s.refreshDishImage(ctx, dish)
	return dish, nil
}

func (s *MenuService) publicDishView(ctx context.Context, dish domain.Dish) PublicDishView {
	s.refreshDishImage(ctx, &dish)
	return PublicDishView{
		Name:        dish.Name,
		Description: dish.Description,
		Price:       dish.Price,
		ImageURL:    dish.ImageURL,
		SpiceLevel:  dish.SpiceLevel,
		IsVeg:       dish.IsVeg,
	}
}

func (s *MenuService) ownedRestaurant(restaurantID, ownerID uint) (*domain.Restaurant, error) {
	restaurant, err := s.restaurantRepo.FindByID(restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return restaurant, nil
}

func (s *MenuService) invalidateMenu(ctx context.Context, publicID string) {
	if err := s.menuCache.Invalidate(ctx, publicID); err != nil {
		observability.RecordMenuCacheEvent(ctx, "invalidate_error")
	}
}

func validateDishInput(in DishInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return ErrInvalidDish
	}
	if len(strings.TrimSpace(in.Description)) > 500 {
		return ErrInvalidDish
	}
	if in.Price < 0 {
		return ErrInvalidDish
	}
	level := strings.ToLower(strings.TrimSpace(in.SpiceLevel))
	if _, ok := validSpiceLevels[level]; !ok {
		return ErrInvalidDish
	}
	return nil
}
