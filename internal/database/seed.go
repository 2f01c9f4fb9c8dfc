package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/domain"
)

type SeedReport struct {
	CreatedUsers       int  `json:"created_users"`
	CreatedRestaurants int  `json:"created_restaurants"`
	CreatedCategories  int  `json:"created_categories"`
	CreatedDishes      int  `json:"created_dishes"`
	Noop               bool `json:"noop"`
}

// Seed provisions a demo account with one restaurant and a small menu so a
// fresh environment has something to look at. Existing rows are left alone.
func Seed(db *gorm.DB, demoEmail string) (*SeedReport, error) {
	report := &SeedReport{}

	email := strings.TrimSpace(strings.ToLower(demoEmail))
	if email == "" {
		email = "demo@platemenu.dev"
	}

	user := domain.User{Email: email, Name: "Demo Owner"}
	res := db.Where("email = ?", email).FirstOrCreate(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("seed user: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		report.CreatedUsers++
	}

	restaurant := domain.Restaurant{
		PublicID: uuid.New().String(),
		Name:     "Demo Diner",
		Location: "Springfield",
		OwnerID:  user.ID,
	}
	res = db.Where("owner_id = ? AND name = ?", user.ID, restaurant.Name).FirstOrCreate(&restaurant)
	if res.Error != nil {
		return nil, fmt.Errorf("seed restaurant: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		report.CreatedRestaurants++
	}

	categories := map[string]*domain.Category{}
	for _, name := range []string{"Starters", "Mains", "Desserts"} {
		cat := domain.Category{Name: name, RestaurantID: restaurant.ID}
		res := db.Where("restaurant_id = ? AND name = ?", restaurant.ID, name).FirstOrCreate(&cat)
		if res.Error != nil {
			return nil, fmt.Errorf("seed category %q: %w", name, res.Error)
		}
		if res.RowsAffected > 0 {
			report.CreatedCategories++
		}
		categories[name] = &cat
	}

	dishes := []struct {
		dish     domain.Dish
		category string
	}{
		{domain.Dish{Name: "Tomato Soup", Description: "Slow-roasted tomatoes, basil oil", Price: 6.5, IsVeg: true, SpiceLevel: "mild"}, "Starters"},
		{domain.Dish{Name: "Grilled Paneer Skewers", Description: "Charred peppers, mint chutney", Price: 9.0, IsVeg: true, SpiceLevel: "medium"}, "Starters"},
		{domain.Dish{Name: "Smash Burger", Description: "Double patty, cheddar, house pickle", Price: 13.5, SpiceLevel: "mild"}, "Mains"},
		{domain.Dish{Name: "Chicken Vindaloo", Description: "Goan style, served with rice", Price: 14.0, SpiceLevel: "hot"}, "Mains"},
		{domain.Dish{Name: "Chocolate Torte", Description: "Flourless, sea salt", Price: 7.0, IsVeg: true}, "Desserts"},
	}
	for _, d := range dishes {
		dish := d.dish
		dish.RestaurantID = restaurant.ID
		res := db.Where("restaurant_id = ? AND name = ?", restaurant.ID, dish.Name).FirstOrCreate(&dish)
		if res.Error != nil {
			return nil, fmt.Errorf("seed dish %q: %w", dish.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			report.CreatedDishes++
			if cat := categories[d.category]; cat != nil {
				if err := db.Model(&dish).Association("Categories").Append(cat); err != nil {
					return nil, fmt.Errorf("link dish %q: %w", dish.Name, err)
				}
			}
		}
	}

	report.Noop = report.CreatedUsers == 0 && report.CreatedRestaurants == 0 &&
		report.CreatedCategories == 0 && report.CreatedDishes == 0
	return report, nil
}
