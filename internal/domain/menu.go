package domain

import "time"

type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	RestaurantID uint      `gorm:"not null;index:idx_categories_restaurant" json:"restaurant_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Dishes       []Dish    `gorm:"many2many:dish_categories" json:"dishes,omitempty"`
}

type Dish struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Description  string     `gorm:"size:500" json:"description"`
	Price        float64    `gorm:"not null" json:"price"`
	ImageKey     string     `gorm:"size:512" json:"-"`
	ImageURL     string     `gorm:"size:1024" json:"image_url,omitempty"`
	SpiceLevel   string     `gorm:"size:32" json:"spice_level,omitempty"`
	IsVeg        bool       `gorm:"not null;default:false" json:"is_veg"`
	RestaurantID uint       `gorm:"not null;index:idx_dishes_restaurant" json:"restaurant_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Categories   []Category `gorm:"many2many:dish_categories" json:"categories,omitempty"`
}
