package database

import (
	"github.com/platemenu/platemenu/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Passcode{},
		&domain.Restaurant{},
		&domain.Category{},
		&domain.Dish{},
	)
}
