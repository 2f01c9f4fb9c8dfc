package service

import (
	"errors"
	"strings"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/repository"
)

var ErrInvalidProfile = errors.New("invalid profile fields")

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(id uint) (*domain.User, error) {
	return s.userRepo.FindByID(id)
}

type ProfileUpdate struct {
	Name    *string `json:"name"`
	Country *string `json:"country"`
}

func (s *UserService) UpdateProfile(id uint, update ProfileUpdate) (*domain.User, error) {
	updates := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || len(name) > 120 {
			return nil, ErrInvalidProfile
		}
		updates["name"] = name
	}
	if update.Country != nil {
		country := strings.TrimSpace(*update.Country)
		if len(country) > 80 {
			return nil, ErrInvalidProfile
		}
		updates["country"] = country
	}
	if len(updates) > 0 {
		if err := s.userRepo.Update(id, updates); err != nil {
			return nil, err
		}
	}
	return s.userRepo.FindByID(id)
}
