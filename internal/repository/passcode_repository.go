package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/observability"
)

type PasscodeRepository interface {
	Create(passcode *domain.Passcode) error
	// ConsumeMatching atomically deletes the newest unexpired passcode
	// matching email+code and reports whether one was consumed. A single
	// conditional delete means two racing verifications cannot both
	// succeed on the same code.
	ConsumeMatching(email, code string, now time.Time) (bool, error)
	DeleteExpired(before time.Time) (int64, error)
}

type GormPasscodeRepository struct{ db *gorm.DB }

func NewPasscodeRepository(db *gorm.DB) PasscodeRepository {
	return &GormPasscodeRepository{db: db}
}

func (r *GormPasscodeRepository) Create(passcode *domain.Passcode) error {
	if err := r.db.Create(passcode).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "passcode", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "passcode", "create", "success")
	return nil
}

func (r *GormPasscodeRepository) ConsumeMatching(email, code string, now time.Time) (bool, error) {
	newest := r.db.Model(&domain.Passcode{}).
		Select("id").
		Where("email = ? AND code = ? AND expires_at > ?", email, code, now).
		Order("created_at DESC").
		Limit(1)
	res := r.db.Where("id = (?)", newest).Delete(&domain.Passcode{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "passcode", "consume", "error")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "passcode", "consume", "not_found")
		return false, nil
	}
	observability.RecordRepositoryOperation(context.Background(), "passcode", "consume", "success")
	return true, nil
}

func (r *GormPasscodeRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", before).Delete(&domain.Passcode{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "passcode", "delete_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "passcode", "delete_expired", "success")
	return res.RowsAffected, nil
}
