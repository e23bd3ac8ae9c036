package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kodechat/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

// GetOrCreateByEmail resolves the user record for an identity-provider profile,
// creating it on first sign-in. Uses the store's upsert primitive so concurrent
// first sign-ins of the same email yield a single row.
func (r *UserRepository) GetOrCreateByEmail(email, name string) (*model.User, error) {
	user := model.User{Email: email, Name: name}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("upsert user failed: %w", err)
	}
	// On conflict the insert is a no-op and leaves ID unset; reload by email either way
	// so the caller always sees the stored row.
	var stored model.User
	if err := r.db.Where("email = ?", email).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load upserted user failed: %w", err)
	}
	return &stored, nil
}
