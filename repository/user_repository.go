package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/that-that/waldo/models"
)

// UserRepository is read-only: users are owned by the account system.
type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
