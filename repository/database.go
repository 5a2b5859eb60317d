package repository

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/that-that/waldo/models"
)

// ErrNotFound is returned when a record does not exist. Repositories
// translate the driver's not-found error so callers never depend on gorm.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// InitDB opens the postgres connection and migrates the schema.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Submission{}, &models.Clip{}, &models.Vote{}); err != nil {
		return nil, err
	}
	return db, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
