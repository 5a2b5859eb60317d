package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/that-that/waldo/models"
)

// SubmissionRepository is the persistence boundary for submissions.
type SubmissionRepository interface {
	Create(sub *models.Submission) error
	GetByID(id uuid.UUID) (*models.Submission, error)
	ListByOwner(ownerID uuid.UUID) ([]models.Submission, error)
	ExistsBySourceURL(url string) (bool, error)
	Count() (int64, error)
	// At returns the single submission landing at offset under the given
	// ordering, with its owner preloaded. Used by the review sampler.
	At(orderColumn string, descending bool, offset int) (*models.Submission, error)
	Save(sub *models.Submission) error
	SetParsed(id uuid.UUID) error
	Delete(id uuid.UUID) error
}

type SubmissionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &SubmissionRepositoryImpl{db: db}
}

func (r *SubmissionRepositoryImpl) Create(sub *models.Submission) error {
	return translate(r.db.Create(sub).Error)
}

func (r *SubmissionRepositoryImpl) GetByID(id uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *SubmissionRepositoryImpl) ListByOwner(ownerID uuid.UUID) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&subs).Error
	return subs, translate(err)
}

func (r *SubmissionRepositoryImpl) ExistsBySourceURL(url string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).Where("source_url = ?", url).Count(&count).Error
	return count > 0, translate(err)
}

func (r *SubmissionRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).Count(&count).Error
	return count, translate(err)
}

// sampleColumns guards the interpolated ORDER BY below. Only these columns
// are eligible sort keys for sampling.
var sampleColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"source_url": true,
}

func (r *SubmissionRepositoryImpl) At(orderColumn string, descending bool, offset int) (*models.Submission, error) {
	if !sampleColumns[orderColumn] {
		return nil, fmt.Errorf("ineligible sample column %q", orderColumn)
	}
	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	var sub models.Submission
	err := r.db.Preload("Owner").
		Order(fmt.Sprintf("%s %s", orderColumn, direction)).
		Offset(offset).
		Take(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

func (r *SubmissionRepositoryImpl) Save(sub *models.Submission) error {
	return translate(r.db.Save(sub).Error)
}

func (r *SubmissionRepositoryImpl) SetParsed(id uuid.UUID) error {
	return translate(r.db.Model(&models.Submission{}).Where("id = ?", id).Update("is_parsed", true).Error)
}

func (r *SubmissionRepositoryImpl) Delete(id uuid.UUID) error {
	// Clips and votes go with it via the FK cascades set up in migration.
	return translate(r.db.Delete(&models.Submission{}, "id = ?", id).Error)
}
