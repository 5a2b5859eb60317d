package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/that-that/waldo/models"
)

// ClipRepository persists the durable clip records the extraction
// pipeline produces.
type ClipRepository interface {
	Create(clip *models.Clip) error
	ListBySubmission(submissionID uuid.UUID) ([]models.Clip, error)
	ExistsByLabel(submissionID uuid.UUID, label string) (bool, error)
}

type ClipRepositoryImpl struct {
	db *gorm.DB
}

func NewClipRepository(db *gorm.DB) ClipRepository {
	return &ClipRepositoryImpl{db: db}
}

func (r *ClipRepositoryImpl) Create(clip *models.Clip) error {
	return translate(r.db.Create(clip).Error)
}

func (r *ClipRepositoryImpl) ListBySubmission(submissionID uuid.UUID) ([]models.Clip, error) {
	var clips []models.Clip
	err := r.db.Where("submission_id = ?", submissionID).Order("created_at").Find(&clips).Error
	return clips, translate(err)
}

func (r *ClipRepositoryImpl) ExistsByLabel(submissionID uuid.UUID, label string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Clip{}).
		Where("submission_id = ? AND label = ?", submissionID, label).
		Count(&count).Error
	return count > 0, translate(err)
}
