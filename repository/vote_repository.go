package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/that-that/waldo/models"
)

// VoteRepository records reviewer judgments. Votes are append-only unless
// the single-vote-per-reviewer policy is on, in which case a reviewer's
// existing vote may be looked up and replaced.
type VoteRepository interface {
	Create(vote *models.Vote) error
	Save(vote *models.Vote) error
	GetByReviewer(submissionID, reviewerID uuid.UUID) (*models.Vote, error)
	CountBySubmission(submissionID uuid.UUID) (int64, error)
}

type VoteRepositoryImpl struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &VoteRepositoryImpl{db: db}
}

func (r *VoteRepositoryImpl) Create(vote *models.Vote) error {
	return translate(r.db.Create(vote).Error)
}

func (r *VoteRepositoryImpl) Save(vote *models.Vote) error {
	return translate(r.db.Save(vote).Error)
}

func (r *VoteRepositoryImpl) GetByReviewer(submissionID, reviewerID uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.Where("submission_id = ? AND reviewer_id = ?", submissionID, reviewerID).
		Order("created_at DESC").
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (r *VoteRepositoryImpl) CountBySubmission(submissionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).Where("submission_id = ?", submissionID).Count(&count).Error
	return count, translate(err)
}
