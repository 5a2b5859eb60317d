package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/permissions"
	"github.com/that-that/waldo/repository"
)

// ReviewItem is a sampled submission together with its owner's public
// display name, ready to show to a reviewer.
type ReviewItem struct {
	Submission models.Submission `json:"submission"`
	OwnerName  string            `json:"owner_name"`
}

// Columns eligible as sampling sort keys. The random key + direction +
// offset scheme is an intentionally approximate sample: once ordering ties
// exist it is not truly uniform, and already-analyzed submissions are not
// excluded.
var reviewSampleColumns = []string{"created_at", "updated_at", "source_url"}

// ReviewService hands random submissions to reviewers and records their
// votes.
type ReviewService struct {
	Subs  repository.SubmissionRepository
	Votes repository.VoteRepository
	// SingleVote makes a reviewer's repeat vote replace their previous
	// vote on the same submission instead of accumulating.
	SingleVote bool
	Log        *logrus.Logger

	randInt func(n int) int
}

func NewReviewService(subs repository.SubmissionRepository, votes repository.VoteRepository, singleVote bool, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		Subs:       subs,
		Votes:      votes,
		SingleVote: singleVote,
		Log:        log,
		randInt:    rand.Intn,
	}
}

// Next picks a pseudo-random submission for review.
func (s *ReviewService) Next(actor permissions.Actor) (*ReviewItem, error) {
	if err := permissions.Evaluate(actor, permissions.RoleAtLeast{Min: models.RoleBase}); err != nil {
		return nil, err
	}

	count, err := s.Subs.Count()
	if err != nil {
		return nil, fmt.Errorf("counting submissions: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	offset := s.randInt(int(count))
	column := reviewSampleColumns[s.randInt(len(reviewSampleColumns))]
	descending := s.randInt(2) == 1

	sub, err := s.Subs.At(column, descending, offset)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Collection shrank between count and fetch.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("sampling submission: %w", err)
	}

	item := &ReviewItem{Submission: *sub}
	if sub.Owner != nil {
		item.OwnerName = sub.Owner.Username
	}
	item.Submission.Owner = nil
	return item, nil
}

// CastVote records a reviewer's judgment on a submission. Any
// authenticated, non-blacklisted reviewer may vote; votes never mutate the
// submission itself.
func (s *ReviewService) CastVote(actor permissions.Actor, submissionID uuid.UUID, proposed models.Category, isCorrect bool) (*models.Vote, error) {
	if err := permissions.Evaluate(actor, permissions.RoleAtLeast{Min: models.RoleBase}); err != nil {
		return nil, err
	}
	if !proposed.Valid() {
		return nil, ErrInvalidCategory
	}
	if _, err := s.Subs.GetByID(submissionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading submission: %w", err)
	}

	if s.SingleVote {
		existing, err := s.Votes.GetByReviewer(submissionID, actor.ID)
		switch {
		case err == nil:
			existing.IsCorrectCategory = isCorrect
			existing.ProposedCategory = proposed
			if err := s.Votes.Save(existing); err != nil {
				return nil, fmt.Errorf("replacing vote: %w", err)
			}
			s.Log.WithFields(logrus.Fields{"submission_id": submissionID, "reviewer_id": actor.ID}).Info("Vote replaced")
			return existing, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("looking up prior vote: %w", err)
		}
	}

	vote := &models.Vote{
		ID:                uuid.New(),
		SubmissionID:      submissionID,
		ReviewerID:        actor.ID,
		IsCorrectCategory: isCorrect,
		ProposedCategory:  proposed,
		CreatedAt:         time.Now(),
	}
	if err := s.Votes.Create(vote); err != nil {
		return nil, fmt.Errorf("recording vote: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"submission_id": submissionID,
		"reviewer_id":   actor.ID,
		"is_correct":    isCorrect,
		"proposed":      proposed,
	}).Info("Vote recorded")
	return vote, nil
}
