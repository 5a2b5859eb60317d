package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/permissions"
	"github.com/that-that/waldo/repository"
)

// ExtractionScheduler enqueues the background download-and-extract job for
// a freshly created submission. Implemented by the pipeline orchestrator.
type ExtractionScheduler interface {
	Schedule(sub *models.Submission, downloadURL string) error
}

// SubmissionService owns the submission lifecycle: creation through the
// source resolver, permission-gated reads and updates, and deletion.
type SubmissionService struct {
	Subs      repository.SubmissionRepository
	Clips     repository.ClipRepository
	Metadata  MetadataClient
	Scheduler ExtractionScheduler
	ClipRoot  string
	Log       *logrus.Logger
}

func NewSubmissionService(subs repository.SubmissionRepository, clips repository.ClipRepository, metadata MetadataClient, scheduler ExtractionScheduler, clipRoot string, log *logrus.Logger) *SubmissionService {
	return &SubmissionService{
		Subs:      subs,
		Clips:     clips,
		Metadata:  metadata,
		Scheduler: scheduler,
		ClipRoot:  clipRoot,
		Log:       log,
	}
}

// Submit resolves a source URL into a new submission and schedules its
// extraction. The duplicate check runs before any remote fetch; the unique
// constraint on source_url backstops concurrent submits of the same URL.
func (s *SubmissionService) Submit(ctx context.Context, actor permissions.Actor, sourceURL string, category models.Category) (*models.Submission, error) {
	if err := permissions.Evaluate(actor, permissions.RoleAtLeast{Min: models.RoleBase}); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	exists, err := s.Subs.ExistsBySourceURL(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("checking for duplicate source: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSource
	}

	meta, err := s.Metadata.Fetch(ctx, sourceURL)
	if err != nil {
		s.Log.WithFields(logrus.Fields{"source_url": sourceURL, "error": err.Error()}).Warn("Metadata fetch failed")
		return nil, ErrMetadataUnavailable
	}

	format, err := SelectEncoding(meta.Formats)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &models.Submission{
		ID:               uuid.New(),
		OwnerID:          actor.ID,
		SourceURL:        sourceURL,
		SelectedEncoding: strconv.Itoa(format.Itag),
		Category:         category,
		IsAnalyzed:       false,
		IsParsed:         false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Subs.Create(sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSource
		}
		return nil, fmt.Errorf("persisting submission: %w", err)
	}

	if err := s.Scheduler.Schedule(sub, format.URL); err != nil {
		// The record stays; extraction can be replayed by an operator.
		s.Log.WithFields(logrus.Fields{"submission_id": sub.ID, "error": err.Error()}).Error("Failed to schedule extraction job")
		return nil, fmt.Errorf("scheduling extraction: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"owner_id":      actor.ID,
		"encoding":      sub.SelectedEncoding,
		"category":      category,
	}).Info("Submission created, extraction scheduled")
	return sub, nil
}

// Get returns one submission, owner-scoped.
func (s *SubmissionService) Get(actor permissions.Actor, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}
	if err := permissions.Evaluate(actor, permissions.IsOwner{OwnerID: sub.OwnerID}); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListOwn returns the actor's submissions, newest first.
func (s *SubmissionService) ListOwn(actor permissions.Actor) ([]models.Submission, error) {
	if err := permissions.Evaluate(actor, permissions.RoleAtLeast{Min: models.RoleBase}); err != nil {
		return nil, err
	}
	return s.Subs.ListByOwner(actor.ID)
}

// Update changes a submission's category and analyzed flag. Correcting the
// category alone needs only ownership; flipping is_analyzed certifies
// analysis completion and needs moderator trust, even from the owner.
func (s *SubmissionService) Update(actor permissions.Actor, id uuid.UUID, category models.Category, isAnalyzed bool) (*models.Submission, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	sub, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}

	var req permissions.Requirement = permissions.IsOwner{OwnerID: sub.OwnerID}
	if isAnalyzed != sub.IsAnalyzed {
		req = permissions.RoleAtLeast{Min: models.RoleModerator}
	}
	if err := permissions.Evaluate(actor, req); err != nil {
		return nil, err
	}

	sub.Category = category
	sub.IsAnalyzed = isAnalyzed
	sub.UpdatedAt = time.Now()
	if err := s.Subs.Save(sub); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"submission_id": id,
		"actor_id":      actor.ID,
		"category":      category,
		"is_analyzed":   isAnalyzed,
	}).Info("Submission updated")
	return sub, nil
}

// Delete removes a submission; clips and votes cascade with it and the
// submission's durable clip directory is removed best-effort.
func (s *SubmissionService) Delete(actor permissions.Actor, id uuid.UUID) error {
	sub, err := s.getExisting(id)
	if err != nil {
		return err
	}
	if err := permissions.Evaluate(actor, permissions.IsOwner{OwnerID: sub.OwnerID}); err != nil {
		return err
	}
	if err := s.Subs.Delete(id); err != nil {
		return fmt.Errorf("deleting submission: %w", err)
	}

	clipDir := filepath.Join(s.ClipRoot, id.String())
	if err := os.RemoveAll(clipDir); err != nil {
		s.Log.WithFields(logrus.Fields{"submission_id": id, "dir": clipDir, "error": err.Error()}).Warn("Failed to remove clip storage directory")
	}

	s.Log.WithFields(logrus.Fields{"submission_id": id, "actor_id": actor.ID}).Info("Submission deleted")
	return nil
}

// ListClips returns a submission's clip records. Moderator-only.
func (s *SubmissionService) ListClips(actor permissions.Actor, id uuid.UUID) ([]models.Clip, error) {
	if err := permissions.Evaluate(actor, permissions.RoleAtLeast{Min: models.RoleModerator}); err != nil {
		return nil, err
	}
	if _, err := s.getExisting(id); err != nil {
		return nil, err
	}
	return s.Clips.ListBySubmission(id)
}

func (s *SubmissionService) getExisting(id uuid.UUID) (*models.Submission, error) {
	sub, err := s.Subs.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading submission: %w", err)
	}
	return sub, nil
}
