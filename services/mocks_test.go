package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/repository"
)

// fakeSubmissionRepo is an in-memory stand-in for the gorm repository.
type fakeSubmissionRepo struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*models.Submission
	owners map[uuid.UUID]*models.User

	createErr error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{
		subs:   make(map[uuid.UUID]*models.Submission),
		owners: make(map[uuid.UUID]*models.User),
	}
}

func (f *fakeSubmissionRepo) Create(sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.subs {
		if existing.SourceURL == sub.SourceURL {
			return repository.ErrDuplicate
		}
	}
	clone := *sub
	f.subs[sub.ID] = &clone
	return nil
}

func (f *fakeSubmissionRepo) GetByID(id uuid.UUID) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *sub
	return &clone, nil
}

func (f *fakeSubmissionRepo) ListByOwner(ownerID uuid.UUID) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Submission
	for _, sub := range f.subs {
		if sub.OwnerID == ownerID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ExistsBySourceURL(url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		if sub.SourceURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionRepo) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.subs)), nil
}

func (f *fakeSubmissionRepo) At(orderColumn string, descending bool, offset int) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*models.Submission
	for _, sub := range f.subs {
		all = append(all, sub)
	}
	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch orderColumn {
		case "source_url":
			less = all[i].SourceURL < all[j].SourceURL
		case "updated_at":
			less = all[i].UpdatedAt.Before(all[j].UpdatedAt)
		default:
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		if descending {
			return !less
		}
		return less
	})
	if offset < 0 || offset >= len(all) {
		return nil, repository.ErrNotFound
	}
	clone := *all[offset]
	if owner, ok := f.owners[clone.OwnerID]; ok {
		ownerClone := *owner
		clone.Owner = &ownerClone
	}
	return &clone, nil
}

func (f *fakeSubmissionRepo) Save(sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *sub
	f.subs[sub.ID] = &clone
	return nil
}

func (f *fakeSubmissionRepo) SetParsed(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return repository.ErrNotFound
	}
	sub.IsParsed = true
	return nil
}

func (f *fakeSubmissionRepo) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
	return nil
}

// fakeClipRepo stores clips in memory.
type fakeClipRepo struct {
	mu    sync.Mutex
	clips []models.Clip
}

func (f *fakeClipRepo) Create(clip *models.Clip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clips = append(f.clips, *clip)
	return nil
}

func (f *fakeClipRepo) ListBySubmission(submissionID uuid.UUID) ([]models.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Clip
	for _, clip := range f.clips {
		if clip.SubmissionID == submissionID {
			out = append(out, clip)
		}
	}
	return out, nil
}

func (f *fakeClipRepo) ExistsByLabel(submissionID uuid.UUID, label string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, clip := range f.clips {
		if clip.SubmissionID == submissionID && clip.Label == label {
			return true, nil
		}
	}
	return false, nil
}

// fakeVoteRepo stores votes in memory.
type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []models.Vote

	createErr error
}

func (f *fakeVoteRepo) Create(vote *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) Save(vote *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.votes {
		if f.votes[i].ID == vote.ID {
			f.votes[i] = *vote
			return nil
		}
	}
	f.votes = append(f.votes, *vote)
	return nil
}

func (f *fakeVoteRepo) GetByReviewer(submissionID, reviewerID uuid.UUID) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.votes) - 1; i >= 0; i-- {
		if f.votes[i].SubmissionID == submissionID && f.votes[i].ReviewerID == reviewerID {
			clone := f.votes[i]
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeVoteRepo) CountBySubmission(submissionID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, vote := range f.votes {
		if vote.SubmissionID == submissionID {
			count++
		}
	}
	return count, nil
}

// fakeMetadataClient returns canned metadata, janhq mock style.
type fakeMetadataClient struct {
	FetchFunc func(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

func (f *fakeMetadataClient) Fetch(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx, videoURL)
	}
	return &VideoMetadata{Formats: []Format{{Itag: 22, URL: "http://cdn.example/22"}}}, nil
}

// fakeScheduler records scheduled jobs.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledJob
	err       error
}

type scheduledJob struct {
	submission  models.Submission
	downloadURL string
}

func (f *fakeScheduler) Schedule(sub *models.Submission, downloadURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, scheduledJob{submission: *sub, downloadURL: downloadURL})
	return nil
}
