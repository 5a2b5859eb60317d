package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/permissions"
	"github.com/that-that/waldo/repository"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestSubmissionService(t *testing.T) (*SubmissionService, *fakeSubmissionRepo, *fakeClipRepo, *fakeScheduler) {
	t.Helper()
	subs := newFakeSubmissionRepo()
	clips := &fakeClipRepo{}
	scheduler := &fakeScheduler{}
	svc := NewSubmissionService(subs, clips, &fakeMetadataClient{}, scheduler, t.TempDir(), testLogger())
	return svc, subs, clips, scheduler
}

func baseActor() permissions.Actor {
	return permissions.Actor{ID: uuid.New(), Role: models.RoleBase}
}

func TestSubmitCreatesAndSchedules(t *testing.T) {
	svc, _, _, scheduler := newTestSubmissionService(t)
	actor := baseActor()

	sub, err := svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	assert.Equal(t, actor.ID, sub.OwnerID)
	assert.Equal(t, "22", sub.SelectedEncoding)
	assert.False(t, sub.IsAnalyzed)
	assert.False(t, sub.IsParsed)

	require.Len(t, scheduler.scheduled, 1)
	assert.Equal(t, sub.ID, scheduler.scheduled[0].submission.ID)
	assert.Equal(t, "http://cdn.example/22", scheduler.scheduled[0].downloadURL)
}

func TestSubmitDuplicateSource(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	actor := baseActor()

	_, err := svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	// The category does not matter; the URL alone makes it a duplicate.
	_, err = svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryCSG)
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

func TestSubmitDuplicateRaceTranslatesConstraintError(t *testing.T) {
	svc, subs, _, _ := newTestSubmissionService(t)
	subs.createErr = repository.ErrDuplicate

	_, err := svc.Submit(context.Background(), baseActor(), "https://clips.example/a", models.CategoryVAL)
	assert.ErrorIs(t, err, ErrDuplicateSource)
}

func TestSubmitDedupScopedToExistingRecords(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	actor := baseActor()

	sub, err := svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryCSG)
	require.ErrorIs(t, err, ErrDuplicateSource)

	require.NoError(t, svc.Delete(actor, sub.ID))

	// Dedup looks at current records, not history.
	_, err = svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryVAL)
	assert.NoError(t, err)
}

func TestSubmitMetadataUnavailable(t *testing.T) {
	subs := newFakeSubmissionRepo()
	metadata := &fakeMetadataClient{
		FetchFunc: func(ctx context.Context, videoURL string) (*VideoMetadata, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewSubmissionService(subs, &fakeClipRepo{}, metadata, &fakeScheduler{}, t.TempDir(), testLogger())

	_, err := svc.Submit(context.Background(), baseActor(), "https://clips.example/a", models.CategoryVAL)
	assert.ErrorIs(t, err, ErrMetadataUnavailable)

	count, _ := subs.Count()
	assert.Zero(t, count, "nothing should be persisted")
}

func TestSubmitNoAcceptableEncoding(t *testing.T) {
	subs := newFakeSubmissionRepo()
	scheduler := &fakeScheduler{}
	metadata := &fakeMetadataClient{
		FetchFunc: func(ctx context.Context, videoURL string) (*VideoMetadata, error) {
			return &VideoMetadata{Formats: []Format{{Itag: 251}}}, nil
		},
	}
	svc := NewSubmissionService(subs, &fakeClipRepo{}, metadata, scheduler, t.TempDir(), testLogger())

	_, err := svc.Submit(context.Background(), baseActor(), "https://clips.example/a", models.CategoryVAL)
	assert.ErrorIs(t, err, ErrNoAcceptableEncoding)

	count, _ := subs.Count()
	assert.Zero(t, count, "nothing should be persisted")
	assert.Empty(t, scheduler.scheduled)
}

func TestSubmitBlacklistedDenied(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	actor := permissions.Actor{ID: uuid.New(), Role: models.RoleAdministrator, Blacklisted: true}

	_, err := svc.Submit(context.Background(), actor, "https://clips.example/a", models.CategoryVAL)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized)
}

func TestGetOwnerScoped(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	got, err := svc.Get(owner, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)

	_, err = svc.Get(baseActor(), sub.ID)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized)

	moderator := permissions.Actor{ID: uuid.New(), Role: models.RoleModerator}
	_, err = svc.Get(moderator, sub.ID)
	assert.NoError(t, err)
}

func TestGetMissingSubmission(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	_, err := svc.Get(baseActor(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCategoryByOwner(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	updated, err := svc.Update(owner, sub.ID, models.CategoryCSG, false)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCSG, updated.Category)
	assert.False(t, updated.IsAnalyzed)
}

func TestUpdateCategoryByStrangerDenied(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	_, err = svc.Update(baseActor(), sub.ID, models.CategoryCSG, false)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized)
}

func TestUpdateAnalyzedNeedsModerator(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	// Even the owner may not certify analysis completion.
	_, err = svc.Update(owner, sub.ID, sub.Category, true)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized)

	moderator := permissions.Actor{ID: uuid.New(), Role: models.RoleModerator}
	updated, err := svc.Update(moderator, sub.ID, sub.Category, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAnalyzed)

	// Flipping back is equally gated.
	_, err = svc.Update(owner, sub.ID, sub.Category, false)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized)
}

func TestUpdateUnknownCategory(t *testing.T) {
	svc, _, _, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	_, err = svc.Update(owner, sub.ID, models.Category("PONG"), false)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestDeleteOwnerScopedAndRemovesClipDir(t *testing.T) {
	subs := newFakeSubmissionRepo()
	clipRoot := t.TempDir()
	svc := NewSubmissionService(subs, &fakeClipRepo{}, &fakeMetadataClient{}, &fakeScheduler{}, clipRoot, testLogger())
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	clipDir := filepath.Join(clipRoot, sub.ID.String(), uuid.NewString())
	require.NoError(t, os.MkdirAll(clipDir, 0o755))

	require.ErrorIs(t, svc.Delete(baseActor(), sub.ID), permissions.ErrUnauthorized)
	require.NoError(t, svc.Delete(owner, sub.ID))

	_, err = svc.Get(owner, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = os.Stat(filepath.Join(clipRoot, sub.ID.String()))
	assert.True(t, os.IsNotExist(err), "clip storage should be removed")
}

func TestListClipsModeratorOnly(t *testing.T) {
	svc, _, clips, _ := newTestSubmissionService(t)
	owner := baseActor()

	sub, err := svc.Submit(context.Background(), owner, "https://clips.example/a", models.CategoryVAL)
	require.NoError(t, err)

	clip := models.Clip{ID: uuid.New(), SubmissionID: sub.ID, Label: "segment_0", StorageRef: sub.ID.String() + "/x"}
	require.NoError(t, clips.Create(&clip))

	_, err = svc.ListClips(owner, sub.ID)
	assert.ErrorIs(t, err, permissions.ErrUnauthorized, "even the owner may not list clips")

	moderator := permissions.Actor{ID: uuid.New(), Role: models.RoleModerator}
	got, err := svc.ListClips(moderator, sub.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, clip.ID, got[0].ID)

	_, err = svc.ListClips(moderator, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
