package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/that-that/waldo/internal/analyzer"
	"github.com/that-that/waldo/internal/events"
	"github.com/that-that/waldo/internal/worker"
	"github.com/that-that/waldo/models"
	"github.com/that-that/waldo/repository"
)

// Orchestrator turns a downloaded video into durable clip artifacts:
// download, run the analyzer, collect its segment directories into
// per-submission clip storage, then mark the submission parsed. Collecting
// and finalizing are idempotent, so an interrupted job can be re-run
// without duplicating clips.
type Orchestrator struct {
	Subs       repository.SubmissionRepository
	Clips      repository.ClipRepository
	Downloader Downloader
	Analyzer   analyzer.Runner
	Events     *events.Publisher
	Log        *logrus.Logger

	// ClipRoot is the durable storage root; clips live at
	// {ClipRoot}/{submissionID}/{clipID}. WorkDir holds per-job transient
	// state and is cleaned up when a job leaves the pipeline.
	ClipRoot string
	WorkDir  string

	dispatcher *worker.Dispatcher
}

func NewOrchestrator(subs repository.SubmissionRepository, clips repository.ClipRepository, downloader Downloader, runner analyzer.Runner, publisher *events.Publisher, dispatcher *worker.Dispatcher, clipRoot, workDir string, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		Subs:       subs,
		Clips:      clips,
		Downloader: downloader,
		Analyzer:   runner,
		Events:     publisher,
		Log:        log,
		ClipRoot:   clipRoot,
		WorkDir:    workDir,
		dispatcher: dispatcher,
	}
}

// NewJob builds the tracked job for one submission.
func (o *Orchestrator) NewJob(sub *models.Submission, downloadURL string) *Job {
	return &Job{
		SubmissionID: sub.ID,
		Category:     sub.Category,
		DownloadURL:  downloadURL,
		orch:         o,
		state:        StatePending,
	}
}

// Schedule satisfies services.ExtractionScheduler: it enqueues the job and
// returns before any of the work happens.
func (o *Orchestrator) Schedule(sub *models.Submission, downloadURL string) error {
	return o.dispatcher.Submit(o.NewJob(sub, downloadURL))
}

// run drives one job through the state machine. At most one job exists per
// submission: duplicate source URLs are rejected at submission time.
func (o *Orchestrator) run(j *Job) error {
	ctx := context.Background()
	log := o.Log.WithField("submission_id", j.SubmissionID)

	workDir := filepath.Join(o.WorkDir, "extract-"+j.SubmissionID.String())
	inputFile := filepath.Join(workDir, "source.mp4")
	outputDir := filepath.Join(workDir, "segments")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return o.failJob(j, log, workDir, "downloading", fmt.Errorf("creating work dir: %w", err))
	}

	j.setState(StateDownloading)
	if err := o.Downloader.Fetch(ctx, j.DownloadURL, inputFile); err != nil {
		return o.failJob(j, log, workDir, "downloading", err)
	}

	j.setState(StateExtracting)
	log.Info("Analyzer started")
	if err := o.Analyzer.Run(ctx, inputFile, outputDir, string(j.Category)); err != nil {
		return o.failJob(j, log, workDir, "extracting", err)
	}

	j.setState(StateCollecting)
	created, err := o.collect(j.SubmissionID, outputDir, log)
	if err != nil {
		return o.failJob(j, log, workDir, "collecting", err)
	}

	// Finalize: transient storage goes away even when the analyzer found
	// nothing, and the parsed flag is set exactly once.
	o.cleanup(workDir, log)
	if err := o.Subs.SetParsed(j.SubmissionID); err != nil {
		return o.failJob(j, log, "", "finalizing", fmt.Errorf("setting parsed flag: %w", err))
	}

	j.setState(StateFinalized)
	o.Events.SubmissionFinalized(j.SubmissionID, created)
	log.WithField("clips", created).Info("Extraction finalized")
	return nil
}

// collect enumerates the analyzer's segment directories and materializes
// each as a clip. Zero segments is a no-op success. A segment that already
// has a clip record is skipped, which makes re-collection safe; a failed
// segment copy is logged and does not abort its siblings.
func (o *Orchestrator) collect(submissionID uuid.UUID, outputDir string, log *logrus.Entry) (int, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0, fmt.Errorf("enumerating segments: %w", err)
	}

	created := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		segLog := log.WithField("segment", label)

		exists, err := o.Clips.ExistsByLabel(submissionID, label)
		if err != nil {
			segLog.WithField("error", err.Error()).Error("Failed to check for existing clip, skipping segment")
			continue
		}
		if exists {
			segLog.Info("Segment already collected, skipping")
			continue
		}

		clipID := uuid.New()
		destDir := filepath.Join(o.ClipRoot, submissionID.String(), clipID.String())
		if err := copyDir(filepath.Join(outputDir, label), destDir); err != nil {
			segLog.WithField("error", err.Error()).Error("Segment copy failed, skipping segment")
			if rmErr := os.RemoveAll(destDir); rmErr != nil {
				segLog.WithField("error", rmErr.Error()).Warn("Failed to remove partial segment copy")
			}
			continue
		}

		clip := &models.Clip{
			ID:           clipID,
			SubmissionID: submissionID,
			Label:        label,
			StorageRef:   path.Join(submissionID.String(), clipID.String()),
		}
		if err := o.Clips.Create(clip); err != nil {
			segLog.WithField("error", err.Error()).Error("Failed to record clip, removing copy")
			if rmErr := os.RemoveAll(destDir); rmErr != nil {
				segLog.WithField("error", rmErr.Error()).Warn("Failed to remove unrecorded segment copy")
			}
			continue
		}

		created++
		segLog.WithField("clip_id", clipID).Info("Clip collected")
	}
	return created, nil
}

// failJob moves the job to failed, attempts cleanup, publishes the failure
// and hands the cause back to the worker for logging. The submission stays
// unparsed; recovery is a fresh submission or an operator replay.
func (o *Orchestrator) failJob(j *Job, log *logrus.Entry, workDir, stage string, cause error) error {
	j.fail(cause)
	if workDir != "" {
		o.cleanup(workDir, log)
	}
	o.Events.SubmissionFailed(j.SubmissionID, stage, cause)
	log.WithFields(logrus.Fields{"stage": stage, "error": cause.Error()}).Error("Extraction failed")
	return fmt.Errorf("%s: %w", stage, cause)
}

func (o *Orchestrator) cleanup(workDir string, log *logrus.Entry) {
	if err := os.RemoveAll(workDir); err != nil {
		log.WithFields(logrus.Fields{"dir": workDir, "error": err.Error()}).Warn("Failed to remove transient work dir")
	}
}
