package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/that-that/waldo/models"
)

// State is where a job currently is in its lifecycle.
type State string

const (
	StatePending     State = "pending"
	StateDownloading State = "downloading"
	StateExtracting  State = "extracting"
	StateCollecting  State = "collecting"
	StateFinalized   State = "finalized"
	StateFailed      State = "failed"
)

// Job tracks one submission's download-and-extract run. It is a value with
// explicit state, owned by the orchestrator; completion is observable
// through State and Err rather than an ambient side effect.
type Job struct {
	SubmissionID uuid.UUID
	Category     models.Category
	DownloadURL  string

	orch *Orchestrator

	mu    sync.Mutex
	state State
	err   error
}

// ID satisfies worker.Job. One job per submission, so the submission id
// doubles as the job id.
func (j *Job) ID() string {
	return j.SubmissionID.String()
}

// Execute satisfies worker.Job.
func (j *Job) Execute() error {
	return j.orch.run(j)
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err returns the failure cause for a job in the failed state.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	j.state = StateFailed
	j.err = err
	j.mu.Unlock()
}
