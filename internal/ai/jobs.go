package ai

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/db/controller/document"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/controller/requirement"
)

// JobKind identifies what a job computes.
type JobKind string

const (
	// JobAutoMap proposes requirement-to-document mappings.
	JobAutoMap JobKind = "automap"
	// JobAssess reviews the coverage of one existing mapping.
	JobAssess JobKind = "assess"
)

// JobState is the lifecycle state of a job.
type JobState string

const (
	// JobRunning means the completion call is in flight.
	JobRunning JobState = "running"
	// JobComplete means the job finished and its result is available.
	JobComplete JobState = "complete"
	// JobFailed means the job ended with an error.
	JobFailed JobState = "failed"
	// JobCancelled means the job was cancelled before completing.
	JobCancelled JobState = "cancelled"
)

// ErrJobNotFound is returned when polling or cancelling an unknown job id.
var ErrJobNotFound = errors.New("job not found")

// Job is a point-in-time snapshot of an asynchronous AI job. Clients
// persist the ID locally and poll until the state is terminal.
type Job struct {
	ID    string   `json:"id"`
	Kind  JobKind  `json:"kind"`
	State JobState `json:"state"`
	Error string   `json:"error,omitempty"`

	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Assessment  *Assessment  `json:"assessment,omitempty"`

	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type jobEntry struct {
	job    Job
	cancel context.CancelFunc
}

// Runner owns the in-memory job registry and executes jobs against one
// provider. Jobs do not survive a restart; a client polling a lost id
// gets ErrJobNotFound and starts over.
type Runner struct {
	mu       sync.Mutex
	jobs     map[string]*jobEntry
	provider Provider

	maxTokens int
}

// NewRunner creates a Runner on top of a provider.
func NewRunner(provider Provider, maxTokens int) *Runner {
	return &Runner{
		jobs:      make(map[string]*jobEntry),
		provider:  provider,
		maxTokens: maxTokens,
	}
}

// StartAutoMap launches an auto-map job over the full requirement and
// document catalogues and returns its id immediately.
func (r *Runner) StartAutoMap(db *gorm.DB) (string, error) {
	requirements, err := requirement.List(db, requirement.Filter{})
	if err != nil {
		return "", err
	}

	documents, err := document.List(db, document.Filter{})
	if err != nil {
		return "", err
	}

	req := BuildAutoMapPrompt(requirements, documents)

	return r.start(JobAutoMap, func(ctx context.Context, job *Job) error {
		resp, err := r.complete(ctx, req)
		if err != nil {
			return err
		}

		suggestions, err := ParseSuggestions(resp.Content)
		if err != nil {
			return err
		}

		job.Suggestions = suggestions

		return nil
	})
}

// StartAssess launches a coverage review of one mapping and returns its
// id immediately.
func (r *Runner) StartAssess(db *gorm.DB, mappingID uint) (string, error) {
	m, err := mapping.Get(db, mappingID)
	if err != nil {
		return "", err
	}

	if !m.HasDocument() {
		return "", errors.New("mapping has no document to assess")
	}

	req, err := requirement.Get(db, m.RequirementID)
	if err != nil {
		return "", err
	}

	doc, err := document.Get(db, *m.DocumentID)
	if err != nil {
		return "", err
	}

	prompt := BuildAssessPrompt(req, doc)

	return r.start(JobAssess, func(ctx context.Context, job *Job) error {
		resp, err := r.complete(ctx, prompt)
		if err != nil {
			return err
		}

		assessment, err := ParseAssessment(resp.Content)
		if err != nil {
			return err
		}

		job.Assessment = assessment

		return nil
	})
}

func (r *Runner) complete(ctx context.Context, req *Request) (*Response, error) {
	if req.MaxTokens == 0 {
		req.MaxTokens = r.maxTokens
	}

	return r.provider.Complete(ctx, req)
}

// start registers a job and runs fn in a goroutine. fn writes its result
// into the job snapshot it is handed; the runner owns state transitions.
func (r *Runner) start(kind JobKind, fn func(context.Context, *Job) error) (string, error) {
	ctx, cancel := context.WithCancel(context.Background())

	entry := &jobEntry{
		job: Job{
			ID:        uuid.NewString(),
			Kind:      kind,
			State:     JobRunning,
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}

	r.mu.Lock()
	r.jobs[entry.job.ID] = entry
	r.mu.Unlock()

	go func() {
		defer cancel()

		result := entry.job
		err := fn(ctx, &result)

		now := time.Now()
		result.FinishedAt = &now

		switch {
		case ctx.Err() != nil:
			result.State = JobCancelled
			result.Error = ctx.Err().Error()
		case err != nil:
			result.State = JobFailed
			result.Error = err.Error()

			log.Warn().Err(err).Str("job", result.ID).Str("kind", string(kind)).Msg("ai job failed")
		default:
			result.State = JobComplete
		}

		r.mu.Lock()
		entry.job = result
		r.mu.Unlock()
	}()

	return entry.job.ID, nil
}

// Get returns a snapshot of a job for polling.
func (r *Runner) Get(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	snapshot := entry.job

	return &snapshot, nil
}

// Cancel aborts a running job. Cancelling a finished job is a no-op.
func (r *Runner) Cancel(id string) error {
	r.mu.Lock()
	entry, ok := r.jobs[id]
	r.mu.Unlock()

	if !ok {
		return ErrJobNotFound
	}

	entry.cancel()

	return nil
}
