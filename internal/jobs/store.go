package jobs

import "context"

// Store persists render job records. Transition writers are guarded so a
// record can never leave a terminal status and progress never decreases.
type Store interface {
	// Create inserts a new record. The job arrives with status pending and
	// progress 0.
	Create(ctx context.Context, j *Job) error

	// Get returns a job by id regardless of owner.
	Get(ctx context.Context, id string) (*Job, error)

	// GetOwned returns a job only if it belongs to ownerID; a job owned by
	// someone else is indistinguishable from a missing one.
	GetOwned(ctx context.Context, id, ownerID string) (*Job, error)

	// ListOwned returns the caller's jobs, newest first.
	ListOwned(ctx context.Context, ownerID string, limit int) ([]Job, error)

	// MarkRendering moves a pending job to rendering at the given progress.
	MarkRendering(ctx context.Context, id string, progress int) error

	// SetProgress raises the progress of a rendering job. Lower values are
	// ignored, keeping progress monotonic.
	SetProgress(ctx context.Context, id string, progress int) error

	// Complete finalizes a rendering job: status completed, progress 100,
	// artifact URL and completion time set.
	Complete(ctx context.Context, id, artifactURL string) error

	// Fail finalizes a non-terminal job with an error message.
	Fail(ctx context.Context, id, message string) error
}
