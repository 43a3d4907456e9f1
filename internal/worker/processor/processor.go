// Package processor drives a render job through its state machine: claim the
// record, run the external renderer, move the artifact into durable storage
// and finalize the record. Every failure inside the job is converted into a
// terminal failed record; nothing escapes back to the submitter.
package processor

import (
	"context"
	"fmt"
	"os"
	"time"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/ports"
	"clipforge/internal/renderer"
)

// Progress checkpoints. These are liveness signals for polling clients, not
// measurements of renderer internals.
const (
	progressClaimed   = 10
	progressRendering = 30
	progressUploading = 70
)

// DefaultJobTimeout bounds a single render plus upload.
const DefaultJobTimeout = 15 * time.Minute

type Deps struct {
	Store      jobs.Store
	Runner     renderer.Runner
	SP         ports.StorageProvider
	JobTimeout time.Duration
	Log        *logger.Logger
}

// Processor owns the render job state machine.
type Processor struct {
	store      jobs.Store
	runner     renderer.Runner
	sp         ports.StorageProvider
	jobTimeout time.Duration
	log        *logger.Logger
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	timeout := d.JobTimeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	return &Processor{
		store:      d.Store,
		runner:     d.Runner,
		sp:         d.SP,
		jobTimeout: timeout,
		log:        log.WithComponent("processor"),
	}
}

// ProcessJob drives one dequeued job to a terminal state. The returned error
// is for the worker's log only; the job's own outcome always lands in the
// record.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		log.Error("dequeued job not found", "error", err.Error())
		return err
	}
	if job.Status.Terminal() {
		log.Warn("dequeued job already terminal", "status", string(job.Status))
		return nil
	}

	// The API normally advances the record before enqueueing; claim it here
	// if that write was lost.
	if job.Status == jobs.StatusPending {
		if err := p.store.MarkRendering(ctx, jobID, progressClaimed); err != nil {
			return p.failJob(ctx, jobID, "failed to start render job", err)
		}
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	log.Debug("invoking renderer", "template_id", job.TemplateID)
	if err := p.store.SetProgress(jobCtx, jobID, progressRendering); err != nil {
		log.Warn("progress update failed", "error", err.Error())
	}

	res := p.runner.Render(jobCtx, job.ID, job.TemplateID, job.Props)
	if !res.OK {
		msg := res.ErrorMessage
		if jobCtx.Err() == context.DeadlineExceeded {
			msg = fmt.Sprintf("render timed out after %s", p.jobTimeout)
		}
		return p.failJob(ctx, jobID, msg, nil)
	}
	defer p.removeLocal(res.OutputPath, log)

	log.Debug("uploading artifact", "path", res.OutputPath)
	if err := p.store.SetProgress(jobCtx, jobID, progressUploading); err != nil {
		log.Warn("progress update failed", "error", err.Error())
	}

	uploaded, err := p.uploadArtifact(jobCtx, job, res.OutputPath)
	if err != nil {
		return p.failJob(ctx, jobID, fmt.Sprintf("upload failed: %v", err), err)
	}

	if err := p.store.Complete(ctx, jobID, uploaded.URL); err != nil {
		// The record is the source of truth; an artifact it will never point
		// at is reclaimed.
		if derr := p.sp.DeleteObject(ctx, uploaded.ObjectKey); derr != nil {
			log.Warn("failed to delete orphaned artifact", "object_key", uploaded.ObjectKey, "error", derr.Error())
		}
		return p.failJob(ctx, jobID, "failed to record render result", err)
	}

	log.Info("job completed", "artifact_url", uploaded.URL)
	return nil
}

func (p *Processor) uploadArtifact(ctx context.Context, job *jobs.Job, outputPath string) (ports.PutObjectOutput, error) {
	f, err := os.Open(outputPath)
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("open rendered file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("stat rendered file: %w", err)
	}

	return p.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   ArtifactKey(job.OwnerID, job.ID),
		ContentType: "video/mp4",
		Reader:      f,
		Size:        st.Size(),
	})
}

// failJob finalizes the record with a human-readable message. The message is
// what the UI shows verbatim; the cause is for the worker log only.
func (p *Processor) failJob(ctx context.Context, jobID, message string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)
	if cause != nil {
		log.Error("job failed", "message", message, "error", cause.Error())
	} else {
		log.Error("job failed", "message", message)
	}

	if err := p.store.Fail(ctx, jobID, message); err != nil {
		log.Error("failed to record job failure", "error", err.Error())
	}

	if cause != nil {
		return cause
	}
	return fmt.Errorf("%s", message)
}

// removeLocal enforces the temp hygiene guarantee: the rendered file never
// outlives the job's handling. Removal problems are logged, never stored.
func (p *Processor) removeLocal(path string, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove local output", "path", path, "error", err.Error())
	}
}

// ArtifactKey is the deterministic storage key for a job's artifact, shared
// with the API's accept path so retried uploads overwrite.
func ArtifactKey(ownerID, jobID string) string {
	return ownerID + "/" + jobID + ".mp4"
}
