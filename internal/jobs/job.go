// Package jobs owns the render job record: its model, its status machine and
// the stores that persist it.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a render job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRendering Status = "rendering"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a job in this status can still transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the durable record of one render request. It is created at
// submission and mutated only by the orchestrator as the job advances.
type Job struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"owner_id"`
	Title      string         `json:"title"`
	TemplateID string         `json:"template_id"`
	Props      map[string]any `json:"props"`

	Status       Status `json:"status"`
	Progress     int    `json:"progress"`
	ArtifactURL  string `json:"artifact_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Template metadata captured at creation.
	DurationFrames int `json:"duration_frames"`
	FPS            int `json:"fps"`
	Width          int `json:"width"`
	Height         int `json:"height"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewID returns a fresh job id.
func NewID() string {
	return uuid.NewString()
}
