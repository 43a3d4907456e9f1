package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpkit"
	"clipforge/internal/jobs"
	apperrors "clipforge/internal/pkg/errors"
)

// UserIDHeader identifies the caller. Authentication itself lives at the edge
// proxy; by the time a request reaches this service the header is trusted.
const UserIDHeader = "X-User-ID"

func callerID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return "", apperrors.Unauthorized("missing " + UserIDHeader + " header")
	}
	return id, nil
}

type CreateRenderRequest struct {
	TemplateID string         `json:"templateId"`
	Title      string         `json:"title"`
	Props      map[string]any `json:"props"`
}

type renderView struct {
	ID           string         `json:"jobId"`
	Title        string         `json:"title"`
	TemplateID   string         `json:"templateId"`
	Props        map[string]any `json:"props,omitempty"`
	Status       string         `json:"status"`
	Progress     int            `json:"progress"`
	ArtifactURL  string         `json:"artifactUrl,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
}

func toRenderView(j *jobs.Job, withProps bool) renderView {
	v := renderView{
		ID:           j.ID,
		Title:        j.Title,
		TemplateID:   j.TemplateID,
		Status:       string(j.Status),
		Progress:     j.Progress,
		ArtifactURL:  j.ArtifactURL,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
	if withProps {
		v.Props = j.Props
	}
	return v
}

// PostRender accepts a render request: validate against the template catalog,
// persist the record, hand the id to the worker queue. No rendering happens on
// this path; the response is the poll handle.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	ownerID, err := callerID(r)
	if err != nil {
		httpkit.WriteError(w, err)
		return
	}

	var req CreateRenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	desc, err := h.registry.Validate(req.TemplateID, req.Title, req.Props)
	if err != nil {
		httpkit.WriteError(w, err)
		return
	}

	job := &jobs.Job{
		ID:             jobs.NewID(),
		OwnerID:        ownerID,
		Title:          desc.Title,
		TemplateID:     desc.Template.ID,
		Props:          desc.Props,
		Status:         jobs.StatusPending,
		DurationFrames: desc.Template.DurationFrames,
		FPS:            desc.Template.FPS,
		Width:          desc.Template.Width,
		Height:         desc.Template.Height,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.store.Create(ctx, job); err != nil {
		if httpkit.IsUniqueViolation(err) {
			httpkit.WriteErr(w, 409, "CONFLICT", "render job already exists", map[string]any{"job_id": job.ID})
			return
		}
		log.Error("job insert failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to create render job", nil)
		return
	}

	// The record advances before the enqueue so a poll arriving between the
	// two never observes pending.
	if err := h.store.MarkRendering(ctx, job.ID, 10); err != nil {
		log.Error("job claim failed", "job_id", job.ID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to start render job", nil)
		return
	}

	if err := h.queue.Enqueue(ctx, job.ID); err != nil {
		log.Error("queue push failed", "job_id", job.ID, "error", err.Error())
		_ = h.store.Fail(ctx, job.ID, "failed to queue render job")
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to queue render job", nil)
		return
	}

	log.Info("render accepted", "job_id", job.ID, "template_id", job.TemplateID)

	httpkit.WriteJSON(w, http.StatusAccepted, map[string]any{
		"jobId":  job.ID,
		"status": string(jobs.StatusRendering),
	})
}

// GetRender returns the caller's job record for polling. A job owned by
// someone else is reported as not found.
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	ownerID, err := callerID(r)
	if err != nil {
		httpkit.WriteError(w, err)
		return
	}

	job, err := h.store.GetOwned(ctx, jobID, ownerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			httpkit.WriteErr(w, 404, "JOB_NOT_FOUND", "render job not found", map[string]any{"job_id": jobID})
			return
		}
		h.log.FromContext(ctx).Error("job lookup failed", "job_id", jobID, "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job lookup failed", nil)
		return
	}

	httpkit.WriteJSON(w, 200, map[string]any{"job": toRenderView(job, true)})
}

// ListRenders returns the caller's jobs, newest first.
func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := callerID(r)
	if err != nil {
		httpkit.WriteError(w, err)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	list, err := h.store.ListOwned(ctx, ownerID, limit)
	if err != nil {
		h.log.FromContext(ctx).Error("job list failed", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "job list failed", nil)
		return
	}

	out := make([]renderView, 0, len(list))
	for i := range list {
		out = append(out, toRenderView(&list[i], false))
	}
	httpkit.WriteJSON(w, 200, map[string]any{"jobs": out})
}
