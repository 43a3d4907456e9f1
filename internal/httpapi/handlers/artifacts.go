package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpkit"
)

// StreamArtifact serves a stored artifact by its object key. This is the read
// side of the localfs provider's URLs; gdrive URLs point at Drive directly and
// never reach this handler.
func (h *Handler) StreamArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	objectKey := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if objectKey == "" || strings.Contains(objectKey, "..") {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid object key", nil)
		return
	}

	rc, contentType, size, err := h.sp.GetObject(ctx, objectKey)
	if err != nil {
		httpkit.WriteErr(w, 404, "ARTIFACT_NOT_FOUND", "artifact not found", map[string]any{"object_key": objectKey})
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		h.log.FromContext(ctx).Warn("artifact stream interrupted", "object_key", objectKey, "error", err.Error())
	}
}
