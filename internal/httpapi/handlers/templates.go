package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/httpkit"
)

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httpkit.WriteJSON(w, 200, map[string]any{"templates": h.registry.All()})
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateId")

	t, err := h.registry.Get(templateID)
	if err != nil {
		httpkit.WriteErr(w, 404, "TEMPLATE_NOT_FOUND", "template not found", map[string]any{"template_id": templateID})
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"template": t})
}
