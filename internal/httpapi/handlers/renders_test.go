package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"clipforge/internal/jobs"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/queue"
)

func newTestHandler(t *testing.T) (*Handler, *jobs.MemStore, *queue.MemQueue) {
	t.Helper()

	store := jobs.NewMemStore()
	q := queue.NewMemQueue(8)
	h := New(Deps{
		Store: store,
		Queue: q,
		Log:   logger.New(logger.Config{Level: "error", Output: io.Discard}),
	})
	return h, store, q
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/renders", h.PostRender)
	r.Get("/renders", h.ListRenders)
	r.Get("/renders/{jobId}", h.GetRender)
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{templateId}", h.GetTemplate)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPostRenderAcceptsAndQueues(t *testing.T) {
	h, store, q := newTestHandler(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, "POST", "/renders", "user-1",
		`{"templateId":"HelloWorld","title":"My Clip","props":{"titleText":"Hi"}}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	jobID, _ := body["jobId"].(string)
	if jobID == "" {
		t.Fatal("response has no jobId")
	}
	if body["status"] != "rendering" {
		t.Errorf("status = %v, want rendering", body["status"])
	}

	j, err := store.Get(context.Background(), jobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.Status != jobs.StatusRendering {
		t.Errorf("stored status = %s, want rendering", j.Status)
	}
	if j.Progress != 10 {
		t.Errorf("stored progress = %d, want 10", j.Progress)
	}
	if j.OwnerID != "user-1" {
		t.Errorf("owner = %q", j.OwnerID)
	}
	if j.Props["titleText"] != "Hi" {
		t.Errorf("props = %v", j.Props)
	}
	// Defaults of unset props are filled in at acceptance.
	if j.Props["titleColor"] != "#000000" {
		t.Errorf("titleColor default = %v", j.Props["titleColor"])
	}

	queued, err := q.Dequeue(context.Background(), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if queued != jobID {
		t.Errorf("queued id = %q, want %q", queued, jobID)
	}
}

func TestPostRenderUnknownTemplateCreatesNothing(t *testing.T) {
	h, store, q := newTestHandler(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, "POST", "/renders", "user-1", `{"templateId":"NoSuchTemplate"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	list, err := store.ListOwned(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("ListOwned: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("rejected submission created %d records", len(list))
	}

	queued, _ := q.Dequeue(context.Background(), 50*time.Millisecond)
	if queued != "" {
		t.Errorf("rejected submission enqueued %q", queued)
	}
}

func TestPostRenderUnknownProp(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, "POST", "/renders", "user-1",
		`{"templateId":"HelloWorld","props":{"bogus":"x"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "bogus") {
		t.Errorf("error does not name the offending prop: %s", rec.Body.String())
	}
}

func TestPostRenderRequiresIdentity(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, "POST", "/renders", "", `{"templateId":"HelloWorld"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetRenderScopedToOwner(t *testing.T) {
	h, store, _ := newTestHandler(t)
	router := newTestRouter(h)

	j := &jobs.Job{
		ID:         jobs.NewID(),
		OwnerID:    "user-1",
		Title:      "Mine",
		TemplateID: "HelloWorld",
		Status:     jobs.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.Create(context.Background(), j); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := doJSON(t, router, "GET", "/renders/"+j.ID, "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner poll status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	job, _ := body["job"].(map[string]any)
	if job == nil || job["jobId"] != j.ID {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	// Someone else's job is indistinguishable from a missing one.
	rec = doJSON(t, router, "GET", "/renders/"+j.ID, "user-2", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner poll status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/renders/does-not-exist", "user-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job poll status = %d, want 404", rec.Code)
	}
}

func TestListRendersOnlyCallers(t *testing.T) {
	h, store, _ := newTestHandler(t)
	router := newTestRouter(h)

	for i, owner := range []string{"user-1", "user-1", "user-2"} {
		j := &jobs.Job{
			ID:         jobs.NewID(),
			OwnerID:    owner,
			TemplateID: "HelloWorld",
			Status:     jobs.StatusPending,
			CreatedAt:  time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := store.Create(context.Background(), j); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rec := doJSON(t, router, "GET", "/renders", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	list, _ := body["jobs"].([]any)
	if len(list) != 2 {
		t.Errorf("listed %d jobs, want 2", len(list))
	}
}

func TestTemplateEndpoints(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := newTestRouter(h)

	rec := doJSON(t, router, "GET", "/templates", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	list, _ := body["templates"].([]any)
	if len(list) == 0 {
		t.Fatal("empty template catalog")
	}

	rec = doJSON(t, router, "GET", "/templates/HelloWorld", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/templates/NoSuchTemplate", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d, want 404", rec.Code)
	}
}
