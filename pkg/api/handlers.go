package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/tasks"
)

type TaskHandler struct {
	coll *tasks.Collection
}

func NewTaskHandler(coll *tasks.Collection) *TaskHandler {
	return &TaskHandler{coll: coll}
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title      string           `json:"title"`
	Importance model.Importance `json:"importance"`
	Kind       string           `json:"type"`
	Deadline   string           `json:"deadline"`
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List handles GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coll.Tasks())
}

// Create handles POST /tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	due, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "deadline must be RFC3339")
		return
	}

	task, err := h.coll.Add(r.Context(), tasks.Draft{
		Title:      req.Title,
		Importance: req.Importance,
		Kind:       kind,
		Deadline:   due,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Complete handles POST /tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	task, err := h.coll.Complete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tasks.ErrAmbiguous):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, task)
	}
}

// Plan handles GET /plan?at=<RFC3339>
func (h *TaskHandler) Plan(w http.ResponseWriter, r *http.Request) {
	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}
	writeJSON(w, http.StatusOK, h.coll.Rank(at))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
