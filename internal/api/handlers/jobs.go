package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/mag7-collector/internal/scheduler"
)

// JobSource is the read side of the scheduler
type JobSource interface {
	Stats() map[string]scheduler.JobStats
	History(name string) (*scheduler.JobHistory, error)
}

// JobsHandler exposes scheduler state
type JobsHandler struct {
	jobs JobSource
}

// NewJobsHandler creates a jobs handler
func NewJobsHandler(jobs JobSource) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

// List returns statistics of every job
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobs.Stats())
}

// History returns recent runs of one job
// GET /api/jobs/{name}/history
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.jobs.History(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, history.Results)
}
