package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/rank"
	"jobtrack-engine/internal/store"
)

func (s *server) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.Store.ListJobs(r.Context(), store.ListJobsOpts{
		Company:       q.Get("company"),
		Status:        q.Get("status"),
		Search:        q.Get("search"),
		OnlyUnapplied: q.Get("unapplied") == "true",
		Limit:         queryInt(r, "limit", 200),
		Offset:        queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// rankedJobs lists unapplied jobs ordered by configured relevance, the queue
// a user works through top-down.
func (s *server) rankedJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.Store.ListJobs(r.Context(), store.ListJobsOpts{
		Status:        store.JobActive,
		OnlyUnapplied: r.URL.Query().Get("applied") != "true",
		Limit:         queryInt(r, "limit", 200),
		Offset:        queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rank.Rank(s.Scorer, jobs))
}

func (s *server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.Store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *server) listApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListApplicationsOpts{
		Search: q.Get("search"),
		Limit:  queryInt(r, "limit", 1000),
		Offset: queryInt(r, "offset", 0),
	}
	if v, ok := q["status"]; ok {
		opts.Statuses = v
	}
	if v, ok := q["company"]; ok {
		opts.Companies = v
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.To = t
		}
	}

	apps, err := s.Store.ListApplications(r.Context(), opts)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *server) createApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID  string `json:"job_id"`
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	id, err := s.Tracker.Open(r.Context(), req.JobID, req.Method)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.Analytics.InvalidateAll()
	writeJSON(w, http.StatusCreated, map[string]string{"application_id": id})
}

func (s *server) getApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := s.Store.GetApplication(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	qa, err := s.Store.ApplicationQA(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"application": app, "qa": qa})
}

func (s *server) submitOutcome(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Success            bool   `json:"success"`
		ConfirmationNumber string `json:"confirmation_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid body")
		return
	}
	if err := s.Tracker.SubmitOutcome(r.Context(), id, req.Success, req.ConfirmationNumber); err != nil {
		s.writeErr(w, err)
		return
	}
	s.Analytics.InvalidateAll()
	status := store.AppFailed
	if req.Success {
		status = store.AppSubmitted
	}
	s.Hub.Publish(events.ApplicationUpdated(id, status))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) retryApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Tracker.Retry(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	s.Analytics.InvalidateAll()
	s.Hub.Publish(events.ApplicationUpdated(id, store.AppPending))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) recordAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		QuestionText string `json:"question_text"`
		QuestionType string `json:"question_type"`
		Value        string `json:"value"`
		Extra        string `json:"extra"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionText == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "question_text required")
		return
	}
	if err := s.Tracker.RecordAnswer(r.Context(), id, req.QuestionText, req.QuestionType, req.Value, req.Extra); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}

func (s *server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.Store.ListSessions(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *server) runCrawl(w http.ResponseWriter, r *http.Request) {
	res, err := s.RunCrawl(r.Context())
	if err != nil {
		// The session row already captured the failure; hand both back.
		writeJSON(w, http.StatusBadGateway, map[string]any{"result": res, "error": err.Error()})
		return
	}
	s.Analytics.InvalidateAll()
	writeJSON(w, http.StatusOK, res)
}
