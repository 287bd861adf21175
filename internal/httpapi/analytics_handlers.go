package httpapi

import "net/http"

func (s *server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Analytics.DashboardStats(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) statusDistribution(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.StatusDistribution(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) timeline(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.ApplicationsOverTime(r.Context(), queryInt(r, "days", 30))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) topCompanies(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.TopCompanies(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) companyRollups(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.CompanyRollups(r.Context(),
		r.URL.Query().Get("search"),
		queryInt(r, "min_jobs", 1),
		queryInt(r, "limit", 100))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) successRates(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.SuccessRateByCompany(r.Context(),
		queryInt(r, "min_apps", 3),
		queryInt(r, "limit", 20))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) locations(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.LocationCounts(r.Context(), queryInt(r, "limit", 15))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) questions(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.QuestionFrequencies(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) methods(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.MethodBreakdown(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) activity(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.ActivityPattern(r.Context(), queryInt(r, "days", 90))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) sessionPerformance(w http.ResponseWriter, r *http.Request) {
	out, err := s.Analytics.SessionPerformance(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
