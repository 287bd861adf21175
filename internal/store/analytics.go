package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Aggregate queries consumed by the analytics engine. All read-only and
// reproducible from table contents alone; nothing here depends on
// crawl-time state.

type DashboardStats struct {
	TotalJobs         int     `json:"total_jobs"`
	TotalApplications int     `json:"total_applications"`
	AppsSubmitted     int     `json:"apps_submitted"`
	AppsFailed        int     `json:"apps_failed"`
	AppsPending       int     `json:"apps_pending"`
	SuccessRate       float64 `json:"success_rate"`
	JobsNotApplied    int     `json:"jobs_not_applied"`
	TodayApps         int     `json:"today_apps"`
	WeekApps          int     `json:"week_apps"`
	LastScrapedAt     string  `json:"last_scraped_at"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DayCount struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Submitted int    `json:"submitted"`
	Failed    int    `json:"failed"`
}

type CompanyJobs struct {
	Company         string  `json:"company"`
	JobCount        int     `json:"job_count"`
	AppliedCount    int     `json:"applied_count"`
	ApplicationRate float64 `json:"application_rate"`
}

type CompanySuccess struct {
	Company           string  `json:"company"`
	TotalApplications int     `json:"total_applications"`
	Successful        int     `json:"successful"`
	SuccessRate       float64 `json:"success_rate"`
}

type CompanyRollup struct {
	Company           string  `json:"company"`
	TotalJobs         int     `json:"total_jobs"`
	JobsApplied       int     `json:"jobs_applied"`
	TotalApplications int     `json:"total_applications"`
	Successful        int     `json:"successful"`
	FirstSeen         string  `json:"first_seen"`
	LastSeen          string  `json:"last_seen"`
	SuccessRate       float64 `json:"success_rate"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type QuestionStat struct {
	QuestionText     string `json:"question_text"`
	QuestionType     string `json:"question_type"`
	TimesAsked       int    `json:"times_asked"`
	MostCommonAnswer string `json:"most_common_answer"`
}

type MethodStat struct {
	Method      string  `json:"method"`
	Count       int     `json:"count"`
	SuccessRate float64 `json:"success_rate"`
}

type ActivityBucket struct {
	Weekday int `json:"weekday"` // 0 = Sunday, sqlite strftime('%w')
	Hour    int `json:"hour"`
	Count   int `json:"count"`
}

type SessionStats struct {
	TotalSessions      int     `json:"total_sessions"`
	TotalJobsFound     int     `json:"total_jobs_found"`
	TotalJobsNew       int     `json:"total_jobs_new"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	CompletedSessions  int     `json:"completed_sessions"`
	FailedSessions     int     `json:"failed_sessions"`
}

func (s *Store) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats

	now := time.Now().UTC()
	dayStart := now.Truncate(24 * time.Hour).Format(time.RFC3339)
	weekStart := now.AddDate(0, 0, -7).Format(time.RFC3339)

	err := s.db.QueryRowContext(ctx, `
SELECT
  (SELECT COUNT(*) FROM jobs),
  (SELECT COUNT(*) FROM applications),
  (SELECT COUNT(*) FROM applications WHERE status = 'submitted'),
  (SELECT COUNT(*) FROM applications WHERE status = 'failed'),
  (SELECT COUNT(*) FROM applications WHERE status = 'pending'),
  (SELECT COUNT(*) FROM jobs WHERE is_applied = 0),
  (SELECT COUNT(*) FROM applications WHERE applied_date >= ?),
  (SELECT COUNT(*) FROM applications WHERE applied_date >= ?),
  (SELECT COALESCE(MAX(scraped_at), '') FROM jobs);`,
		dayStart, weekStart,
	).Scan(
		&st.TotalJobs, &st.TotalApplications, &st.AppsSubmitted, &st.AppsFailed,
		&st.AppsPending, &st.JobsNotApplied, &st.TodayApps, &st.WeekApps, &st.LastScrapedAt,
	)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}

	if st.TotalApplications > 0 {
		st.SuccessRate = round2(float64(st.AppsSubmitted) / float64(st.TotalApplications) * 100)
	}
	return st, nil
}

func (s *Store) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM applications GROUP BY status ORDER BY status;`)
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ApplicationsOverTime buckets applications per day over the trailing
// window, with the submitted/failed split the timeline chart stacks.
func (s *Store) ApplicationsOverTime(ctx context.Context, days int) ([]DayCount, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
SELECT DATE(applied_date) AS day,
       COUNT(*),
       SUM(CASE WHEN status = 'submitted' THEN 1 ELSE 0 END),
       SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END)
FROM applications
WHERE applied_date >= ?
GROUP BY day
ORDER BY day;`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("applications over time: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count, &dc.Submitted, &dc.Failed); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (s *Store) TopCompanies(ctx context.Context, limit int) ([]CompanyJobs, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT company,
       COUNT(*) AS job_count,
       SUM(CASE WHEN is_applied = 1 THEN 1 ELSE 0 END) AS applied_count,
       ROUND(SUM(CASE WHEN is_applied = 1 THEN 1.0 ELSE 0 END) / COUNT(*) * 100, 2)
FROM jobs
WHERE company != ''
GROUP BY company
ORDER BY job_count DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("top companies: %w", err)
	}
	defer rows.Close()

	var out []CompanyJobs
	for rows.Next() {
		var c CompanyJobs
		if err := rows.Scan(&c.Company, &c.JobCount, &c.AppliedCount, &c.ApplicationRate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SuccessRateByCompany ranks companies by submitted/total ratio. Companies
// with fewer than minApps applications are excluded so one-off attempts
// don't dominate the rollup.
func (s *Store) SuccessRateByCompany(ctx context.Context, minApps, limit int) ([]CompanySuccess, error) {
	if minApps <= 0 {
		minApps = 3
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT j.company,
       COUNT(a.application_id) AS total_applications,
       SUM(CASE WHEN a.status = 'submitted' THEN 1 ELSE 0 END) AS successful,
       ROUND(SUM(CASE WHEN a.status = 'submitted' THEN 1.0 ELSE 0 END) / COUNT(a.application_id) * 100, 2) AS success_rate
FROM applications a
LEFT JOIN jobs j ON a.job_id = j.job_id
WHERE j.company != ''
GROUP BY j.company
HAVING COUNT(a.application_id) >= ?
ORDER BY success_rate DESC
LIMIT ?;`, minApps, limit)
	if err != nil {
		return nil, fmt.Errorf("success rate by company: %w", err)
	}
	defer rows.Close()

	var out []CompanySuccess
	for rows.Next() {
		var c CompanySuccess
		if err := rows.Scan(&c.Company, &c.TotalApplications, &c.Successful, &c.SuccessRate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CompanyRollups is the per-company intelligence view: job counts, applied
// counts, first/last seen, and application success rate.
func (s *Store) CompanyRollups(ctx context.Context, search string, minJobs, limit int) ([]CompanyRollup, error) {
	if minJobs <= 0 {
		minJobs = 1
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT j.company,
       COUNT(DISTINCT j.job_id) AS total_jobs,
       COUNT(DISTINCT CASE WHEN j.is_applied = 1 THEN j.job_id END) AS jobs_applied,
       COUNT(DISTINCT a.application_id) AS total_applications,
       SUM(CASE WHEN a.status = 'submitted' THEN 1 ELSE 0 END) AS successful,
       MIN(j.scraped_at) AS first_seen,
       MAX(j.scraped_at) AS last_seen,
       ROUND(SUM(CASE WHEN a.status = 'submitted' THEN 1.0 ELSE 0 END) /
             NULLIF(COUNT(a.application_id), 0) * 100, 2) AS success_rate
FROM jobs j
LEFT JOIN applications a ON j.job_id = a.job_id
WHERE j.company != ''`
	var args []any
	if search != "" {
		query += ` AND j.company LIKE ?`
		args = append(args, "%"+search+"%")
	}
	query += `
GROUP BY j.company
HAVING COUNT(DISTINCT j.job_id) >= ?
ORDER BY total_jobs DESC
LIMIT ?;`
	args = append(args, minJobs, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("company rollups: %w", err)
	}
	defer rows.Close()

	var out []CompanyRollup
	for rows.Next() {
		var c CompanyRollup
		var successful sql.NullInt64
		var rate sql.NullFloat64
		if err := rows.Scan(
			&c.Company, &c.TotalJobs, &c.JobsApplied, &c.TotalApplications,
			&successful, &c.FirstSeen, &c.LastSeen, &rate,
		); err != nil {
			return nil, err
		}
		c.Successful = int(successful.Int64)
		c.SuccessRate = rate.Float64
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) LocationCounts(ctx context.Context, limit int) ([]LocationCount, error) {
	if limit <= 0 {
		limit = 15
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT location, COUNT(*) AS count
FROM jobs
WHERE location != ''
GROUP BY location
ORDER BY count DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("location counts: %w", err)
	}
	defer rows.Close()

	var out []LocationCount
	for rows.Next() {
		var lc LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// QuestionFrequencies ranks form questions by how many applications asked
// them, with each question's most frequent answer.
func (s *Store) QuestionFrequencies(ctx context.Context, limit int) ([]QuestionStat, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT fq.question_text,
       fq.question_type,
       COUNT(DISTINCT fr.application_id) AS times_asked,
       COALESCE((
         SELECT fr2.response_value
         FROM form_responses fr2
         WHERE fr2.question_id = fq.question_id
         GROUP BY fr2.response_value
         ORDER BY COUNT(*) DESC, fr2.response_value
         LIMIT 1
       ), '') AS most_common_answer
FROM form_questions fq
LEFT JOIN form_responses fr ON fq.question_id = fr.question_id
GROUP BY fq.question_id
ORDER BY times_asked DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("question frequencies: %w", err)
	}
	defer rows.Close()

	var out []QuestionStat
	for rows.Next() {
		var q QuestionStat
		if err := rows.Scan(&q.QuestionText, &q.QuestionType, &q.TimesAsked, &q.MostCommonAnswer); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) MethodBreakdown(ctx context.Context) ([]MethodStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT application_method,
       COUNT(*),
       ROUND(AVG(CASE WHEN status = 'submitted' THEN 100.0 ELSE 0 END), 2)
FROM applications
WHERE application_method != ''
GROUP BY application_method
ORDER BY COUNT(*) DESC;`)
	if err != nil {
		return nil, fmt.Errorf("method breakdown: %w", err)
	}
	defer rows.Close()

	var out []MethodStat
	for rows.Next() {
		var m MethodStat
		if err := rows.Scan(&m.Method, &m.Count, &m.SuccessRate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ActivityPattern builds the day-of-week x hour histogram of application
// activity over the trailing window.
func (s *Store) ActivityPattern(ctx context.Context, days int) ([]ActivityBucket, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
SELECT CAST(strftime('%w', applied_date) AS INTEGER) AS weekday,
       CAST(strftime('%H', applied_date) AS INTEGER) AS hour,
       COUNT(*)
FROM applications
WHERE applied_date >= ?
GROUP BY weekday, hour
ORDER BY weekday, hour;`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("activity pattern: %w", err)
	}
	defer rows.Close()

	var out []ActivityBucket
	for rows.Next() {
		var b ActivityBucket
		if err := rows.Scan(&b.Weekday, &b.Hour, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SessionPerformance summarizes finished crawl sessions.
func (s *Store) SessionPerformance(ctx context.Context) (SessionStats, error) {
	var st SessionStats
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(jobs_found), 0),
       COALESCE(SUM(jobs_new), 0),
       AVG((julianday(end_time) - julianday(start_time)) * 24 * 60),
       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
FROM scraping_sessions
WHERE end_time IS NOT NULL;`).Scan(
		&st.TotalSessions, &st.TotalJobsFound, &st.TotalJobsNew,
		&avg, &st.CompletedSessions, &st.FailedSessions,
	)
	if err != nil {
		return SessionStats{}, fmt.Errorf("session performance: %w", err)
	}
	st.AvgDurationMinutes = round2(avg.Float64)
	return st, nil
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
