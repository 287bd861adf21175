package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Job statuses as persisted in jobs.job_status.
const (
	JobActive   = "active"
	JobInactive = "inactive"
	JobExpired  = "expired"
	JobFilled   = "filled"
)

type Job struct {
	JobID            string    `json:"job_id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	JobLink          string    `json:"job_link"`
	HirerName        string    `json:"hirer_name"`
	HirerProfileLink string    `json:"hirer_profile_link"`
	ScrapedAt        time.Time `json:"scraped_at"`
	IsApplied        bool      `json:"is_applied"`
	JobStatus        string    `json:"job_status"`
}

type ListJobsOpts struct {
	Company       string
	Status        string
	Search        string // matches title, company, location
	OnlyUnapplied bool
	Limit         int
	Offset        int
}

// UpsertJob inserts a job keyed by its site-assigned job_id. Re-scraping a
// known id never duplicates the row: identity fields stay as first seen,
// scraped_at is refreshed and a non-empty description backfills the stored
// one. Returns whether the row was newly inserted.
func (s *Store) UpsertJob(ctx context.Context, j Job) (wasNew bool, err error) {
	if j.JobID == "" {
		return false, errors.New("job id required")
	}
	if j.ScrapedAt.IsZero() {
		j.ScrapedAt = time.Now().UTC()
	}
	if j.JobStatus == "" {
		j.JobStatus = JobActive
	}

	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO jobs
  (job_id, title, company, location, description, job_link, hirer_name, hirer_profile_link, scraped_at, is_applied, job_status)
VALUES (?,?,?,?,?,?,?,?,?,?,?);`,
		j.JobID, j.Title, j.Company, j.Location, j.Description, j.JobLink,
		j.HirerName, j.HirerProfileLink, j.ScrapedAt.UTC().Format(time.RFC3339), boolToInt(j.IsApplied), j.JobStatus,
	)
	if err != nil {
		return false, fmt.Errorf("insert job %s: %w", j.JobID, err)
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return true, nil
	}

	// Already known: refresh the re-scrape fields only.
	_, err = s.db.ExecContext(ctx, `
UPDATE jobs
SET scraped_at = ?,
    description = CASE WHEN ? != '' THEN ? ELSE description END
WHERE job_id = ?;`,
		j.ScrapedAt.UTC().Format(time.RFC3339), j.Description, j.Description, j.JobID,
	)
	if err != nil {
		return false, fmt.Errorf("refresh job %s: %w", j.JobID, err)
	}
	return false, nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT job_id, title, company, location, description, job_link, hirer_name, hirer_profile_link, scraped_at, is_applied, job_status
FROM jobs WHERE job_id = ?;`, jobID)

	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return Job{}, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return j, nil
}

func (s *Store) ListJobs(ctx context.Context, opts ListJobsOpts) ([]Job, error) {
	if opts.Limit <= 0 {
		opts.Limit = 200
	}

	query := `
SELECT job_id, title, company, location, description, job_link, hirer_name, hirer_profile_link, scraped_at, is_applied, job_status
FROM jobs WHERE 1=1`
	var args []any

	if opts.Company != "" {
		query += ` AND company = ?`
		args = append(args, opts.Company)
	}
	if opts.Status != "" {
		query += ` AND job_status = ?`
		args = append(args, opts.Status)
	}
	if opts.OnlyUnapplied {
		query += ` AND is_applied = 0`
	}
	if opts.Search != "" {
		query += ` AND (title LIKE ? OR company LIKE ? OR location LIKE ?)`
		pat := "%" + opts.Search + "%"
		args = append(args, pat, pat, pat)
	}
	query += ` ORDER BY scraped_at DESC LIMIT ? OFFSET ?;`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkJobApplied flips jobs.is_applied; only the application tracker calls it.
func (s *Store) MarkJobApplied(ctx context.Context, jobID string, applied bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET is_applied = ? WHERE job_id = ?;`, boolToInt(applied), jobID)
	if err != nil {
		return fmt.Errorf("mark job applied: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	return nil
}

// SetJobStatus updates jobs.job_status (active/inactive/expired/filled).
func (s *Store) SetJobStatus(ctx context.Context, jobID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET job_status = ? WHERE job_id = ?;`, status, jobID)
	if err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (Job, error) {
	var j Job
	var scrapedAt string
	var applied int
	if err := r.Scan(
		&j.JobID, &j.Title, &j.Company, &j.Location, &j.Description, &j.JobLink,
		&j.HirerName, &j.HirerProfileLink, &scrapedAt, &applied, &j.JobStatus,
	); err != nil {
		return Job{}, err
	}
	j.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
	j.IsApplied = applied != 0
	return j, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
