package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Application statuses as persisted in applications.status.
const (
	AppPending    = "pending"
	AppInProgress = "in_progress"
	AppSubmitted  = "submitted"
	AppFailed     = "failed"
)

type Application struct {
	ApplicationID      string    `json:"application_id"`
	JobID              string    `json:"job_id"`
	Status             string    `json:"status"`
	AppliedDate        time.Time `json:"applied_date"`
	ApplicationMethod  string    `json:"application_method"`
	ConfirmationNumber string    `json:"confirmation_number"`
	Notes              string    `json:"notes"`
}

// ApplicationRow is an application joined with the job it targets,
// the shape the reporting layer lists.
type ApplicationRow struct {
	Application
	Title     string `json:"title"`
	Company   string `json:"company"`
	Location  string `json:"location"`
	JobLink   string `json:"job_link"`
	HirerName string `json:"hirer_name"`
}

type ListApplicationsOpts struct {
	Statuses  []string
	Companies []string
	From      time.Time
	To        time.Time
	Search    string // matches job title, company, location
	Limit     int
	Offset    int
}

// CreateApplication opens a new attempt against a known job. The attempt
// starts in pending; status moves only through the tracker afterwards.
func (s *Store) CreateApplication(ctx context.Context, jobID, method string) (string, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE job_id = ?;`, jobID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("check job %s: %w", jobID, err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO applications (application_id, job_id, status, applied_date, application_method)
VALUES (?,?,?,?,?);`,
		id, jobID, AppPending, time.Now().UTC().Format(time.RFC3339), method,
	)
	if err != nil {
		return "", fmt.Errorf("create application for job %s: %w", jobID, err)
	}
	return id, nil
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (Application, error) {
	var a Application
	var appliedDate string
	err := s.db.QueryRowContext(ctx, `
SELECT application_id, job_id, status, applied_date, application_method, confirmation_number, notes
FROM applications WHERE application_id = ?;`, applicationID).Scan(
		&a.ApplicationID, &a.JobID, &a.Status, &appliedDate, &a.ApplicationMethod, &a.ConfirmationNumber, &a.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	if err != nil {
		return Application{}, fmt.Errorf("get application %s: %w", applicationID, err)
	}
	a.AppliedDate, _ = time.Parse(time.RFC3339, appliedDate)
	return a, nil
}

// UpdateApplicationStatus moves an application to newStatus and appends note
// to the audit trail. Notes are never overwritten; failed attempts keep
// their history for diagnosis.
func (s *Store) UpdateApplicationStatus(ctx context.Context, applicationID, newStatus, note string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE applications
SET status = ?,
    notes = CASE
      WHEN ? = '' THEN notes
      WHEN notes = '' THEN ?
      ELSE notes || ' | ' || ?
    END
WHERE application_id = ?;`,
		newStatus, note, note, note, applicationID,
	)
	if err != nil {
		return fmt.Errorf("update application %s: %w", applicationID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	return nil
}

// TransitionApplication moves an application to newStatus only when its
// current status is one of from, appending note the same way
// UpdateApplicationStatus does. Guard and write are a single statement, so
// two callers racing on the same attempt cannot both win. Reports whether
// the row changed; ErrNotFound when the application does not exist.
func (s *Store) TransitionApplication(ctx context.Context, applicationID, newStatus, note string, from ...string) (bool, error) {
	query := `
UPDATE applications
SET status = ?,
    notes = CASE
      WHEN ? = '' THEN notes
      WHEN notes = '' THEN ?
      ELSE notes || ' | ' || ?
    END
WHERE application_id = ? AND status IN (` + placeholders(len(from)) + `);`
	args := []any{newStatus, note, note, note, applicationID}
	for _, st := range from {
		args = append(args, st)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition application %s: %w", applicationID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var one int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM applications WHERE application_id = ?;`, applicationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("check application %s: %w", applicationID, err)
	}
	return false, nil
}

// SetConfirmationNumber records the confirmation handed back by the site
// after a successful submission.
func (s *Store) SetConfirmationNumber(ctx context.Context, applicationID, confirmation string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET confirmation_number = ? WHERE application_id = ?;`,
		confirmation, applicationID,
	)
	if err != nil {
		return fmt.Errorf("set confirmation on %s: %w", applicationID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	return nil
}

func (s *Store) ListApplications(ctx context.Context, opts ListApplicationsOpts) ([]ApplicationRow, error) {
	if opts.Limit <= 0 {
		opts.Limit = 1000
	}

	query := `
SELECT a.application_id, a.job_id, a.status, a.applied_date, a.application_method, a.confirmation_number, a.notes,
       j.title, j.company, j.location, j.job_link, j.hirer_name
FROM applications a
LEFT JOIN jobs j ON a.job_id = j.job_id
WHERE 1=1`
	var args []any

	if len(opts.Statuses) > 0 {
		query += ` AND a.status IN (` + placeholders(len(opts.Statuses)) + `)`
		for _, st := range opts.Statuses {
			args = append(args, st)
		}
	}
	if len(opts.Companies) > 0 {
		query += ` AND j.company IN (` + placeholders(len(opts.Companies)) + `)`
		for _, c := range opts.Companies {
			args = append(args, c)
		}
	}
	if !opts.From.IsZero() {
		query += ` AND a.applied_date >= ?`
		args = append(args, opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		query += ` AND a.applied_date <= ?`
		args = append(args, opts.To.UTC().Format(time.RFC3339))
	}
	if opts.Search != "" {
		query += ` AND (j.title LIKE ? OR j.company LIKE ? OR j.location LIKE ?)`
		pat := "%" + opts.Search + "%"
		args = append(args, pat, pat, pat)
	}
	query += ` ORDER BY a.applied_date DESC LIMIT ? OFFSET ?;`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []ApplicationRow
	for rows.Next() {
		var r ApplicationRow
		var appliedDate string
		var title, company, location, jobLink, hirerName sql.NullString
		if err := rows.Scan(
			&r.ApplicationID, &r.JobID, &r.Status, &appliedDate, &r.ApplicationMethod, &r.ConfirmationNumber, &r.Notes,
			&title, &company, &location, &jobLink, &hirerName,
		); err != nil {
			return nil, err
		}
		r.AppliedDate, _ = time.Parse(time.RFC3339, appliedDate)
		r.Title = title.String
		r.Company = company.String
		r.Location = location.String
		r.JobLink = jobLink.String
		r.HirerName = hirerName.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := "?"
	for i := 1; i < n; i++ {
		out += ",?"
	}
	return out
}
