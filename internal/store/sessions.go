package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses as persisted in scraping_sessions.status.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionFailed     = "failed"
)

type Session struct {
	SessionID   string     `json:"session_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	SearchQuery string     `json:"search_query"`
	JobsFound   int        `json:"jobs_found"`
	JobsNew     int        `json:"jobs_new"`
	Status      string     `json:"status"`
	ErrorLog    string     `json:"error_log"`
}

// StartSession opens a session row in in_progress; EndSession closes it.
// A crash between the two leaves the row open, which the reporting layer
// surfaces as-is.
func (s *Store) StartSession(ctx context.Context, searchQuery string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO scraping_sessions (session_id, start_time, search_query, status)
VALUES (?,?,?,?);`,
		id, time.Now().UTC().Format(time.RFC3339), searchQuery, SessionInProgress,
	)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return id, nil
}

func (s *Store) EndSession(ctx context.Context, sessionID string, jobsFound, jobsNew int, status, errorLog string) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE scraping_sessions
SET end_time = ?, jobs_found = ?, jobs_new = ?, status = ?, error_log = ?
WHERE session_id = ?;`,
		time.Now().UTC().Format(time.RFC3339), jobsFound, jobsNew, status, errorLog, sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session %s: %w", sessionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT session_id, start_time, end_time, search_query, jobs_found, jobs_new, status, error_log
FROM scraping_sessions WHERE session_id = ?;`, sessionID)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, start_time, end_time, search_query, jobs_found, jobs_new, status, error_log
FROM scraping_sessions
ORDER BY start_time DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(r rowScanner) (Session, error) {
	var sess Session
	var start string
	var end sql.NullString
	if err := r.Scan(
		&sess.SessionID, &start, &end, &sess.SearchQuery,
		&sess.JobsFound, &sess.JobsNew, &sess.Status, &sess.ErrorLog,
	); err != nil {
		return Session{}, err
	}
	sess.StartTime, _ = time.Parse(time.RFC3339, start)
	if end.Valid {
		t, err := time.Parse(time.RFC3339, end.String)
		if err == nil {
			sess.EndTime = &t
		}
	}
	return sess, nil
}
