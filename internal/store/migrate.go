package store

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----
	//
	// Column names are a compatibility surface: the reporting layer reads
	// these tables directly. Timestamps are RFC3339 UTC strings, which
	// sqlite's date functions understand.

	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS jobs (
  job_id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  job_link TEXT NOT NULL,
  hirer_name TEXT NOT NULL DEFAULT '',
  hirer_profile_link TEXT NOT NULL DEFAULT '',
  scraped_at TEXT NOT NULL,
  is_applied INTEGER NOT NULL DEFAULT 0,
  job_status TEXT NOT NULL DEFAULT 'active'
);`,
		`
CREATE TABLE IF NOT EXISTS applications (
  application_id TEXT PRIMARY KEY,
  job_id TEXT NOT NULL REFERENCES jobs(job_id),
  status TEXT NOT NULL DEFAULT 'pending',
  applied_date TEXT NOT NULL,
  application_method TEXT NOT NULL DEFAULT '',
  confirmation_number TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT ''
);`,
		`
CREATE TABLE IF NOT EXISTS scraping_sessions (
  session_id TEXT PRIMARY KEY,
  start_time TEXT NOT NULL,
  end_time TEXT,
  search_query TEXT NOT NULL,
  jobs_found INTEGER NOT NULL DEFAULT 0,
  jobs_new INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'in_progress',
  error_log TEXT NOT NULL DEFAULT ''
);`,
		`
CREATE TABLE IF NOT EXISTS form_questions (
  question_id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_text TEXT NOT NULL UNIQUE,
  question_type TEXT NOT NULL DEFAULT ''
);`,
		`
CREATE TABLE IF NOT EXISTS form_responses (
  response_id INTEGER PRIMARY KEY AUTOINCREMENT,
  application_id TEXT NOT NULL REFERENCES applications(application_id),
  question_id INTEGER NOT NULL REFERENCES form_questions(question_id),
  response_value TEXT NOT NULL DEFAULT '',
  response_data TEXT NOT NULL DEFAULT '',
  answered_at TEXT NOT NULL
);`,

		// ---- Schema v1: indexes ----
		`CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs(scraped_at);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);`,
		`CREATE INDEX IF NOT EXISTS idx_applications_applied_date ON applications(applied_date);`,
		`CREATE INDEX IF NOT EXISTS idx_form_responses_application_id ON form_responses(application_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON scraping_sessions(start_time);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}
