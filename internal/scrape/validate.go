package scrape

// Validate reports whether a candidate carries everything storage requires.
// It runs after extraction and before any write, so partially-rendered
// cards never reach the database. Optional fields (hirer, description)
// don't participate.
func Validate(c Candidate) bool {
	return c.JobID != "" &&
		c.Title != "" &&
		c.Company != "" &&
		c.Location != "" &&
		c.JobLink != ""
}
