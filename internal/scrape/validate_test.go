package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCandidate() Candidate {
	return Candidate{
		JobID:    "4012345678",
		JobLink:  "https://x.test/jobs/view/4012345678",
		Title:    "Backend Engineer",
		Company:  "Acme",
		Location: "Remote",
	}
}

func TestValidate(t *testing.T) {
	require.True(t, Validate(validCandidate()))

	tests := []struct {
		name  string
		blank func(*Candidate)
	}{
		{"missing job id", func(c *Candidate) { c.JobID = "" }},
		{"missing link", func(c *Candidate) { c.JobLink = "" }},
		{"missing title", func(c *Candidate) { c.Title = "" }},
		{"missing company", func(c *Candidate) { c.Company = "" }},
		{"missing location", func(c *Candidate) { c.Location = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validCandidate()
			tc.blank(&c)
			require.False(t, Validate(c))
		})
	}
}

func TestValidateOptionalFields(t *testing.T) {
	c := validCandidate()
	c.HirerName = ""
	c.HirerProfileLink = ""
	c.Description = ""
	require.True(t, Validate(c))
}
