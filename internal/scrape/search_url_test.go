package scrape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	tests := []struct {
		name      string
		keyword   string
		geoID     string
		easyApply bool
		want      string
	}{
		{
			name:    "keyword only",
			keyword: "engineer",
			want:    "https://x.test/search?keywords=engineer",
		},
		{
			name:      "all parameters",
			keyword:   "golang engineer",
			geoID:     "123",
			easyApply: true,
			want:      "https://x.test/search?f_AL=true&geoId=123&keywords=golang+engineer",
		},
		{
			name:    "geo without easy apply",
			keyword: "sre",
			geoID:   "90000070",
			want:    "https://x.test/search?geoId=90000070&keywords=sre",
		},
		{
			name:      "easy apply without geo",
			keyword:   "sre",
			easyApply: true,
			want:      "https://x.test/search?f_AL=true&keywords=sre",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SearchURL("https://x.test/search", tc.keyword, tc.geoID, tc.easyApply)
			require.Equal(t, tc.want, got)
		})
	}
}
