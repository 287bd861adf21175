package scrape

import "net/url"

// SearchURL builds the listing search URL. keyword is mandatory; geoID and
// the easy-apply flag are included only when provided.
func SearchURL(baseURL, keyword, geoID string, easyApply bool) string {
	params := url.Values{}
	params.Set("keywords", keyword)
	if geoID != "" {
		params.Set("geoId", geoID)
	}
	if easyApply {
		params.Set("f_AL", "true")
	}
	return baseURL + "?" + params.Encode()
}
