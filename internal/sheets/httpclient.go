package sheets

import (
	"time"

	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the Sheets REST API root.
	DefaultBaseURL = "https://sheets.googleapis.com/v4"

	defaultTimeout = 30 * time.Second
)

// NewHTTPClient creates the REST client for the Sheets API. Runs make a
// single attempt, so no retry policy is installed.
func NewHTTPClient(baseURL string) *resty.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)
}
