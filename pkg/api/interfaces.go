package api

import (
	"context"
	"errors"
	"fmt"
)

// JobPosting is one row of a scrape result, kept verbatim from the service.
type JobPosting struct {
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
}

// ScrapeResponse is one page of postings. TotalPages is only filled by the
// service for the first page of a keyword.
type ScrapeResponse struct {
	Jobs       []JobPosting `json:"jobs"`
	TotalPages *int         `json:"total_pages"`
}

// JobsClient fetches one page of postings for a keyword.
type JobsClient interface {
	FetchJobs(ctx context.Context, keyword string, page int) (*ScrapeResponse, error)
}

// ErrMalformedPayload is returned when a 2xx body is not a scrape response.
var ErrMalformedPayload = errors.New("malformed scrape payload")

// StatusError reports a non-2xx answer from the scrape service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scrape service returned status %d", e.Code)
	}
	return fmt.Sprintf("scrape service returned status %d: %s", e.Code, e.Body)
}
