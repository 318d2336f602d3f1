package query

import "errors"

const (
	// MsgNoRoleSelected is shown when Fetch is pressed without a role.
	MsgNoRoleSelected = "Please select a valid role before fetching."
	// MsgFetchFailed is the single message shown for every fetch failure.
	MsgFetchFailed = "Failed to fetch data. Please try again."
)

var ErrNoRoleSelected = errors.New("no role selected")

// ValidationError is a locally detected problem; no request was made.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UserMessage is the banner text for the error.
func (e *ValidationError) UserMessage() string {
	return MsgNoRoleSelected
}

// FetchError wraps any transport, status or payload failure of the scrape
// call. Only UserMessage is meant for display.
type FetchError struct {
	Keyword string
	Page    int
	Err     error
}

func (e *FetchError) Error() string {
	return "fetch jobs: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) UserMessage() string {
	return MsgFetchFailed
}
