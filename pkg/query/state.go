package query

import "jobboard/pkg/api"

// State is the working state of one job search.
//
// Jobs always belongs to the last completed fetch for the current
// (Keyword, Page). TotalPages is only refreshed by a fetch of page 1.
type State struct {
	Keyword    string           `json:"keyword"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Jobs       []api.JobPosting `json:"jobs"`
	Loading    bool             `json:"loading"`
	Error      string           `json:"error,omitempty"`
}

func newState() State {
	return State{
		Page:       1,
		TotalPages: 1,
		Jobs:       []api.JobPosting{},
	}
}

func (s State) clone() State {
	out := s
	out.Jobs = make([]api.JobPosting, len(s.Jobs))
	copy(out.Jobs, s.Jobs)
	return out
}

// HasPrevious reports whether a previous page exists.
func (s State) HasPrevious() bool {
	return s.Page > 1
}

// HasNext reports whether a next page exists.
func (s State) HasNext() bool {
	return s.Page < s.TotalPages
}
