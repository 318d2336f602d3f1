// Package render turns a query state snapshot into something a user can see.
package render

import (
	"fmt"

	"jobboard/pkg/query"
	"jobboard/pkg/roles"
)

const (
	ParityEven = "even"
	ParityOdd  = "odd"
)

type Row struct {
	Index       int    `json:"index"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	Parity      string `json:"parity"`
}

type Pagination struct {
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	PrevDisabled bool   `json:"prev_disabled"`
	NextDisabled bool   `json:"next_disabled"`
	Label        string `json:"label"`
}

type RoleOption struct {
	Label    string `json:"label"`
	Keyword  string `json:"keyword"`
	Selected bool   `json:"selected"`
}

// View is everything the page shows, derived from one State.
type View struct {
	Title      string       `json:"title"`
	Keyword    string       `json:"keyword"`
	Roles      []RoleOption `json:"roles"`
	Error      string       `json:"error,omitempty"`
	Loading    bool         `json:"loading"`
	ShowTable  bool         `json:"show_table"`
	Columns    []string     `json:"columns"`
	Rows       []Row        `json:"rows"`
	Pagination Pagination   `json:"pagination"`
}

// Build derives the view for s. It has no side effects.
func Build(s query.State) View {
	v := View{
		Title:     "Jobs",
		Keyword:   s.Keyword,
		Roles:     roleOptions(s.Keyword),
		Error:     s.Error,
		Loading:   s.Loading,
		ShowTable: !s.Loading,
		Columns:   []string{"Company", "Job Title"},
		Rows:      []Row{},
		Pagination: Pagination{
			Page:         s.Page,
			TotalPages:   s.TotalPages,
			PrevDisabled: s.Page <= 1,
			NextDisabled: s.Page >= s.TotalPages,
			Label:        fmt.Sprintf("Page %d of %d", s.Page, s.TotalPages),
		},
	}

	if v.ShowTable {
		for i, job := range s.Jobs {
			v.Rows = append(v.Rows, Row{
				Index:       i,
				CompanyName: job.CompanyName,
				JobTitle:    job.JobTitle,
				Parity:      parity(i),
			})
		}
	}

	return v
}

func parity(i int) string {
	if i%2 == 0 {
		return ParityEven
	}
	return ParityOdd
}

func roleOptions(keyword string) []RoleOption {
	opts := roles.Options()
	out := make([]RoleOption, 0, len(opts))
	for _, opt := range opts {
		out = append(out, RoleOption{
			Label:    opt.Label,
			Keyword:  opt.Keyword,
			Selected: opt.Keyword == keyword,
		})
	}
	return out
}
