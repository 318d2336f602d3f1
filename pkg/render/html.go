package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").Funcs(template.FuncMap{
		"buttonColor": func(disabled bool) template.CSS {
			if disabled {
				return "#ccc"
			}
			return "#007BFF"
		},
		"rowColor": func(parity string) template.CSS {
			if parity == ParityEven {
				return "#f2f2f2"
			}
			return "#fff"
		},
	}).ParseFS(templateFS, "templates/page.html"),
)

// HTMLRenderer writes a View as a complete HTML page.
type HTMLRenderer struct {
	// RefreshSeconds, when positive, makes a loading page reload itself.
	RefreshSeconds int
}

func NewHTMLRenderer(refreshSeconds int) *HTMLRenderer {
	return &HTMLRenderer{RefreshSeconds: refreshSeconds}
}

type pageData struct {
	View
	Refresh int
}

func (r *HTMLRenderer) Render(w io.Writer, v View) error {
	data := pageData{View: v}
	if v.Loading && r.RefreshSeconds > 0 {
		data.Refresh = r.RefreshSeconds
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
