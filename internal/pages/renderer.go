// Package pages serves the server-rendered HTML views.
package pages

import (
	"embed"
	"html/template"
	"io"

	"github.com/anonto42/photogram/backend/internal/hashtag"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer implements echo.Renderer over the embedded templates. Each page
// is parsed together with the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template
func NewRenderer() (*Renderer, error) {
	policy := bluemonday.UGCPolicy()
	funcs := template.FuncMap{
		// safeHTML sanitizes stored comment HTML before it is trusted
		"safeHTML": func(s string) template.HTML {
			return template.HTML(policy.Sanitize(s))
		},
		"tagPath": hashtag.TagPath,
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{"post_list.html", "post_create.html", "login.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the base layout of page name
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return echo.ErrNotFound
	}
	return t.ExecuteTemplate(w, "base", data)
}
