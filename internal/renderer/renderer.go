package renderer

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/damacus/ironshelf/internal/explorer"
	"github.com/damacus/ironshelf/internal/i18n"
	"github.com/damacus/ironshelf/internal/models"
	"github.com/damacus/ironshelf/internal/utils"
)

//go:embed views
var views embed.FS

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a new TemplateRenderer with pre-parsed templates
func New() (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	if err := r.parseTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

// Funcs are the helpers every template can call.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"size":  utils.FormatFileSize,
		"age":   utils.FormatAge,
		"date":  formatDate,
		"itoa":  strconv.Itoa,
		"lower": strings.ToLower,
		"vals":  hxVals,
		"badge": func(bucket string, v explorer.Visibility) models.VisibilityBadge {
			return models.VisibilityBadge{Bucket: bucket, Visibility: v}
		},
		"partial": func(l *i18n.Localizer, csrf string, data any) models.Partial {
			return models.Partial{I18n: l, CSRF: csrf, Data: data}
		},
	}
}

func (t *TemplateRenderer) parseTemplates() error {
	// Pages get the layout plus the partials they embed
	pages := map[string][]string{
		"connect": {"pages/connect.html"},
		"buckets": {"pages/buckets.html"},
		"browser": {"pages/browser.html", "partials/visibility_badge.html"},
		"error":   {"pages/error.html"},
	}
	for name, files := range pages {
		patterns := append([]string{"views/layouts/base.html"}, prefixed(files)...)
		tmpl, err := template.New(name).Funcs(Funcs()).ParseFS(views, patterns...)
		if err != nil {
			return fmt.Errorf("error parsing page %s: %w", name, err)
		}
		t.Templates[name] = tmpl
	}

	for name := range selfExecutingTemplates {
		tmpl, err := template.New(name).Funcs(Funcs()).ParseFS(views, "views/partials/"+name+".html")
		if err != nil {
			return fmt.Errorf("error parsing partial %s: %w", name, err)
		}
		t.Templates[name] = tmpl
	}
	return nil
}

func prefixed(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = "views/" + f
	}
	return out
}

// selfExecutingTemplates lists templates that execute their own named block instead of "base"
var selfExecutingTemplates = map[string]bool{
	"bucket_create_modal": true,
	"folder_create_modal": true,
	"share_link":          true,
	"bulk_result":         true,
	"visibility_badge":    true,
	"flash":               true,
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}

	// Templates that define their own named block execute that block directly
	if selfExecutingTemplates[name] {
		return tmpl.ExecuteTemplate(w, name, data)
	}

	// All other templates (pages with layout) execute the "base" block
	return tmpl.ExecuteTemplate(w, "base", data)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// hxVals builds the JSON object for an hx-vals attribute from key/value pairs.
func hxVals(kv ...string) (string, error) {
	if len(kv)%2 != 0 {
		return "", fmt.Errorf("vals: odd number of arguments")
	}
	m := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	b, err := json.Marshal(m)
	return string(b), err
}
