package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"index.html",
	"create.html",
	"update.html",
	"delete.html",
	"signup.html",
	"login.html",
}

func linebreaks(s string) template.HTML {
	s = template.HTMLEscapeString(s)

	paragraphs := strings.Split(s, "\n\n")
	var result []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			p = strings.ReplaceAll(p, "\r\n", "\n")
			p = strings.ReplaceAll(p, "\n", "<br>")
			result = append(result, "<p>"+p+"</p>")
		}
	}

	return template.HTML(strings.Join(result, "\n"))
}

func loadTemplates(loc *time.Location) map[string]*template.Template {
	templates := make(map[string]*template.Template)

	funcs := template.FuncMap{
		"linebreaks": linebreaks,
		"localtime": func(t time.Time) string {
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFS(templateFS,
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}

// pageData merges the fields every page needs into extra.
func (b *Blog) pageData(w http.ResponseWriter, r *http.Request, title string, extra map[string]any) map[string]any {
	data := map[string]any{
		"Title":       title,
		"AuthEnabled": b.cfg.AuthEnabled,
		"LoggedIn":    b.cfg.AuthEnabled && b.isAuthenticated(r),
		"CSRFToken":   b.ensureCSRFToken(w, r),
		"MaxTitleLen": maxTitleLen,
		"MaxBodyLen":  maxBodyLen,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (b *Blog) render(w http.ResponseWriter, page string, data map[string]any) {
	tmpl, ok := b.templates[page]
	if !ok {
		b.logger.Error("unknown template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		b.logger.Error("rendering template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
