package main

import (
	"html/template"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLinebreaks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  template.HTML
	}{
		{
			name:  "single paragraph",
			input: "Hello world",
			want:  "<p>Hello world</p>",
		},
		{
			name:  "two paragraphs",
			input: "First paragraph\n\nSecond paragraph",
			want:  "<p>First paragraph</p>\n<p>Second paragraph</p>",
		},
		{
			name:  "line break within paragraph",
			input: "Line one\nLine two",
			want:  "<p>Line one<br>Line two</p>",
		},
		{
			name:  "windows line endings",
			input: "Line one\r\nLine two",
			want:  "<p>Line one<br>Line two</p>",
		},
		{
			name:  "html escaped",
			input: "<script>alert('xss')</script>",
			want:  "<p>&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;</p>",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := linebreaks(tt.input)
			if got != tt.want {
				t.Errorf("linebreaks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	templates := loadTemplates(time.UTC)

	for _, page := range pages {
		if templates[page] == nil {
			t.Errorf("template %s not loaded", page)
		}
	}
}

func TestRender_LocalTime(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	blog := setupTestBlog(t)
	blog.templates = loadTemplates(tokyo)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	blog.render(w, "index.html", blog.pageData(w, r, "Posts", map[string]any{
		"Posts": []Post{{ID: 1, Title: "T", Body: "B", CreatedAt: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)}},
	}))

	if !strings.Contains(w.Body.String(), "2024-03-02 00:30") {
		t.Errorf("expected timestamp shown in Tokyo time, got %s", w.Body.String())
	}
}

func TestRender_UnknownPage(t *testing.T) {
	blog := setupTestBlog(t)

	w := httptest.NewRecorder()
	blog.render(w, "missing.html", nil)

	if w.Code != 500 {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}
