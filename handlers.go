package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

func (b *Blog) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func parsePostID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// postFields reads title and body from a parsed form. Both fields must be
// present; empty values are accepted.
func postFields(w http.ResponseWriter, r *http.Request) (title, body string, ok bool) {
	for _, field := range []string{"title", "body"} {
		if !r.PostForm.Has(field) {
			http.Error(w, field+" is required", http.StatusBadRequest)
			return "", "", false
		}
	}
	return r.PostFormValue("title"), r.PostFormValue("body"), true
}

// writePostError answers the errors a post write can produce.
func (b *Blog) writePostError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrTooLong):
		msg := fmt.Sprintf("title must be at most %d characters and body at most %d", maxTitleLen, maxBodyLen)
		http.Error(w, msg, http.StatusBadRequest)
	default:
		b.serverError(w, r, err)
	}
}

// loadPost fetches the post named in the path, answering 400/404/500 itself.
func (b *Blog) loadPost(w http.ResponseWriter, r *http.Request) (Post, bool) {
	id, ok := parsePostID(w, r)
	if !ok {
		return Post{}, false
	}

	post, err := b.store.PostByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return Post{}, false
	}
	if err != nil {
		b.serverError(w, r, err)
		return Post{}, false
	}
	return post, true
}

func (b *Blog) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := b.store.Posts(r.Context())
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, "index.html", b.pageData(w, r, "Posts", map[string]any{
		"Posts": posts,
	}))
}

func (b *Blog) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.render(w, "create.html", b.pageData(w, r, "New Post", nil))
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}
	title, body, ok := postFields(w, r)
	if !ok {
		return
	}

	if _, err := b.store.CreatePost(r.Context(), title, body); err != nil {
		b.writePostError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		post, ok := b.loadPost(w, r)
		if !ok {
			return
		}
		b.render(w, "update.html", b.pageData(w, r, fmt.Sprintf("Editing %q", post.Title), map[string]any{
			"Post": post,
		}))
		return
	}

	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	if !parseFormWithCSRF(w, r) {
		return
	}
	title, body, ok := postFields(w, r)
	if !ok {
		return
	}

	if err := b.store.UpdatePost(r.Context(), id, title, body); err != nil {
		b.writePostError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		post, ok := b.loadPost(w, r)
		if !ok {
			return
		}
		b.render(w, "delete.html", b.pageData(w, r, fmt.Sprintf("Deleting %q", post.Title), map[string]any{
			"Post": post,
		}))
		return
	}

	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	if !parseFormWithCSRF(w, r) {
		return
	}

	if err := b.store.DeletePost(r.Context(), id); err != nil {
		b.writePostError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := b.store.db.PingContext(r.Context()); err != nil {
		b.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}
