package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf"
	csrfFieldName     = "csrf_token"
)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (b *Blog) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(b.cfg.SessionTTL.Seconds()),
	})
}

func (b *Blog) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   b.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// CSRF protection using double-submit cookie pattern

func (b *Blog) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   b.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(b.cfg.SessionTTL.Seconds()),
	})
}

func getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func validateCSRF(r *http.Request) bool {
	cookieToken := getCSRFToken(r)
	formToken := r.PostFormValue(csrfFieldName)

	if cookieToken == "" || formToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

// parseFormWithCSRF parses the body and checks the CSRF token, writing the
// error response itself when either fails.
func parseFormWithCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// ensureCSRFToken returns existing token or creates a new one
func (b *Blog) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	token := getCSRFToken(r)
	if token != "" {
		return token
	}

	token, err := generateToken()
	if err != nil {
		b.logger.Error("generating csrf token", "error", err)
		return ""
	}
	b.setCSRFCookie(w, token)
	return token
}

// requireAuth wraps handlers that need a logged-in user. With
// authentication disabled it returns next unchanged.
func (b *Blog) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if !b.cfg.AuthEnabled {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.isAuthenticated(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// isAuthenticated checks if the current request has a valid session
func (b *Blog) isAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	_, err = b.store.Session(r.Context(), cookie.Value)
	if err != nil && !errors.Is(err, ErrNotFound) {
		b.logger.Error("looking up session", "error", err)
	}
	return err == nil
}

func (b *Blog) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.render(w, "signup.html", b.pageData(w, r, "Sign up", nil))
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	if !r.PostForm.Has("username") {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	if !r.PostForm.Has("password") {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(r.PostFormValue("password"))
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		http.Error(w, "password must be at most 72 bytes", http.StatusBadRequest)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	username := r.PostFormValue("username")
	if _, err := b.store.CreateUser(r.Context(), username, hash); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			http.Error(w, "username already taken", http.StatusConflict)
			return
		}
		b.serverError(w, r, err)
		return
	}

	b.logger.Info("user signed up", "username", username)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.render(w, "login.html", b.pageData(w, r, "Login", nil))
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := b.store.UserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		b.serverError(w, r, err)
		return
	}
	if err != nil || !checkPassword(user.Password, password) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := b.store.CreateSession(r.Context(), user.ID, b.cfg.SessionTTL)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := b.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			b.serverError(w, r, err)
			return
		}
	}

	b.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
