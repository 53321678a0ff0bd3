package main

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"
)

// --- Session helpers ---

// sessionKeys expands the configured secret into an HMAC key and an AES key.
func sessionKeys(secret string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("chirp session"))
	hashKey = make([]byte, 32)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(r, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(r, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func newStore(secret string) (*sessions.CookieStore, error) {
	hashKey, blockKey, err := sessionKeys(secret)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}
	s := sessions.NewCookieStore(hashKey, blockKey)
	s.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return s, nil
}

func (a *app) addFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := a.sessions.Get(r, a.cfg.Session.Name)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		log.WithError(err).Warn("save session")
	}
}

func (a *app) getFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := a.sessions.Get(r, a.cfg.Session.Name)
	flashes := session.Flashes()
	if len(flashes) > 0 {
		session.Save(r, w)
	}
	out := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// --- Clipboard ---

// Clipboard receives share links. Writes are best-effort: callers ignore the error.
type Clipboard interface {
	Copy(w http.ResponseWriter, r *http.Request, text string) error
}

// flashClipboard hands the link back to the browser as a flash message.
type flashClipboard struct {
	a *app
}

func (c flashClipboard) Copy(w http.ResponseWriter, r *http.Request, text string) error {
	session, err := c.a.sessions.Get(r, c.a.cfg.Session.Name)
	if err != nil && session == nil {
		return err
	}
	session.AddFlash("Link copied: " + text)
	return session.Save(r, w)
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// --- Template helpers ---

//go:embed templates/*.html
var templateFS embed.FS

type pages map[string]*exec.Template

func loadPages() (pages, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	p := make(pages, len(entries))
	for _, e := range entries {
		src, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		tpl, err := gonja.FromString(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		p[e.Name()] = tpl
	}
	return p, nil
}

func (p pages) render(name string, data map[string]interface{}) (string, error) {
	tpl, ok := p[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, exec.NewContext(data)); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// renderTemplate renders templateFile into the layout with the sidebar,
// viewer and pending flashes filled in.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateFile string, data map[string]interface{}) {
	content, err := a.pages.render(templateFile, data)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	layout := map[string]interface{}{
		"title":       data["title"],
		"content":     content,
		"viewer":      userView(a.viewer.User),
		"flashes":     a.getFlashes(w, r),
		"trending":    []map[string]interface{}{},
		"suggestions": []map[string]interface{}{},
	}
	ctx := r.Context()
	if trending, err := a.store.Trending(ctx); err == nil {
		layout["trending"] = trendingViews(trending)
	} else {
		log.WithError(err).Warn("load trending")
	}
	if users, err := a.store.Users(ctx); err == nil {
		layout["suggestions"] = suggestionViews(a.viewer, users)
	} else {
		log.WithError(err).Warn("load suggestions")
	}

	page, err := a.pages.render("layout.html", layout)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, page)
}

func (a *app) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
