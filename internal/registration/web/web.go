// Package web serves the registration page and its assets from the binary.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"regform/internal/registration/validation"
)

//go:embed static
var staticFS embed.FS

// MessageTTL is how long the form shows a status message.
const MessageTTL = 5 * time.Second

// Option is one <option> of a select.
type Option struct {
	Value string
	Label string
}

var genders = []Option{
	{"male", "Male"},
	{"female", "Female"},
	{"other", "Other"},
}

var countries = []Option{
	{"usa", "United States"},
	{"canada", "Canada"},
	{"uk", "United Kingdom"},
	{"australia", "Australia"},
	{"germany", "Germany"},
	{"france", "France"},
	{"japan", "Japan"},
	{"india", "India"},
	{"brazil", "Brazil"},
	{"other", "Other"},
}

type pageData struct {
	EmailPattern     string
	MessageTTLMillis int64
	Genders          []Option
	Countries        []Option
}

// Handler renders the form page once and serves the static assets.
type Handler struct {
	logger *slog.Logger
	page   []byte
	assets http.Handler
}

// New renders the page template with the shared email pattern.
func New(logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(staticFS, "static/index.html")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		EmailPattern:     validation.BrowserEmailPattern,
		MessageTTLMillis: MessageTTL.Milliseconds(),
		Genders:          genders,
		Countries:        countries,
	})
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger: logger,
		page:   buf.Bytes(),
		assets: http.FileServer(http.FS(sub)),
	}, nil
}

// Register mounts the page and asset routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/index.html", h.handleIndex)
	r.Get("/script.js", h.assets.ServeHTTP)
	r.Get("/styles.css", h.assets.ServeHTTP)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.page); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write index page", "error", err)
	}
}
