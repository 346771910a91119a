package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/verte-zerg/levelscore/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type indexPage struct {
	Level    string
	Config   model.LevelConfig
	GameOver bool
}

// renderPage executes into a buffer so template errors still produce a clean 500.
func (h *handler) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Printf("render %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
