package http

import (
	"net/http"

	"budgetmanage/internal/core"
)

type themeJSON struct {
	Value       core.Theme `json:"value"`
	Name        string     `json:"name"`
	Kana        string     `json:"kana"`
	MainColor   string     `json:"mainColor"`
	AccentColor string     `json:"accentColor"`
}

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	themes := core.Themes()
	out := make([]themeJSON, len(themes))
	for i, t := range themes {
		out[i] = themeJSON{
			Value:       t,
			Name:        t.Name(),
			Kana:        t.Kana(),
			MainColor:   t.MainColor(),
			AccentColor: t.AccentColor(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	theme, err := core.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.CreateTemplate(r.Context(), sanitizeInput(req.Title), theme)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleDeleteTemplate leaves categories that used the template in place;
// they drop out of the category list until a template with that id returns.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
