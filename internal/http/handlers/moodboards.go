package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/domain"
)

// GenerateMoodboardImages runs the image pipeline. The pipeline's own status
// (200 with the last event, or 400 on a persistence/publish failure) is used
// as the HTTP status.
func (a *App) GenerateMoodboardImages(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		a.error(w, r, err)
		return
	}
	resp, err := a.Images.Run(r.Context(), a.invocation(), raw)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, resp.StatusCode, resp)
}

func (a *App) ListMoodboardImages(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		a.error(w, r, fmt.Errorf("moodboard id is required: %w", domain.ErrMalformedInput))
		return
	}
	items, err := a.History.ListByMoodboard(r.Context(), id)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"moodboard_id": id, "items": items})
}
