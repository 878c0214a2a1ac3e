package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
)

type libraryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

// ImageLibrary lists curated images with one-hour links.
func (a *App) ImageLibrary(w http.ResponseWriter, r *http.Request) {
	if a.Library == nil {
		a.json(w, http.StatusNotFound, libraryResponse{Message: "Image library is not configured"})
		return
	}
	assets, err := a.Library.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("bucket", a.Library.Bucket()).Msg("http: list library failed")
		a.json(w, http.StatusBadGateway, libraryResponse{Message: "Error occurred while retrieving assets", Result: err.Error()})
		return
	}
	a.json(w, http.StatusOK, libraryResponse{
		Success: true,
		Message: "Retrieved assets from bucket with name " + a.Library.Bucket(),
		Result:  assets,
	})
}
