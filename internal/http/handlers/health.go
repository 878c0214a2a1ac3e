package handlers

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	// Library reports whether GET /v1/library is served.
	Library bool `json:"library"`
}

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Service: "adstudio", Library: a.Library != nil})
}
