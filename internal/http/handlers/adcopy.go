package handlers

import "net/http"

// GenerateAdCopy runs the text-copy pipeline and echoes the request back.
func (a *App) GenerateAdCopy(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		a.error(w, r, err)
		return
	}
	ack, err := a.AdCopy.Run(r.Context(), a.invocation(), raw)
	if err != nil {
		a.error(w, r, err)
		return
	}
	a.raw(w, http.StatusOK, ack)
}
