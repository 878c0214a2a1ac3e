// Package handlers exposes the generation pipelines and history reads over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/pipeline"
	"adstudio/internal/storage"
)

const maxRequestBytes = 1 << 20

type AdCopyRunner interface {
	Run(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (json.RawMessage, error)
}

type ImageRunner interface {
	Run(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (domain.ImageResponse, error)
}

type LibraryLister interface {
	List(ctx context.Context) ([]storage.LibraryAsset, error)
	Bucket() string
}

// App holds the collaborators shared by all handlers. Library may be nil when
// no assets bucket is configured.
type App struct {
	AdCopy  AdCopyRunner
	Images  ImageRunner
	History domain.MoodboardRepository
	Library LibraryLister
	// FunctionARN stands in for the Lambda context when pipelines run in
	// the HTTP server.
	FunctionARN string
}

func (a *App) invocation() pipeline.Invocation {
	return pipeline.Invocation{FunctionARN: a.FunctionARN}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) raw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// error maps the domain taxonomy onto HTTP status codes and logs server-side
// failures through the request logger.
func (a *App) error(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", code).Msg("http: request failed")
	}
	a.json(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBackendResponse),
		errors.Is(err, domain.ErrResponseParse),
		errors.Is(err, domain.ErrDecode):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Join(domain.ErrMalformedInput, err)
	}
	return raw, nil
}
