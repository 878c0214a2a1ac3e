package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/domain"
	"adstudio/internal/pipeline"
	"adstudio/internal/storage"
)

type adCopyFunc func(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (json.RawMessage, error)

func (f adCopyFunc) Run(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (json.RawMessage, error) {
	return f(ctx, inv, raw)
}

type imageFunc func(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (domain.ImageResponse, error)

func (f imageFunc) Run(ctx context.Context, inv pipeline.Invocation, raw json.RawMessage) (domain.ImageResponse, error) {
	return f(ctx, inv, raw)
}

type fakeHistory struct {
	items map[string][]domain.GeneratedAsset
	err   error
}

func (f *fakeHistory) Put(context.Context, domain.GeneratedAsset) error { return f.err }

func (f *fakeHistory) ListByMoodboard(_ context.Context, id string) ([]domain.GeneratedAsset, error) {
	return f.items[id], f.err
}

type fakeLibrary struct {
	assets []storage.LibraryAsset
	err    error
}

func (f *fakeLibrary) List(context.Context) ([]storage.LibraryAsset, error) { return f.assets, f.err }
func (f *fakeLibrary) Bucket() string                                        { return "assets-bucket" }

func TestGenerateAdCopy(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		runErr   error
		wantCode int
	}{
		{name: "ack", body: `{"requestorId":"r1"}`, wantCode: http.StatusOK},
		{name: "invalid json", body: `{`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{}`, runErr: fmt.Errorf("no context: %w", domain.ErrMalformedInput), wantCode: http.StatusBadRequest},
		{name: "backend down", body: `{}`, runErr: fmt.Errorf("bedrock: %w", domain.ErrBackendUnavailable), wantCode: http.StatusServiceUnavailable},
		{name: "unparsable answer", body: `{}`, runErr: domain.ErrResponseParse, wantCode: http.StatusBadGateway},
		{name: "dispatch", body: `{}`, runErr: domain.ErrDispatch, wantCode: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var gotARN string
			app := &App{
				FunctionARN: "arn:aws:lambda:eu-west-1:123456789012:function:adcopy",
				AdCopy: adCopyFunc(func(_ context.Context, inv pipeline.Invocation, raw json.RawMessage) (json.RawMessage, error) {
					gotARN = inv.FunctionARN
					if tc.runErr != nil {
						return nil, tc.runErr
					}
					return raw, nil
				}),
			}

			rr := httptest.NewRecorder()
			app.GenerateAdCopy(rr, httptest.NewRequest(http.MethodPost, "/v1/ad-copy", strings.NewReader(tc.body)))

			if rr.Code != tc.wantCode {
				t.Fatalf("status mismatch: got %d want %d (%s)", rr.Code, tc.wantCode, rr.Body.String())
			}
			if tc.wantCode == http.StatusOK {
				if strings.TrimSpace(rr.Body.String()) != tc.body {
					t.Fatalf("expected request echo, got %s", rr.Body.String())
				}
				if gotARN != app.FunctionARN {
					t.Fatalf("invocation ARN mismatch: %q", gotARN)
				}
			}
		})
	}
}

func TestGenerateMoodboardImagesUsesPipelineStatus(t *testing.T) {
	last := domain.PublishEvent{ID: "mb-1", Domain: "moodboard"}
	cases := []struct {
		name     string
		resp     domain.ImageResponse
		wantCode int
	}{
		{name: "success", resp: domain.ImageSucceeded(last), wantCode: http.StatusOK},
		{name: "failed", resp: domain.ImageFailed(), wantCode: http.StatusBadRequest},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := &App{Images: imageFunc(func(context.Context, pipeline.Invocation, json.RawMessage) (domain.ImageResponse, error) {
				return tc.resp, nil
			})}

			rr := httptest.NewRecorder()
			app.GenerateMoodboardImages(rr, httptest.NewRequest(http.MethodPost, "/v1/moodboards/images", strings.NewReader(`{"moodboardId":"mb-1"}`)))

			if rr.Code != tc.wantCode {
				t.Fatalf("status mismatch: got %d want %d", rr.Code, tc.wantCode)
			}
			var got domain.ImageResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if got.StatusCode != tc.resp.StatusCode || got.Message != tc.resp.Message {
				t.Fatalf("response mismatch: %+v", got)
			}
		})
	}
}

func TestGenerateMoodboardImagesPipelineError(t *testing.T) {
	app := &App{Images: imageFunc(func(context.Context, pipeline.Invocation, json.RawMessage) (domain.ImageResponse, error) {
		return domain.ImageResponse{}, fmt.Errorf("decode: %w", domain.ErrDecode)
	})}

	rr := httptest.NewRecorder()
	app.GenerateMoodboardImages(rr, httptest.NewRequest(http.MethodPost, "/v1/moodboards/images", strings.NewReader(`{}`)))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status mismatch: got %d", rr.Code)
	}
}

func TestListMoodboardImages(t *testing.T) {
	app := &App{History: &fakeHistory{items: map[string][]domain.GeneratedAsset{
		"mb-1": {{ID: "a1", MoodboardID: "mb-1", Prompt: "beach"}},
	}}}
	r := chi.NewRouter()
	r.Get("/v1/moodboards/{id}/images", app.ListMoodboardImages)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/moodboards/mb-1/images", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status mismatch: got %d", rr.Code)
	}
	var payload struct {
		MoodboardID string                  `json:"moodboard_id"`
		Items       []domain.GeneratedAsset `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.MoodboardID != "mb-1" || len(payload.Items) != 1 || payload.Items[0].Prompt != "beach" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestListMoodboardImagesPersistenceError(t *testing.T) {
	app := &App{History: &fakeHistory{err: fmt.Errorf("query: %w", domain.ErrPersistence)}}
	r := chi.NewRouter()
	r.Get("/v1/moodboards/{id}/images", app.ListMoodboardImages)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/moodboards/mb-1/images", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status mismatch: got %d", rr.Code)
	}
}

func TestImageLibrary(t *testing.T) {
	t.Run("lists assets", func(t *testing.T) {
		app := &App{Library: &fakeLibrary{assets: []storage.LibraryAsset{{
			Original: "https://o", Thumbnail: "https://t", Bucket: "assets-bucket", Key: "thumbs/a.png",
		}}}}
		rr := httptest.NewRecorder()
		app.ImageLibrary(rr, httptest.NewRequest(http.MethodGet, "/v1/library", nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("status mismatch: got %d", rr.Code)
		}
		var payload struct {
			Success bool                   `json:"success"`
			Message string                 `json:"message"`
			Result  []storage.LibraryAsset `json:"result"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !payload.Success || len(payload.Result) != 1 || payload.Result[0].Key != "thumbs/a.png" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		if !strings.Contains(payload.Message, "assets-bucket") {
			t.Fatalf("message should name the bucket: %q", payload.Message)
		}
	})

	t.Run("list failure", func(t *testing.T) {
		app := &App{Library: &fakeLibrary{err: errors.New("access denied")}}
		rr := httptest.NewRecorder()
		app.ImageLibrary(rr, httptest.NewRequest(http.MethodGet, "/v1/library", nil))
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("status mismatch: got %d", rr.Code)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		app := &App{}
		rr := httptest.NewRecorder()
		app.ImageLibrary(rr, httptest.NewRequest(http.MethodGet, "/v1/library", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status mismatch: got %d", rr.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name        string
		app         *App
		wantLibrary bool
	}{
		{name: "without library", app: &App{}},
		{name: "with library", app: &App{Library: &fakeLibrary{}}, wantLibrary: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			tc.app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status mismatch: got %d", rr.Code)
			}
			var payload healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if payload.Status != "ok" || payload.Service != "adstudio" || payload.Library != tc.wantLibrary {
				t.Fatalf("unexpected health payload: %+v", payload)
			}
		})
	}
}
