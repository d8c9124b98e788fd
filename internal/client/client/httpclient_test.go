package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	vars   map[string]string
	header http.Header
	body   map[string]any
}

type fakeAPI struct {
	router *mux.Router
	last   recordedRequest
}

func newFakeAPI(t *testing.T) (*fakeAPI, *HTTPClient) {
	t.Helper()
	api := &fakeAPI{router: mux.NewRouter()}
	srv := httptest.NewServer(api.router)
	t.Cleanup(srv.Close)
	return api, NewDraftHTTPClient(srv.URL, StaticToken("tok"), 2*time.Second)
}

// handle registers a route that records the request and replies with status
// and the JSON encoding of reply.
func (a *fakeAPI) handle(method, path string, status int, reply any) {
	a.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, vars: mux.Vars(r), header: r.Header.Clone()}
		if r.Header.Get("Content-Type") == "application/json" {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &rec.body)
		}
		a.last = rec

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if reply != nil {
			_ = json.NewEncoder(w).Encode(reply)
		}
	}).Methods(method)
}

func TestHTTPCreateDraft(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPost, "/posts/drafts", http.StatusCreated, map[string]any{"id": "d-1", "status": "draft"})

	id, err := c.CreateDraft(context.Background(), models.DraftFields{Title: "T", Content: "C"})
	require.NoError(t, err)
	assert.Equal(t, models.DraftID("d-1"), id)
	assert.Equal(t, "Bearer tok", api.last.header.Get("Authorization"))
	assert.Equal(t, map[string]any{"title": "T", "content": "C"}, api.last.body)
}

func TestHTTPUpdateDraft_SendsTagHeader(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPatch, "/posts/drafts/{id}", http.StatusOK, map[string]any{"id": "d-1"})

	patch := models.PatchFrom(models.DraftFields{Title: "T", Content: "C", Image: &models.ImageRef{URL: "u"}}, 42)
	require.NoError(t, c.UpdateDraft(context.Background(), "d-1", patch))

	assert.Equal(t, "d-1", api.last.vars["id"])
	assert.Equal(t, "42", api.last.header.Get(EditTagHeaderName))
	assert.Equal(t, map[string]any{"title": "T", "content": "C", "image": "u"}, api.last.body)
}

func TestHTTPUpdateDraft_ClearImageSendsEmptyImage(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPatch, "/posts/drafts/{id}", http.StatusOK, map[string]any{"id": "d-1"})

	base := models.DraftFields{Title: "T", Content: "C", Image: &models.ImageRef{URL: "u"}}
	patch := models.PatchSince(base, models.DraftFields{Title: "T", Content: "C"}, 43)
	require.NoError(t, c.UpdateDraft(context.Background(), "d-1", patch))

	assert.Equal(t, map[string]any{"title": "T", "content": "C", "image": ""}, api.last.body)
}

func TestHTTPPublishDraft_NilPatchSendsEmptyObject(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPost, "/posts/drafts/{id}/publish", http.StatusOK, map[string]any{"id": "p-1", "status": "published"})

	postID, err := c.PublishDraft(context.Background(), "d-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostID("p-1"), postID)
	assert.Equal(t, map[string]any{}, api.last.body)
}

func TestHTTPDiscardDraft(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodDelete, "/posts/drafts/{id}", http.StatusNoContent, nil)

	require.NoError(t, c.DiscardDraft(context.Background(), "d-7"))
	assert.Equal(t, http.MethodDelete, api.last.method)
	assert.Equal(t, "d-7", api.last.vars["id"])
}

func TestHTTPUploadImage_Multipart(t *testing.T) {
	api, c := newFakeAPI(t)

	var gotData []byte
	var gotType string
	api.router.HandleFunc("/posts/upload-image", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotData, _ = io.ReadAll(f)
		gotType = hdr.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":  "ok",
			"imageUrl": "https://api/posts/images/x.png",
			"filename": "x.png",
		})
	}).Methods(http.MethodPost)

	ref, err := c.UploadImage(context.Background(), []byte("PNGDATA"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, models.ImageRef{URL: "https://api/posts/images/x.png", Filename: "x.png"}, ref)
	assert.Equal(t, []byte("PNGDATA"), gotData)
	assert.Equal(t, "image/png", gotType)
}

func TestHTTPToggleLike(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPost, "/posts/{id}/toggle-like", http.StatusOK, map[string]any{
		"post":    map[string]any{"id": "p-1", "likes": 5},
		"isLiked": true,
	})

	st, err := c.ToggleLike(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Liked: true, Likes: 5}, st)
}

func TestHTTPPing(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodGet, "/health", http.StatusOK, map[string]any{"status": "OK"})
	require.NoError(t, c.Ping(context.Background()))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, c := newFakeAPI(t)
			api.handle(http.MethodDelete, "/posts/drafts/{id}", tt.status, map[string]any{"message": "nope"})
			require.ErrorIs(t, c.DiscardDraft(context.Background(), "d-1"), tt.want)
		})
	}
}

func TestHTTPBadRequestKeepsBody(t *testing.T) {
	api, c := newFakeAPI(t)
	api.handle(http.MethodPost, "/posts/drafts", http.StatusBadRequest, map[string]any{"message": "title too long"})

	_, err := c.CreateDraft(context.Background(), models.DraftFields{Title: "T"})
	require.ErrorContains(t, err, "title too long")
}

func TestHTTPTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewDraftHTTPClient(srv.URL, nil, time.Second)
	require.ErrorIs(t, c.DiscardDraft(context.Background(), "d-1"), ErrUnavailable)
}

func TestHTTPTokenErrorIsUnauthorized(t *testing.T) {
	c := NewDraftHTTPClient("127.0.0.1:1", failingTokens{}, time.Second)
	require.ErrorIs(t, c.DiscardDraft(context.Background(), "d-1"), ErrUnauthorized)
}

func TestNewDraftHTTPClient_AddsScheme(t *testing.T) {
	c := NewDraftHTTPClient("example.com:8080/", nil, time.Second)
	require.Equal(t, "http://example.com:8080", c.baseURL)
}
