package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/google/uuid"
)

// EditTagHeaderName carries the edit counter of an update request.
const EditTagHeaderName = "X-Edit-Tag"

// HTTPClient talks to the REST posts API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewDraftHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type draftBody struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Image   *string `json:"image,omitempty"`
}

type postResponse struct {
	ID    string `json:"id"`
	Likes int    `json:"likes"`
}

type imageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

type toggleLikeResponse struct {
	Post    postResponse `json:"post"`
	IsLiked bool         `json:"isLiked"`
}

type pingResponse struct {
	Status string `json:"status"`
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) CreateDraft(ctx context.Context, fields models.DraftFields) (models.DraftID, error) {
	title, content := fields.Title, fields.Content
	body := draftBody{Title: &title, Content: &content}
	if fields.Image != nil {
		img := fields.Image.URL
		body.Image = &img
	}

	var resp postResponse
	if err := c.doJSON(ctx, http.MethodPost, "/posts/drafts", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: create returned no id", ErrBadResponse)
	}
	return models.DraftID(resp.ID), nil
}

func (c *HTTPClient) UpdateDraft(ctx context.Context, id models.DraftID, patch models.DraftPatch) error {
	hdr := http.Header{}
	hdr.Set(EditTagHeaderName, strconv.FormatUint(patch.Tag, 10))
	return c.doJSON(ctx, http.MethodPatch, "/posts/drafts/"+url.PathEscape(string(id)), hdr, bodyFromPatch(&patch), nil)
}

func (c *HTTPClient) PublishDraft(ctx context.Context, id models.DraftID, patch *models.DraftPatch) (models.PostID, error) {
	var resp postResponse
	path := "/posts/drafts/" + url.PathEscape(string(id)) + "/publish"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, bodyFromPatch(patch), &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: publish returned no id", ErrBadResponse)
	}
	return models.PostID(resp.ID), nil
}

func (c *HTTPClient) DiscardDraft(ctx context.Context, id models.DraftID) error {
	return c.doJSON(ctx, http.MethodDelete, "/posts/drafts/"+url.PathEscape(string(id)), nil, nil, nil)
}

func (c *HTTPClient) UploadImage(ctx context.Context, data []byte, mimeType string) (models.ImageRef, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, uuid.NewString()))
	part.Set("Content-Type", mimeType)
	w, err := mw.CreatePart(part)
	if err != nil {
		return models.ImageRef{}, err
	}
	if _, err := w.Write(data); err != nil {
		return models.ImageRef{}, err
	}
	if err := mw.Close(); err != nil {
		return models.ImageRef{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/posts/upload-image", &buf)
	if err != nil {
		return models.ImageRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp imageUploadResponse
	if err := c.do(req, &resp); err != nil {
		return models.ImageRef{}, err
	}
	if resp.ImageURL == "" {
		return models.ImageRef{}, fmt.Errorf("%w: upload returned no url", ErrBadResponse)
	}
	return models.ImageRef{URL: resp.ImageURL, Filename: resp.Filename}, nil
}

func (c *HTTPClient) ToggleLike(ctx context.Context, id models.PostID) (models.LikeState, error) {
	var resp toggleLikeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(string(id))+"/toggle-like", nil, nil, &resp); err != nil {
		return models.LikeState{}, err
	}
	return models.LikeState{Liked: resp.IsLiked, Likes: resp.Post.Likes}, nil
}

func bodyFromPatch(p *models.DraftPatch) draftBody {
	var b draftBody
	if p == nil {
		return b
	}
	b.Title = p.Title
	b.Content = p.Content
	switch {
	case p.Image != nil:
		img := p.Image.URL
		b.Image = &img
	case p.ClearImage:
		none := ""
		b.Image = &none
	}
	return b
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, hdr http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	return c.do(req, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(b))
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("request failed: %s; body: %s", resp.Status, msg)
	}
}
