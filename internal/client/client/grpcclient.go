package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const draftService = "/drafts.v1.DraftService/"

// GRPCClient talks to the draft service over gRPC. Requests and replies
// are google.protobuf.Struct messages.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	tokens      TokenSource
	timeout     time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.tokens != nil {
		token, err := s.tokens.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewDraftGRPCClient(endpointURL string, tokens TokenSource, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.cc = conn
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := &structpb.Struct{}
	if err := s.cc.Invoke(ctx, draftService+method, in, out); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.call(ctx, "Ping", map[string]any{})
	if err != nil {
		return err
	}
	if stringField(resp, "status") != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) CreateDraft(ctx context.Context, fields models.DraftFields) (models.DraftID, error) {
	resp, err := s.call(ctx, "CreateDraft", fieldsToMap(fields))
	if err != nil {
		return "", err
	}
	id := stringField(resp, "id")
	if id == "" {
		return "", fmt.Errorf("%w: create returned no id", ErrBadResponse)
	}
	return models.DraftID(id), nil
}

func (s *GRPCClient) UpdateDraft(ctx context.Context, id models.DraftID, patch models.DraftPatch) error {
	req := patchToMap(&patch)
	req["id"] = string(id)
	req["tag"] = patch.Tag
	_, err := s.call(ctx, "UpdateDraft", req)
	return err
}

func (s *GRPCClient) PublishDraft(ctx context.Context, id models.DraftID, patch *models.DraftPatch) (models.PostID, error) {
	req := patchToMap(patch)
	req["id"] = string(id)
	resp, err := s.call(ctx, "PublishDraft", req)
	if err != nil {
		return "", err
	}
	postID := stringField(resp, "id")
	if postID == "" {
		return "", fmt.Errorf("%w: publish returned no id", ErrBadResponse)
	}
	return models.PostID(postID), nil
}

func (s *GRPCClient) DiscardDraft(ctx context.Context, id models.DraftID) error {
	_, err := s.call(ctx, "DiscardDraft", map[string]any{"id": string(id)})
	return err
}

func (s *GRPCClient) UploadImage(ctx context.Context, data []byte, mimeType string) (models.ImageRef, error) {
	resp, err := s.call(ctx, "UploadImage", map[string]any{
		"mimeType": mimeType,
		"data":     base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return models.ImageRef{}, err
	}
	ref := models.ImageRef{URL: stringField(resp, "url"), Filename: stringField(resp, "filename")}
	if ref.URL == "" {
		return models.ImageRef{}, fmt.Errorf("%w: upload returned no url", ErrBadResponse)
	}
	return ref, nil
}

func (s *GRPCClient) ToggleLike(ctx context.Context, id models.PostID) (models.LikeState, error) {
	resp, err := s.call(ctx, "ToggleLike", map[string]any{"id": string(id)})
	if err != nil {
		return models.LikeState{}, err
	}
	fields := resp.GetFields()
	return models.LikeState{
		Liked: fields["isLiked"].GetBoolValue(),
		Likes: int(fields["likes"].GetNumberValue()),
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.NotFound:
		return ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func fieldsToMap(f models.DraftFields) map[string]any {
	m := map[string]any{"title": f.Title, "content": f.Content}
	if f.Image != nil {
		m["image"] = f.Image.URL
	}
	return m
}

func patchToMap(p *models.DraftPatch) map[string]any {
	m := map[string]any{}
	if p == nil {
		return m
	}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Content != nil {
		m["content"] = *p.Content
	}
	switch {
	case p.Image != nil:
		m["image"] = p.Image.URL
	case p.ClearImage:
		m["image"] = ""
	}
	return m
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

