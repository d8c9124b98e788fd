// Package imagestore uploads draft cover images straight to S3 compatible
// object storage, bypassing the backend upload endpoint.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/netx"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var ErrNoBucket = errors.New("s3 bucket is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadToPresignedURL = netx.UploadToPresignedURL

	now = time.Now
)

// Config describes the bucket images go to.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix under which stored objects are readable.
	// Defaults to Endpoint/Bucket, or the AWS virtual-hosted bucket URL when
	// there is no Endpoint.
	PublicBaseURL string
}

// S3Store implements upload.ImageUploader.
type S3Store struct {
	cfg     Config
	presign *s3.PresignClient
	http    *http.Client
}

func NewS3Store(ctx context.Context, cfg Config, httpClient *http.Client) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{cfg: cfg, presign: newS3PresignClient(client), http: httpClient}, nil
}

// UploadImage stores data under a fresh key and returns its public URL.
func (s *S3Store) UploadImage(ctx context.Context, data []byte, mimeType string) (models.ImageRef, error) {
	key := objectKey(mimeType)

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(mimeType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to presign image upload: %w", err)
	}

	if err := uploadToPresignedURL(ctx, s.http, req.URL, data, mimeType); err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to upload image: %w", err)
	}

	return models.ImageRef{URL: s.publicURL(key), Filename: key[strings.LastIndex(key, "/")+1:]}, nil
}

func (s *S3Store) publicURL(key string) string {
	base := s.cfg.PublicBaseURL
	switch {
	case base != "":
	case s.cfg.Endpoint != "":
		base = strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func objectKey(mimeType string) string {
	d := now()
	ext := ""
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	default:
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
