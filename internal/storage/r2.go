package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// R2Config configures the Cloudflare R2 backend. R2 speaks the S3 API.
type R2Config struct {
	Endpoint        string // <account>.r2.cloudflarestorage.com
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Secure          bool
	PublicURL       string
}

// R2Store is an ObjectStore over an S3-compatible bucket
type R2Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewR2Store creates the client; it does not contact the endpoint
func NewR2Store(cfg R2Config) (*R2Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("r2 endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.Secure,
		Region: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("create r2 client: %w", err)
	}

	return &R2Store{client: client, bucket: cfg.Bucket, publicURL: cfg.PublicURL}, nil
}

func (s *R2Store) Put(ctx context.Context, in *PutInput) error {
	_, err := s.client.PutObject(ctx, s.bucket, in.Key, in.Body, in.Size, minio.PutObjectOptions{
		ContentType:  in.ContentType,
		UserMetadata: in.Metadata,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", in.Key, err)
	}
	return nil
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *R2Store) List(ctx context.Context, prefix string, limit int) ([]Object, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := []Object{}
	truncated := false
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		MaxKeys:      limit + 1,
		WithMetadata: true,
	}) {
		if info.Err != nil {
			return nil, false, fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		if len(objects) == limit {
			truncated = true
			break
		}
		objects = append(objects, toObject(info))
	}
	return objects, truncated, nil
}

func (s *R2Store) Head(ctx context.Context, key string) (*Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("head %s: %w", key, err)
	}
	obj := toObject(info)
	return &obj, nil
}

func (s *R2Store) PublicURL(key string) string {
	if s.publicURL != "" {
		return joinURL(s.publicURL, key)
	}
	return joinURL(s.client.EndpointURL().String(), s.bucket+"/"+key)
}

func (s *R2Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("r2 health check: %w", err)
	}
	if !ok {
		return fmt.Errorf("r2 bucket %s does not exist", s.bucket)
	}
	return nil
}

func toObject(info minio.ObjectInfo) Object {
	return Object{
		Key:         info.Key,
		Size:        info.Size,
		Uploaded:    info.LastModified,
		ContentType: info.ContentType,
		Metadata:    normalizeMetadata(info.UserMetadata),
	}
}
