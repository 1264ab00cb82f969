package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"
)

// B2Config configures the Backblaze B2 backend
type B2Config struct {
	KeyID          string
	ApplicationKey string
	Bucket         string
	PublicURL      string
}

// B2Store is an ObjectStore over a Backblaze B2 bucket
type B2Store struct {
	bucket    *b2.Bucket
	publicURL string
}

// NewB2Store authorises against B2 and opens the bucket
func NewB2Store(ctx context.Context, cfg B2Config) (*B2Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("b2 bucket is required")
	}

	client, err := b2.NewClient(ctx, cfg.KeyID, cfg.ApplicationKey)
	if err != nil {
		return nil, fmt.Errorf("create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open b2 bucket %s: %w", cfg.Bucket, err)
	}

	return &B2Store{bucket: bucket, publicURL: cfg.PublicURL}, nil
}

func (s *B2Store) Put(ctx context.Context, in *PutInput) error {
	w := s.bucket.Object(in.Key).NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{
		ContentType: in.ContentType,
		Info:        in.Metadata,
	}))

	if _, err := io.Copy(w, in.Body); err != nil {
		w.Close()
		return fmt.Errorf("put %s: %w", in.Key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("put %s: %w", in.Key, err)
	}
	return nil
}

func (s *B2Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *B2Store) List(ctx context.Context, prefix string, limit int) ([]Object, bool, error) {
	iter := s.bucket.List(ctx, b2.ListPrefix(prefix))

	objects := []Object{}
	for iter.Next() {
		if len(objects) == limit {
			return objects, true, nil
		}
		attrs, err := iter.Object().Attrs(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("list %s: %w", prefix, err)
		}
		objects = append(objects, fromAttrs(attrs))
	}
	if err := iter.Err(); err != nil {
		return nil, false, fmt.Errorf("list %s: %w", prefix, err)
	}
	return objects, false, nil
}

func (s *B2Store) Head(ctx context.Context, key string) (*Object, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("head %s: %w", key, err)
	}
	obj := fromAttrs(attrs)
	return &obj, nil
}

func (s *B2Store) PublicURL(key string) string {
	if s.publicURL != "" {
		return joinURL(s.publicURL, key)
	}
	return s.bucket.Object(key).URL()
}

func (s *B2Store) Ping(ctx context.Context) error {
	if _, err := s.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("b2 health check: %w", err)
	}
	return nil
}

func fromAttrs(attrs *b2.Attrs) Object {
	return Object{
		Key:         attrs.Name,
		Size:        attrs.Size,
		Uploaded:    attrs.UploadTimestamp,
		ContentType: attrs.ContentType,
		Metadata:    normalizeMetadata(attrs.Info),
	}
}
