// Package storage is the object store behind the storage relay. Backends share one
// interface so the relay handler does not know whether it talks to R2, B2 or memory.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Head for a missing key
var ErrObjectNotFound = errors.New("object not found")

// Custom metadata keys written with every upload
const (
	MetaOriginalName = "originalName"
	MetaUploadedAt   = "uploadedAt"
	MetaType         = "type"
)

// Object describes a stored object
type Object struct {
	Key         string            `json:"key"`
	Size        int64             `json:"size"`
	Uploaded    time.Time         `json:"uploaded"`
	ContentType string            `json:"-"`
	Metadata    map[string]string `json:"-"`
}

// PutInput is an object to store. Size may be -1 when unknown.
type PutInput struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectStore is a flat key/value object store
type ObjectStore interface {
	Put(ctx context.Context, in *PutInput) error

	// Delete removes key. Deleting a missing key succeeds on every backend.
	Delete(ctx context.Context, key string) error

	// List returns up to limit objects under prefix in key order, and whether more exist
	List(ctx context.Context, prefix string, limit int) ([]Object, bool, error)

	Head(ctx context.Context, key string) (*Object, error)

	// PublicURL is the address clients fetch key from
	PublicURL(key string) string

	Ping(ctx context.Context) error
}

// knownMetadata maps lower-cased metadata keys back to their canonical spelling.
// S3 canonicalises header names, which loses the camel case.
var knownMetadata = map[string]string{
	strings.ToLower(MetaOriginalName): MetaOriginalName,
	strings.ToLower(MetaUploadedAt):   MetaUploadedAt,
	strings.ToLower(MetaType):         MetaType,
}

func normalizeMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if canonical, ok := knownMetadata[strings.ToLower(k)]; ok {
			k = canonical
		}
		out[k] = v
	}
	return out
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
