package storage

import (
	"bytes"
	"context"
	"io"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	Object
	data []byte
}

// NewMemoryStore creates an empty store whose public URLs start with baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), baseURL: baseURL}
}

func (s *MemoryStore) Put(ctx context.Context, in *PutInput) error {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[in.Key] = memoryObject{
		Object: Object{
			Key:         in.Key,
			Size:        int64(len(data)),
			Uploaded:    time.Now().UTC(),
			ContentType: in.ContentType,
			Metadata:    maps.Clone(in.Metadata),
		},
		data: data,
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string, limit int) ([]Object, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	truncated := len(keys) > limit
	if truncated {
		keys = keys[:limit]
	}

	out := make([]Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.objects[k].Object)
	}
	return out, truncated, nil
}

func (s *MemoryStore) Head(ctx context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	o := obj.Object
	return &o, nil
}

// Bytes returns a stored object's content; used by tests and the dev file server
func (s *MemoryStore) Bytes(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(obj.data), true
}

func (s *MemoryStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
