package storage

import (
	"context"
	"fmt"

	"library/internal/config"
)

// New opens the backend selected by cfg.Backend
func New(ctx context.Context, cfg *config.RelayConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "r2":
		return NewR2Store(R2Config{
			Endpoint:        cfg.R2Endpoint,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			Secure:          cfg.R2Secure,
			PublicURL:       cfg.PublicURL,
		})
	case "b2":
		return NewB2Store(ctx, B2Config{
			KeyID:          cfg.B2KeyID,
			ApplicationKey: cfg.B2ApplicationKey,
			Bucket:         cfg.B2Bucket,
			PublicURL:      cfg.PublicURL,
		})
	case "memory":
		base := cfg.PublicURL
		if base == "" {
			base = "http://localhost:" + cfg.Port + "/files"
		}
		return NewMemoryStore(base), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
