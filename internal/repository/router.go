package repository

import (
	"context"
	"errors"

	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// Router picks the content table from a folder's visibility flag
type Router struct {
	public  libraryRepo.ContentStore
	private libraryRepo.ContentStore
}

// NewRouter creates a router over the public and private stores
func NewRouter(public, private libraryRepo.ContentStore) *Router {
	return &Router{public: public, private: private}
}

// ForFolder returns the store backing folder's content
func (r *Router) ForFolder(folder *models.Folder) libraryRepo.ContentStore {
	return r.ForVisibility(folder.Visibility())
}

// ForVisibility returns the store for a routing flag
func (r *Router) ForVisibility(v models.Visibility) libraryRepo.ContentStore {
	if v == models.VisibilityPrivate {
		return r.private
	}
	return r.public
}

// All returns both stores, public first
func (r *Router) All() []libraryRepo.ContentStore {
	return []libraryRepo.ContentStore{r.public, r.private}
}

// Locate finds a content item without knowing its folder
func (r *Router) Locate(ctx context.Context, contentID string) (libraryRepo.ContentStore, *models.Content, error) {
	for _, store := range r.All() {
		content, err := store.GetByID(ctx, contentID)
		if err == nil {
			return store, content, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, err
		}
	}
	return nil, nil, &domain.NotFoundError{ResourceType: "content", ID: contentID}
}
