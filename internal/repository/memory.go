package repository

import (
	"context"
	"sync"

	"github.com/pharmatch/chatbot/internal/models"
)

type InMemoryRepository struct {
	links map[string]*models.LinkedUser
	mu    sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		links: make(map[string]*models.LinkedUser),
	}
}

func (r *InMemoryRepository) GetBySourceID(ctx context.Context, sourceID string) (*models.LinkedUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.links[sourceID]
	if !exists {
		return nil, ErrLinkNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) Link(ctx context.Context, user *models.LinkedUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[user.SourceID]; exists {
		return ErrLinkExists
	}
	r.links[user.SourceID] = user
	return nil
}

func (r *InMemoryRepository) Unlink(ctx context.Context, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[sourceID]; !exists {
		return ErrLinkNotFound
	}
	delete(r.links, sourceID)
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.LinkedUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.LinkedUser, 0, len(r.links))
	for _, user := range r.links {
		users = append(users, user)
	}
	return users, nil
}

func (r *InMemoryRepository) Close() {}
