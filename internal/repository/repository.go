package repository

import (
	"context"
	"errors"

	"github.com/pharmatch/chatbot/internal/models"
)

var (
	ErrLinkNotFound = errors.New("linked user not found")
	ErrLinkExists   = errors.New("source already linked")
)

// Repository stores the mapping from external chat-platform identities to
// local accounts. The webhook path only calls GetBySourceID; the write
// methods serve the portal's linking flow and botctl.
type Repository interface {
	GetBySourceID(ctx context.Context, sourceID string) (*models.LinkedUser, error)
	Link(ctx context.Context, user *models.LinkedUser) error
	Unlink(ctx context.Context, sourceID string) error
	List(ctx context.Context) ([]*models.LinkedUser, error)
	Close()
}
