package ports

import (
	"context"

	"github.com/nexsupply/nexi/pkg/domain"
)

// ConversationStore defines the interface for persisting conversation state
// between turns.
type ConversationStore interface {
	// Save persists the state for a given conversation ID.
	Save(ctx context.Context, conversationID string, state *domain.ConversationState) error

	// Load retrieves the state for a given conversation ID.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.ConversationState, error)

	// Delete removes the state for a given conversation ID.
	Delete(ctx context.Context, conversationID string) error

	// List returns the IDs of the stored conversations.
	List(ctx context.Context) ([]string, error)
}
