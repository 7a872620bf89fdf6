package cart

import (
	"context"

	"github.com/motohub/motohub-cart-service/internal/models"
)

// Store is the durable backing for one session's cart record. The engine
// writes the full state after every mutation and reads it once on session
// start.
type Store interface {
	// Load returns the stored cart for a session, apperrors.ErrNotFound when
	// no record exists, or an apperrors.CorruptRecordError when the stored
	// blob fails to parse.
	Load(ctx context.Context, sessionID string) (*models.CartState, error)

	// Save writes the full cart state, replacing any previous record.
	Save(ctx context.Context, sessionID string, state *models.CartState) error

	// Delete removes the session's record.
	Delete(ctx context.Context, sessionID string) error
}

// PrefillSource yields the one-shot prefill record for a session, clearing it
// so it can never be consumed twice.
type PrefillSource interface {
	Consume(ctx context.Context, sessionID string) (*models.PrefillRecord, error)
}
