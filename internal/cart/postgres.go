package cart

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// PostgresStore persists each session's cart as a single versioned JSON
// record in the carts table.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a PostgreSQL-backed cart store.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.Named("cart-store"),
	}
}

// Load reads the stored cart record for a session. A record that fails to
// parse is reported as corrupt; the engine recovers by starting fresh.
func (s *PostgresStore) Load(ctx context.Context, sessionID string) (*models.CartState, error) {
	query := `
		SELECT state
		FROM carts
		WHERE session_id = $1
	`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load cart record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}

	var state models.CartState
	if err := json.Unmarshal(blob, &state); err != nil {
		s.logger.Warn("Stored cart record is corrupt, treating session as fresh",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, &apperrors.CorruptRecordError{Key: sessionID, Err: err}
	}

	return &state, nil
}

// Save writes the full cart state, bumping the record version.
func (s *PostgresStore) Save(ctx context.Context, sessionID string, state *models.CartState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO carts (session_id, version, state, updated_at)
		VALUES ($1, 1, $2, NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET version = carts.version + 1, state = $2, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, sessionID, blob); err != nil {
		s.logger.Error("Failed to save cart record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return err
	}

	s.logger.Debug("Cart record saved", zap.String("session_id", sessionID))
	return nil
}

// Delete removes the session's cart record.
func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID); err != nil {
		s.logger.Error("Failed to delete cart record",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return err
	}
	return nil
}
