package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// Manager hands out one Engine per shopper session and fans catalog rebuilds
// out to every live engine.
type Manager struct {
	mu      sync.Mutex
	engines map[string]*Engine

	store   Store
	prefill PrefillSource
	catalog *catalog.Snapshot
	taxRate float64
	logger  *zap.Logger
}

// NewManager creates the session manager.
func NewManager(store Store, prefill PrefillSource, cat *catalog.Snapshot, taxRate float64, logger *zap.Logger) *Manager {
	return &Manager{
		engines: make(map[string]*Engine),
		store:   store,
		prefill: prefill,
		catalog: cat,
		taxRate: taxRate,
		logger:  logger.Named("cart-manager"),
	}
}

// Engine returns the session's engine, constructing it on first touch.
func (m *Manager) Engine(ctx context.Context, sessionID string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[sessionID]; ok {
		return engine, nil
	}

	engine, err := NewEngine(ctx, sessionID, m.store, m.prefill, m.catalog, m.taxRate, m.logger)
	if err != nil {
		return nil, err
	}
	m.engines[sessionID] = engine
	m.logger.Debug("Session engine created", zap.String("session_id", sessionID))
	return engine, nil
}

// ReconcileAll reconciles every live cart against a rebuilt catalog.
func (m *Manager) ReconcileAll(ctx context.Context, packages []models.ServicePackage) {
	m.mu.Lock()
	engines := make([]*Engine, 0, len(m.engines))
	for _, engine := range m.engines {
		engines = append(engines, engine)
	}
	m.mu.Unlock()

	for _, engine := range engines {
		if err := engine.ApplyCatalog(ctx, packages); err != nil {
			m.logger.Error("Cart reconciliation failed", zap.Error(err))
		}
	}
}

// Drop forgets a session's engine (session teardown). The durable record, if
// any, stays for the next session start.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	delete(m.engines, sessionID)
	m.mu.Unlock()
}
