// Package cart owns the mutable cart state for each shopper session. Every
// mutation is written through to durable storage; derived views (eligible
// providers, quotes, pricing) are pure recomputations over current state.
package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/match"
	"github.com/motohub/motohub-cart-service/internal/models"
	"github.com/motohub/motohub-cart-service/internal/pricing"
	"github.com/motohub/motohub-cart-service/internal/quote"
)

// Engine is the single logical owner of one session's CartState.
type Engine struct {
	mu        sync.Mutex
	sessionID string
	state     *models.CartState
	store     Store
	catalog   *catalog.Snapshot
	taxRate   float64
	logger    *zap.Logger

	// submitting blocks further mutations and a second submit while a
	// submission is in flight.
	submitting bool
}

// NewEngine builds the engine for a session. Construction tries, in order:
// a pending one-shot prefill record, the stored cart blob, and finally a
// fresh empty cart. A corrupt stored blob is treated as no blob at all.
func NewEngine(ctx context.Context, sessionID string, store Store, prefill PrefillSource, cat *catalog.Snapshot, taxRate float64, logger *zap.Logger) (*Engine, error) {
	e := &Engine{
		sessionID: sessionID,
		store:     store,
		catalog:   cat,
		taxRate:   taxRate,
		logger:    logger.Named("cart-engine").With(zap.String("session_id", sessionID)),
	}

	if prefill != nil {
		record, err := prefill.Consume(ctx, sessionID)
		if err != nil {
			e.logger.Warn("Prefill lookup failed, falling back to stored cart", zap.Error(err))
		} else if record != nil {
			e.state = stateFromPrefill(record, cat)
			e.logger.Info("Cart seeded from prefill record",
				zap.Int("items", len(e.state.Items)))
			if err := store.Save(ctx, sessionID, e.state); err != nil {
				return nil, err
			}
			return e, nil
		}
	}

	stored, err := store.Load(ctx, sessionID)
	switch {
	case err == nil:
		e.state = stored
		e.normalize()
		return e, nil
	case errors.Is(err, apperrors.ErrNotFound):
		// fresh session
	default:
		var corrupt *apperrors.CorruptRecordError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		// corrupt blob: start over, no user-facing error
	}

	e.state = &models.CartState{}
	return e, nil
}

func stateFromPrefill(record *models.PrefillRecord, cat *catalog.Snapshot) *models.CartState {
	state := &models.CartState{CarDetails: record.CarDetails}
	for _, item := range record.Items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if _, ok := cat.Package(item.ServiceID); !ok {
			continue
		}
		if _, exists := state.Item(item.ServiceID); exists {
			continue
		}
		state.Items = append(state.Items, item)
	}
	return state
}

// normalize repairs quantities on a rehydrated cart.
func (e *Engine) normalize() {
	for i := range e.state.Items {
		if e.state.Items[i].Quantity < 1 {
			e.state.Items[i].Quantity = 1
		}
	}
}

// State returns a copy of the current cart state.
func (e *Engine) State() *models.CartState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// AddItem puts one unit of a service into the cart. Adding a service already
// in the cart is a no-op; unknown services are rejected.
func (e *Engine) AddItem(ctx context.Context, serviceID string) error {
	return e.mutate(ctx, func() error {
		if _, ok := e.catalog.Package(serviceID); !ok {
			return apperrors.ErrNotFound
		}
		if _, exists := e.state.Item(serviceID); exists {
			return nil
		}
		e.state.Items = append(e.state.Items, models.CartItem{ServiceID: serviceID, Quantity: 1})
		return nil
	})
}

// RemoveItem drops the cart line for a service, whatever its quantity.
func (e *Engine) RemoveItem(ctx context.Context, serviceID string) error {
	return e.mutate(ctx, func() error {
		for i, item := range e.state.Items {
			if item.ServiceID == serviceID {
				e.state.Items = append(e.state.Items[:i], e.state.Items[i+1:]...)
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
}

// AdjustQuantity applies a delta to a line's quantity, clamped at 1. Removal
// is RemoveItem, never a quantity of zero.
func (e *Engine) AdjustQuantity(ctx context.Context, serviceID string, delta int) error {
	return e.mutate(ctx, func() error {
		item, ok := e.state.Item(serviceID)
		if !ok {
			return apperrors.ErrNotFound
		}
		item.Quantity += delta
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		return nil
	})
}

// SelectAddress records the chosen delivery address.
func (e *Engine) SelectAddress(ctx context.Context, addressID string) error {
	return e.mutate(ctx, func() error {
		e.state.AddressID = addressID
		return nil
	})
}

// SelectSlot records the chosen time slot.
func (e *Engine) SelectSlot(ctx context.Context, slotID string) error {
	return e.mutate(ctx, func() error {
		e.state.SlotID = slotID
		return nil
	})
}

// SelectCoupon applies a coupon code. An empty code removes the coupon;
// unknown codes are rejected.
func (e *Engine) SelectCoupon(ctx context.Context, code string) error {
	return e.mutate(ctx, func() error {
		if code != "" && pricing.LookupCoupon(code) == nil {
			return apperrors.NewValidationError("coupon_code", "unknown coupon code")
		}
		e.state.CouponCode = code
		return nil
	})
}

// SelectProviders records the manually checked candidate providers.
func (e *Engine) SelectProviders(ctx context.Context, providerIDs []string) error {
	return e.mutate(ctx, func() error {
		e.state.CandidateProviderIDs = append([]string(nil), providerIDs...)
		return nil
	})
}

// SetNote replaces the free-text note.
func (e *Engine) SetNote(ctx context.Context, note string) error {
	return e.mutate(ctx, func() error {
		e.state.Note = note
		return nil
	})
}

// SetCarDetails captures the vehicle the request is for.
func (e *Engine) SetCarDetails(ctx context.Context, details models.CarDetails) error {
	return e.mutate(ctx, func() error {
		if !details.Complete() {
			return apperrors.NewValidationError("car_details", "make, model, year and fuel are required")
		}
		e.state.CarDetails = &details
		return nil
	})
}

// SetAddresses replaces the captured address book.
func (e *Engine) SetAddresses(ctx context.Context, addresses []models.Address) error {
	return e.mutate(ctx, func() error {
		e.state.Addresses = append([]models.Address(nil), addresses...)
		return nil
	})
}

// Reset clears the cart back to empty and drops the stored record.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return apperrors.ErrSubmissionInFlight
	}
	e.state = &models.CartState{}
	if err := e.store.Delete(ctx, e.sessionID); err != nil {
		return err
	}
	e.logger.Info("Cart reset")
	return nil
}

// ApplyCatalog reconciles the cart against a freshly rebuilt catalog: items
// whose service no longer exists are dropped, and a cart that was already
// empty before reconciliation is seeded with one unit of the first available
// package. A cart the reconciliation itself emptied stays empty.
func (e *Engine) ApplyCatalog(ctx context.Context, packages []models.ServicePackage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return nil // reconcile again on the next rebuild
	}

	wasEmpty := len(e.state.Items) == 0
	dropped := catalog.Reconcile(e.state, packages)

	seeded := false
	if wasEmpty && len(e.state.Items) == 0 && len(packages) > 0 {
		e.state.Items = append(e.state.Items, models.CartItem{ServiceID: packages[0].ID, Quantity: 1})
		seeded = true
	}

	if len(dropped) == 0 && !seeded {
		return nil
	}

	e.logger.Info("Cart reconciled against rebuilt catalog",
		zap.Strings("dropped", dropped),
		zap.Bool("seeded", seeded))
	return e.store.Save(ctx, e.sessionID, e.state)
}

// Pricing computes the cart-level price breakdown.
func (e *Engine) Pricing() models.PriceSummary {
	e.mu.Lock()
	state := e.state.Clone()
	e.mu.Unlock()
	return pricing.Compute(state.Items, e.catalog, pricing.LookupCoupon(state.CouponCode), e.taxRate)
}

// SelectedPackages resolves the cart's items against the current catalog.
func (e *Engine) SelectedPackages() []models.ServicePackage {
	e.mu.Lock()
	state := e.state.Clone()
	e.mu.Unlock()

	var selected []models.ServicePackage
	for _, item := range state.Items {
		if pkg, ok := e.catalog.Package(item.ServiceID); ok {
			selected = append(selected, pkg)
		}
	}
	return selected
}

// EligibleProviders recomputes the providers able to fulfil the whole cart.
func (e *Engine) EligibleProviders() []models.ServiceProvider {
	return match.EligibleProviders(e.SelectedPackages(), e.catalog.Roster())
}

// RankedQuotes aggregates and ranks provider quotes for the current cart.
func (e *Engine) RankedQuotes() []models.ProviderQuote {
	e.mu.Lock()
	items := append([]models.CartItem(nil), e.state.Items...)
	e.mu.Unlock()
	return quote.Rank(quote.Aggregate(items, e.catalog, e.EligibleProviders()))
}

// BeginSubmission flips the in-flight guard. A second submission, or any
// mutation, is rejected until EndSubmission.
func (e *Engine) BeginSubmission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return apperrors.ErrSubmissionInFlight
	}
	e.submitting = true
	return nil
}

// EndSubmission releases the in-flight guard.
func (e *Engine) EndSubmission() {
	e.mu.Lock()
	e.submitting = false
	e.mu.Unlock()
}

// ClearAfterSubmission empties the cart once a submission has succeeded.
// Called with the in-flight guard still held.
func (e *Engine) ClearAfterSubmission(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = &models.CartState{}
	return e.store.Delete(ctx, e.sessionID)
}

func (e *Engine) mutate(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitting {
		return apperrors.ErrSubmissionInFlight
	}
	if err := fn(); err != nil {
		return err
	}
	// Persistence is unconditional on mutation; there is no dirty flag.
	return e.store.Save(ctx, e.sessionID, e.state)
}
