// Package request validates submission preconditions and assembles the final
// bookable service request.
package request

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/cart"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// State is a submission state-machine state.
type State string

const (
	StateBuilding          State = "building"
	StateValidating        State = "validating"
	StateAwaitingCarDetails State = "awaiting_car_details"
	StateAwaitingAuth      State = "awaiting_auth"
	StateSubmitting        State = "submitting"
	StateSubmitted         State = "submitted"
	StateFailed            State = "failed"
)

// Submitter hands the assembled request to the external booking collaborator.
type Submitter interface {
	SubmitServiceRequest(ctx context.Context, req *models.ServiceRequest) error
}

// Authenticator answers whether the caller is logged in and can kick off the
// external login flow.
type Authenticator interface {
	IsAuthenticated(ctx context.Context, token string) (bool, error)
	RequestLogin(ctx context.Context, sessionID string) error
}

// EventPublisher announces successfully submitted requests. Optional.
type EventPublisher interface {
	PublishRequestSubmitted(ctx context.Context, sessionID string, req *models.ServiceRequest) error
}

// Builder drives the submission state machine for each session.
type Builder struct {
	auth      Authenticator
	submitter Submitter
	events    EventPublisher
	logger    *zap.Logger

	mu     sync.Mutex
	states map[string]State
}

// NewBuilder creates the request builder. events may be nil.
func NewBuilder(auth Authenticator, submitter Submitter, events EventPublisher, logger *zap.Logger) *Builder {
	return &Builder{
		auth:      auth,
		submitter: submitter,
		events:    events,
		logger:    logger.Named("request-builder"),
		states:    make(map[string]State),
	}
}

// SessionState reports the session's current submission state.
func (b *Builder) SessionState(sessionID string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.states[sessionID]; ok {
		return s
	}
	return StateBuilding
}

func (b *Builder) setState(sessionID string, s State) {
	b.mu.Lock()
	b.states[sessionID] = s
	b.mu.Unlock()
}

// Result reports where a submission attempt ended up.
type Result struct {
	State   State                  `json:"state"`
	Request *models.ServiceRequest `json:"request,omitempty"`
}

// Submit runs the full precondition chain and, when everything holds, hands
// the assembled payload to the submission collaborator. Any precondition
// failure returns the machine to building; a collaborator failure leaves the
// cart intact so the shopper can retry without re-entering anything.
func (b *Builder) Submit(ctx context.Context, sessionID, authToken string, engine *cart.Engine) (*Result, error) {
	if err := engine.BeginSubmission(); err != nil {
		return nil, err
	}
	defer engine.EndSubmission()

	b.setState(sessionID, StateValidating)

	authenticated, err := b.auth.IsAuthenticated(ctx, authToken)
	if err != nil {
		b.setState(sessionID, StateBuilding)
		return nil, err
	}
	if !authenticated {
		b.setState(sessionID, StateAwaitingAuth)
		if err := b.auth.RequestLogin(ctx, sessionID); err != nil {
			b.logger.Error("Login request failed", zap.Error(err))
		}
		return &Result{State: StateAwaitingAuth}, nil
	}

	state := engine.State()

	if err := b.validate(state); err != nil {
		b.setState(sessionID, StateBuilding)
		return nil, err
	}

	if state.CarDetails == nil {
		// Surface the car-details form; the submission collaborator is
		// never called on this path.
		b.setState(sessionID, StateAwaitingCarDetails)
		return &Result{State: StateAwaitingCarDetails}, nil
	}

	candidates := state.CandidateProviderIDs
	if len(candidates) == 0 {
		for _, p := range engine.EligibleProviders() {
			candidates = append(candidates, p.ID)
		}
	}
	if len(candidates) == 0 {
		b.setState(sessionID, StateBuilding)
		return nil, apperrors.ErrNoEligibleProvider
	}

	payload := b.assemble(state, candidates, engine.Pricing().Total)

	b.setState(sessionID, StateSubmitting)
	b.logger.Info("Submitting service request",
		zap.String("session_id", sessionID),
		zap.Int("items", len(payload.Items)),
		zap.Int("candidates", len(candidates)))

	if err := b.submitter.SubmitServiceRequest(ctx, payload); err != nil {
		// Cart untouched; the next attempt restarts from validating.
		b.setState(sessionID, StateFailed)
		b.logger.Error("Submission rejected",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, &apperrors.SubmissionError{Err: err}
	}

	if err := engine.ClearAfterSubmission(ctx); err != nil {
		b.logger.Error("Failed to clear cart after submission", zap.Error(err))
	}

	if b.events != nil {
		if err := b.events.PublishRequestSubmitted(ctx, sessionID, payload); err != nil {
			// Log but don't fail: the booking itself went through.
			b.logger.Error("Failed to publish submission event", zap.Error(err))
		}
	}

	b.setState(sessionID, StateSubmitted)
	return &Result{State: StateSubmitted, Request: payload}, nil
}

func (b *Builder) validate(state *models.CartState) error {
	if len(state.Items) == 0 {
		return apperrors.NewValidationError("items", "cart is empty")
	}
	if state.AddressID == "" {
		return apperrors.NewValidationError("address_id", "no address selected")
	}
	if state.SlotID == "" {
		return apperrors.NewValidationError("slot_id", "no time slot selected")
	}
	return nil
}

func (b *Builder) assemble(state *models.CartState, candidates []string, total float64) *models.ServiceRequest {
	req := &models.ServiceRequest{
		Items:                state.Items,
		AddressID:            state.AddressID,
		SlotID:               state.SlotID,
		CouponCode:           state.CouponCode,
		CandidateProviderIDs: candidates,
		Total:                total,
		Note:                 state.Note,
		CarDetails:           *state.CarDetails,
	}
	for i := range state.Addresses {
		if state.Addresses[i].ID == state.AddressID {
			addr := state.Addresses[i]
			req.Address = &addr
			break
		}
	}
	return req
}
