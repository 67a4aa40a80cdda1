// README: Ride lifecycle controller: state transitions and their side effects.
package ride

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/fare"
	"swiftcab/internal/notify"
	"swiftcab/internal/observability"
	"swiftcab/internal/types"
)

// Pusher delivers a targeted realtime event. Best-effort: events for
// accounts with no live connection are dropped, never queued.
type Pusher interface {
	Send(accountID types.ID, event string, payload any)
}

// Realtime event names, server → client.
const (
	EventRideConfirmed = "ride-confirmed"
	EventRideStarted   = "ride-started"
	EventRideEnded     = "ride-ended"
)

type Service struct {
	store      Store
	fares      *fare.Service
	accounts   account.Store
	dispatcher notify.Dispatcher
	pusher     Pusher
	logger     *slog.Logger
	adminEmail string
}

func NewService(store Store, fares *fare.Service, accounts account.Store, dispatcher notify.Dispatcher, pusher Pusher, adminEmail string, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		fares:      fares,
		accounts:   accounts,
		dispatcher: dispatcher,
		pusher:     pusher,
		logger:     logger,
		adminEmail: adminEmail,
	}
}

type CreateCommand struct {
	RiderID       types.ID
	Pickup        string
	Destination   string
	VehicleClass  string
	PaymentMethod string
	ScheduledDate string
	ScheduledTime string
}

type ConfirmCommand struct {
	RideID    types.ID
	CaptainID types.ID
}

type StartCommand struct {
	RideID    types.ID
	CaptainID types.ID
	OTP       string
}

type EndCommand struct {
	RideID    types.ID
	CaptainID types.ID
}

type CancelCommand struct {
	RideID types.ID
	Reason string
}

// Create validates the request, prices it, and persists the ride in
// requested state with a fresh single-use start OTP. Side effect: one
// admin notification; no realtime push, no captain is bound yet.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.RiderID == "" {
		return nil, ErrBadRequest
	}
	amount, err := s.fares.ForClass(ctx, cmd.Pickup, cmd.Destination, cmd.VehicleClass)
	if err != nil {
		// fare.ErrBadRequest and fare.ErrUpstream pass through; the
		// caller decides whether to retry the upstream case.
		return nil, err
	}

	now := time.Now()
	r := &Ride{
		ID:            types.ID(uuid.NewString()),
		RiderID:       cmd.RiderID,
		Pickup:        cmd.Pickup,
		Destination:   cmd.Destination,
		VehicleClass:  cmd.VehicleClass,
		Fare:          amount,
		PaymentMethod: cmd.PaymentMethod,
		StartOTP:      account.GenerateOTP(),
		Status:        StatusRequested,
		ScheduledDate: cmd.ScheduledDate,
		ScheduledTime: cmd.ScheduledTime,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusRequested,
		ActorType:  "rider",
		ActorID:    &cmd.RiderID,
		CreatedAt:  now,
	})
	observability.RidesCreated.Inc()

	if err := s.dispatcher.SendRideAlert(ctx, s.adminEmail, "new ride requested", string(r.ID), r.Pickup+" -> "+r.Destination); err != nil {
		s.logger.Warn("admin ride alert failed", "ride_id", r.ID, "error", err)
	}
	return r, nil
}

// Confirm binds a captain and moves requested → accepted. The rider's
// live connection, if any, receives ride-confirmed carrying the full
// ride (including the start OTP) and the captain's public profile.
func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) (*Ride, error) {
	r, err := s.transition(ctx, cmd.RideID, StatusAccepted, &cmd.CaptainID, nil, "captain")
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"ride": r}
	if captain, err := s.accounts.GetByID(ctx, cmd.CaptainID); err == nil {
		payload["captain"] = captain.Profile()
	} else {
		s.logger.Warn("captain profile lookup failed", "captain_id", cmd.CaptainID, "error", err)
	}
	s.pusher.Send(r.RiderID, EventRideConfirmed, payload)
	return r, nil
}

// Start verifies the supplied OTP against the stored one (both
// trimmed) and moves accepted → started.
func (s *Service) Start(ctx context.Context, cmd StartCommand) (*Ride, error) {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusStarted) {
		return nil, ErrInvalidState
	}
	if r.CaptainID == nil || *r.CaptainID != cmd.CaptainID {
		return nil, ErrInvalidState
	}
	if !account.MatchOTP(r.StartOTP, cmd.OTP) {
		return nil, ErrInvalidOTP
	}

	updated, err := s.apply(ctx, r, StatusStarted, nil, nil, "captain", &cmd.CaptainID)
	if err != nil {
		return nil, err
	}
	s.pusher.Send(updated.RiderID, EventRideStarted, map[string]any{"ride": updated})
	return updated, nil
}

// End moves started → completed.
func (s *Service) End(ctx context.Context, cmd EndCommand) (*Ride, error) {
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCompleted) {
		return nil, ErrInvalidState
	}
	if r.CaptainID == nil || *r.CaptainID != cmd.CaptainID {
		return nil, ErrInvalidState
	}

	updated, err := s.apply(ctx, r, StatusCompleted, nil, nil, "captain", &cmd.CaptainID)
	if err != nil {
		return nil, err
	}
	s.pusher.Send(updated.RiderID, EventRideEnded, map[string]any{"ride": updated})
	return updated, nil
}

// Cancel is the admin action for requested or accepted rides. Both
// parties get a notification; there is no realtime push.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Ride, error) {
	reason := cmd.Reason
	r, err := s.transition(ctx, cmd.RideID, StatusCancelled, nil, &reason, "admin")
	if err != nil {
		return nil, err
	}
	s.notifyParties(ctx, r, "ride cancelled", reason)
	return r, nil
}

// Reject is the admin terminal branch for rides still in requested.
func (s *Service) Reject(ctx context.Context, cmd CancelCommand) (*Ride, error) {
	reason := cmd.Reason
	r, err := s.transition(ctx, cmd.RideID, StatusRejected, nil, &reason, "admin")
	if err != nil {
		return nil, err
	}
	s.notifyParties(ctx, r, "ride rejected", reason)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	return s.store.ListByRider(ctx, riderID)
}

func (s *Service) FindActiveByCaptain(ctx context.Context, captainID types.ID) (*Ride, error) {
	return s.store.FindActiveByCaptain(ctx, captainID)
}

// Estimate exposes the fare table for the get-fare endpoint.
func (s *Service) Estimate(ctx context.Context, pickup, destination string) (fare.Table, error) {
	return s.fares.Estimate(ctx, pickup, destination)
}

func (s *Service) transition(ctx context.Context, id types.ID, to Status, captainID *types.ID, reason *string, actorType string) (*Ride, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, to) {
		return nil, ErrInvalidState
	}
	return s.apply(ctx, r, to, captainID, reason, actorType, captainID)
}

func (s *Service) apply(ctx context.Context, r *Ride, to Status, captainID *types.ID, reason *string, actorType string, actorID *types.ID) (*Ride, error) {
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion, captainID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     r.ID,
		FromStatus: r.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
	observability.RideTransitions.WithLabelValues(string(to)).Inc()
	return s.store.Get(ctx, r.ID)
}

func (s *Service) notifyParties(ctx context.Context, r *Ride, subject, body string) {
	if rider, err := s.accounts.GetByID(ctx, r.RiderID); err == nil {
		if err := s.dispatcher.SendRideAlert(ctx, rider.Email, subject, string(r.ID), body); err != nil {
			s.logger.Warn("rider ride alert failed", "ride_id", r.ID, "error", err)
		}
	}
	if r.CaptainID != nil {
		if captain, err := s.accounts.GetByID(ctx, *r.CaptainID); err == nil {
			if err := s.dispatcher.SendRideAlert(ctx, captain.Email, subject, string(r.ID), body); err != nil {
				s.logger.Warn("captain ride alert failed", "ride_id", r.ID, "error", err)
			}
		}
	}
}
