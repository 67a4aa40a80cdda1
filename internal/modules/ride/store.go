// README: Ride store interface; all transitions are conditional updates.
package ride

import (
	"context"
	"errors"

	"swiftcab/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrInvalidOTP   = errors.New("invalid ride otp")
	ErrConflict     = errors.New("ride state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)

	// UpdateStatus applies from → to only if the ride still holds
	// (from, version); returns false when a concurrent writer won.
	// captainID, when non-nil, is assigned with the transition.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, captainID *types.ID, reason *string) (bool, error)

	// FindActiveByCaptain returns the captain's single ride in
	// accepted or started state, ErrNotFound when there is none.
	FindActiveByCaptain(ctx context.Context, captainID types.ID) (*Ride, error)

	ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error)
	AppendEvent(ctx context.Context, e *Event) error
}
