// README: Identity store interface; Postgres and in-memory implementations.
package account

import (
	"context"
	"errors"

	"swiftcab/internal/types"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicatePhone = errors.New("phone already registered")
)

// OTPChannel selects which verification flag an OTP confirmation sets.
type OTPChannel string

const (
	OTPEmail  OTPChannel = "email"
	OTPMobile OTPChannel = "mobile"
)

type Store interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id types.ID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByPhone(ctx context.Context, phone string) (*Account, error)

	// MarkVerified sets the channel's verified flag and clears the
	// stored OTP so a code cannot be replayed.
	MarkVerified(ctx context.Context, id types.ID, ch OTPChannel) error

	SetConnection(ctx context.Context, id types.ID, connectionID string) error
	// ClearConnection is keyed by connection id and is a no-op when no
	// account holds that handle.
	ClearConnection(ctx context.Context, connectionID string) error
	SetLocation(ctx context.Context, id types.ID, p types.Point) error
}
