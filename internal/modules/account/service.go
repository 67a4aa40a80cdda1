// README: Account service: registration, OTP verification, and login.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"swiftcab/internal/notify"
	"swiftcab/internal/types"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidOTP   = errors.New("invalid otp")
	ErrUnauthorized = errors.New("invalid credentials or unverified account")
)

// VehicleClasses is the closed set of supported ride classes.
var VehicleClasses = map[string]bool{
	"auto":  true,
	"sedan": true,
	"suv":   true,
	"moto":  true,
}

type Service struct {
	store       Store
	dispatcher  notify.Dispatcher
	countryCode string
	logger      *slog.Logger
}

func NewService(store Store, dispatcher notify.Dispatcher, countryCode string, logger *slog.Logger) *Service {
	return &Service{store: store, dispatcher: dispatcher, countryCode: countryCode, logger: logger}
}

type RegisterCommand struct {
	Role      Role
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Vehicle   *Vehicle
	LicenseNo string
}

// Register creates an unverified account with fresh OTPs and hands
// both codes to the dispatcher. Dispatch failures are logged, not
// surfaced; the codes stay on the record for re-sends.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Account, error) {
	if err := validateRegister(cmd); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(cmd.Phone, s.countryCode)
	if err != nil {
		return nil, ErrBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:           types.ID(uuid.NewString()),
		Role:         cmd.Role,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:        phone,
		PasswordHash: string(hash),
		EmailOTP:     GenerateOTP(),
		MobileOTP:    GenerateOTP(),
		LicenseNo:    cmd.LicenseNo,
		Vehicle:      cmd.Vehicle,
		CreatedAt:    time.Now(),
	}
	if cmd.Role == RoleCaptain {
		a.Status = "inactive"
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	if err := s.dispatcher.SendOTP(ctx, notify.ChannelEmail, a.Email, a.EmailOTP); err != nil {
		s.logger.Warn("email otp dispatch failed", "account_id", a.ID, "error", err)
	}
	if err := s.dispatcher.SendOTP(ctx, notify.ChannelSMS, a.Phone, a.MobileOTP); err != nil {
		s.logger.Warn("mobile otp dispatch failed", "account_id", a.ID, "error", err)
	}

	s.logger.Info("account registered", "account_id", a.ID, "role", a.Role)
	return a, nil
}

func validateRegister(cmd RegisterCommand) error {
	if cmd.Role != RoleRider && cmd.Role != RoleCaptain {
		return ErrBadRequest
	}
	if len(strings.TrimSpace(cmd.FirstName)) < 3 {
		return ErrBadRequest
	}
	if !strings.Contains(cmd.Email, "@") {
		return ErrBadRequest
	}
	if len(cmd.Password) < 6 {
		return ErrBadRequest
	}
	if cmd.Role == RoleCaptain {
		if cmd.Vehicle == nil || cmd.Vehicle.Plate == "" || cmd.Vehicle.Capacity < 1 {
			return ErrBadRequest
		}
		if !VehicleClasses[cmd.Vehicle.Class] {
			return ErrBadRequest
		}
	}
	return nil
}

// VerifyEmailOTP flips the email flag. The stored code is cleared on
// success so it cannot be replayed.
func (s *Service) VerifyEmailOTP(ctx context.Context, email, code string) error {
	a, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if !MatchOTP(a.EmailOTP, code) {
		return ErrInvalidOTP
	}
	return s.store.MarkVerified(ctx, a.ID, OTPEmail)
}

func (s *Service) VerifyMobileOTP(ctx context.Context, phone, code string) error {
	normalized, err := NormalizePhone(phone, s.countryCode)
	if err != nil {
		return ErrBadRequest
	}
	a, err := s.store.GetByPhone(ctx, normalized)
	if err != nil {
		return err
	}
	if !MatchOTP(a.MobileOTP, code) {
		return ErrInvalidOTP
	}
	return s.store.MarkVerified(ctx, a.ID, OTPMobile)
}

// Login checks the password first, then requires both verification
// flags. Every failure collapses to ErrUnauthorized so the response
// does not reveal which check tripped.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, error) {
	a, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	if !a.Verified() {
		return nil, ErrUnauthorized
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Account, error) {
	return s.store.GetByID(ctx, id)
}
