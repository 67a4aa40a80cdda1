// README: Identity store backed by PostgreSQL.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"swiftcab/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	var vehicleColor, vehiclePlate, vehicleClass *string
	var vehicleCapacity *int
	if a.Vehicle != nil {
		vehicleColor = &a.Vehicle.Color
		vehiclePlate = &a.Vehicle.Plate
		vehicleCapacity = &a.Vehicle.Capacity
		vehicleClass = &a.Vehicle.Class
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO accounts (
            id, role, first_name, last_name, email, phone,
            password_hash, email_otp, mobile_otp,
            email_verified, mobile_verified,
            status, vehicle_color, vehicle_plate, vehicle_capacity, vehicle_class,
            license_no, photo_url, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9,
            $10, $11,
            $12, $13, $14, $15, $16,
            $17, $18, $19
        )`,
		string(a.ID), string(a.Role), a.FirstName, a.LastName, a.Email, a.Phone,
		a.PasswordHash, a.EmailOTP, a.MobileOTP,
		a.EmailVerified, a.MobileVerified,
		a.Status, vehicleColor, vehiclePlate, vehicleCapacity, vehicleClass,
		a.LicenseNo, a.PhotoURL, a.CreatedAt,
	)
	return translateDuplicate(err)
}

// translateDuplicate maps unique-violation errors onto field-specific
// sentinels so the boundary can report which field collided.
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail
		case strings.Contains(pgErr.ConstraintName, "phone"):
			return ErrDuplicatePhone
		}
	}
	return err
}

const accountColumns = `
        id, role, first_name, last_name, email, phone,
        password_hash, email_otp, mobile_otp,
        email_verified, mobile_verified,
        connection_id, live_lat, live_lng,
        status, vehicle_color, vehicle_plate, vehicle_capacity, vehicle_class,
        license_no, photo_url, created_at`

func (s *PostgresStore) GetByID(ctx context.Context, id types.ID) (*Account, error) {
	return s.getBy(ctx, "id = $1", string(id))
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getBy(ctx, "email = $1", email)
}

func (s *PostgresStore) GetByPhone(ctx context.Context, phone string) (*Account, error) {
	return s.getBy(ctx, "phone = $1", phone)
}

func (s *PostgresStore) getBy(ctx context.Context, where string, arg any) (*Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)

	var a Account
	var connectionID, vehicleColor, vehiclePlate, vehicleClass *string
	var vehicleCapacity *int
	var liveLat, liveLng *float64

	err := row.Scan(
		&a.ID, &a.Role, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.PasswordHash, &a.EmailOTP, &a.MobileOTP,
		&a.EmailVerified, &a.MobileVerified,
		&connectionID, &liveLat, &liveLng,
		&a.Status, &vehicleColor, &vehiclePlate, &vehicleCapacity, &vehicleClass,
		&a.LicenseNo, &a.PhotoURL, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if connectionID != nil {
		a.ConnectionID = *connectionID
	}
	if liveLat != nil && liveLng != nil {
		a.LiveLocation = types.Point{Lat: *liveLat, Lng: *liveLng}
	}
	if vehiclePlate != nil {
		a.Vehicle = &Vehicle{Plate: *vehiclePlate}
		if vehicleColor != nil {
			a.Vehicle.Color = *vehicleColor
		}
		if vehicleCapacity != nil {
			a.Vehicle.Capacity = *vehicleCapacity
		}
		if vehicleClass != nil {
			a.Vehicle.Class = *vehicleClass
		}
	}
	return &a, nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, id types.ID, ch OTPChannel) error {
	var set string
	switch ch {
	case OTPEmail:
		set = "email_verified = TRUE, email_otp = ''"
	case OTPMobile:
		set = "mobile_verified = TRUE, mobile_otp = ''"
	default:
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET `+set+` WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetConnection(ctx context.Context, id types.ID, connectionID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET connection_id = $1 WHERE id = $2`,
		nullIfEmpty(connectionID), string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearConnection(ctx context.Context, connectionID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE accounts SET connection_id = NULL WHERE connection_id = $1`, connectionID)
	return err
}

func (s *PostgresStore) SetLocation(ctx context.Context, id types.ID, p types.Point) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET live_lat = $1, live_lng = $2 WHERE id = $3`,
		p.Lat, p.Lng, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
