// README: Ride store backed by PostgreSQL.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swiftcab/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (
            id, rider_id, captain_id, status, status_version,
            pickup, destination, vehicle_class,
            fare_amount, fare_currency, payment_method, payment_done,
            start_otp, scheduled_date, scheduled_time, created_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8,
            $9, $10, $11, $12,
            $13, $14, $15, $16
        )`,
		string(r.ID), string(r.RiderID), idPtr(r.CaptainID), string(r.Status), r.StatusVersion,
		r.Pickup, r.Destination, r.VehicleClass,
		r.Fare.Amount, r.Fare.Currency, r.PaymentMethod, r.PaymentDone,
		r.StartOTP, r.ScheduledDate, r.ScheduledTime, r.CreatedAt,
	)
	return err
}

const rideColumns = `
        id, rider_id, captain_id, status, status_version,
        pickup, destination, vehicle_class,
        fare_amount, fare_currency, payment_method, payment_done,
        start_otp, scheduled_date, scheduled_time, cancel_reason,
        created_at, accepted_at, started_at, completed_at, cancelled_at`

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

func (s *PostgresStore) FindActiveByCaptain(ctx context.Context, captainID types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+rideColumns+`
        FROM rides
        WHERE captain_id = $1 AND status IN ('accepted','started')
        ORDER BY created_at DESC
        LIMIT 1`, string(captainID))
	return scanRide(row)
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var captainID, cancelReason *string
	var acceptedAt, startedAt, completedAt, cancelledAt *time.Time

	err := row.Scan(
		&r.ID, &r.RiderID, &captainID, &r.Status, &r.StatusVersion,
		&r.Pickup, &r.Destination, &r.VehicleClass,
		&r.Fare.Amount, &r.Fare.Currency, &r.PaymentMethod, &r.PaymentDone,
		&r.StartOTP, &r.ScheduledDate, &r.ScheduledTime, &cancelReason,
		&r.CreatedAt, &acceptedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if captainID != nil {
		cid := types.ID(*captainID)
		r.CaptainID = &cid
	}
	r.CancelReason = cancelReason
	r.AcceptedAt = acceptedAt
	r.StartedAt = startedAt
	r.CompletedAt = completedAt
	r.CancelledAt = cancelledAt
	return &r, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, captainID *types.ID, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET status = $1,
            status_version = status_version + 1,
            captain_id = COALESCE($2, captain_id),
            cancel_reason = COALESCE($3, cancel_reason),
            accepted_at = CASE WHEN $1 = 'accepted' THEN NOW() ELSE accepted_at END,
            started_at = CASE WHEN $1 = 'started' THEN NOW() ELSE started_at END,
            completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
            cancelled_at = CASE WHEN $1 IN ('cancelled','rejected') THEN NOW() ELSE cancelled_at END
        WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		idPtr(captainID),
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+rideColumns+`
        FROM rides
        WHERE rider_id = $1
        ORDER BY created_at DESC`, string(riderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO ride_state_events (
            ride_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		idPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
