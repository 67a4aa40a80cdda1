// README: Realtime gateway: join/leave, targeted pushes, captain location fan-out.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/ride"
	"swiftcab/internal/observability"
	"swiftcab/internal/types"
)

// EventCaptainLocation is pushed to the rider of an active ride each
// time their captain reports a position.
const EventCaptainLocation = "captain-location-update"

// EventError is sent back on the reporting connection when a location
// payload fails validation.
const EventError = "error"

var ErrBadLocation = errors.New("realtime: invalid coordinates")

const geoKey = "geo:captains"

// Envelope is the wire shape of every server → client event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Gateway owns connection lifecycle and targeted delivery. Delivery
// is at-most-once: an event for an account with no live connection is
// counted as dropped and forgotten.
type Gateway struct {
	registry *Registry
	accounts account.Store
	rides    ride.Store
	redis    *redis.Client
	logger   *slog.Logger
}

// NewGateway wires the gateway. redis may be nil; the geo index is
// then skipped and location fan-out still works off the account store.
func NewGateway(registry *Registry, accounts account.Store, rides ride.Store, rdb *redis.Client, logger *slog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		accounts: accounts,
		rides:    rides,
		redis:    rdb,
		logger:   logger,
	}
}

// Register binds a live connection to an account and returns the
// connection id the socket handler must pass to Unregister later.
// A second join from the same account simply takes over: pushes go to
// the newest connection.
func (g *Gateway) Register(ctx context.Context, accountID types.ID, c Conn) (string, error) {
	if _, err := g.accounts.GetByID(ctx, accountID); err != nil {
		return "", err
	}
	connectionID := uuid.NewString()
	if err := g.accounts.SetConnection(ctx, accountID, connectionID); err != nil {
		return "", err
	}
	g.registry.Add(connectionID, c)
	observability.RealtimeConnections.Inc()
	g.logger.Info("realtime join", "account_id", accountID, "connection_id", connectionID)
	return connectionID, nil
}

// Unregister is idempotent; socket handlers call it from defer and a
// close handler, whichever fires first wins.
func (g *Gateway) Unregister(ctx context.Context, connectionID string) {
	if !g.registry.Remove(connectionID) {
		return
	}
	observability.RealtimeConnections.Dec()
	if err := g.accounts.ClearConnection(ctx, connectionID); err != nil {
		g.logger.Warn("clear connection failed", "connection_id", connectionID, "error", err)
	}
}

// Send implements the push contract the ride lifecycle depends on.
// Best-effort: the caller never learns whether delivery happened.
func (g *Gateway) Send(accountID types.ID, event string, payload any) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a, err := g.accounts.GetByID(ctx, accountID)
	if err != nil || a.ConnectionID == "" {
		observability.RealtimeDropped.Inc()
		return
	}
	c, ok := g.registry.Get(a.ConnectionID)
	if !ok {
		observability.RealtimeDropped.Inc()
		return
	}
	if err := c.WriteJSON(Envelope{Event: event, Data: payload}); err != nil {
		observability.RealtimeDropped.Inc()
		g.logger.Warn("realtime write failed", "account_id", accountID, "event", event, "error", err)
	}
}

// UpdateCaptainLocation validates and records a captain position,
// refreshes the geo index when Redis is configured, and relays the
// position to the rider of the captain's active ride, if any. Only
// that rider sees it; there is no broadcast.
func (g *Gateway) UpdateCaptainLocation(ctx context.Context, captainID types.ID, p types.Point) error {
	if p.Zero() || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrBadLocation
	}
	if err := g.accounts.SetLocation(ctx, captainID, p); err != nil {
		return err
	}
	observability.LocationUpdates.Inc()

	if g.redis != nil {
		if err := g.redis.GeoAdd(ctx, geoKey, &redis.GeoLocation{
			Name:      string(captainID),
			Latitude:  p.Lat,
			Longitude: p.Lng,
		}).Err(); err != nil {
			g.logger.Warn("geo index update failed", "captain_id", captainID, "error", err)
		}
	}

	active, err := g.rides.FindActiveByCaptain(ctx, captainID)
	if err != nil {
		if errors.Is(err, ride.ErrNotFound) {
			return nil
		}
		return err
	}
	g.Send(active.RiderID, EventCaptainLocation, map[string]any{
		"captainId": captainID,
		"location":  p,
	})
	return nil
}
