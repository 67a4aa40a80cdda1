// README: Gateway tests with a fake connection; no sockets involved.
package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/ride"
	"swiftcab/internal/types"
)

type fakeConn struct {
	mu     sync.Mutex
	writes []Envelope
	fail   bool
	closed bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("write on closed socket")
	}
	c.writes = append(c.writes, v.(Envelope))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) envelopes() []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, len(c.writes))
	copy(out, c.writes)
	return out
}

func newTestGateway(t *testing.T) (*Gateway, *account.MemoryStore, *ride.MemoryStore) {
	t.Helper()
	accounts := account.NewMemoryStore()
	rides := ride.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGateway(NewRegistry(), accounts, rides, nil, logger), accounts, rides
}

func seed(t *testing.T, accounts *account.MemoryStore, id types.ID, role account.Role) {
	t.Helper()
	err := accounts.Create(context.Background(), &account.Account{
		ID:    id,
		Role:  role,
		Email: string(id) + "@example.com",
		Phone: "+91987654321-" + string(id),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestRegisterAndSend(t *testing.T) {
	g, accounts, _ := newTestGateway(t)
	ctx := context.Background()
	seed(t, accounts, "r1", account.RoleRider)

	c := &fakeConn{}
	connID, err := g.Register(ctx, "r1", c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	g.Send("r1", "ride-confirmed", map[string]any{"rideId": "x"})
	got := c.envelopes()
	if len(got) != 1 || got[0].Event != "ride-confirmed" {
		t.Fatalf("envelopes = %+v", got)
	}

	// After unregister the event is dropped silently.
	g.Unregister(ctx, connID)
	g.Send("r1", "ride-started", nil)
	if len(c.envelopes()) != 1 {
		t.Fatal("send after unregister must not reach the old connection")
	}

	// Double unregister is a no-op.
	g.Unregister(ctx, connID)
}

func TestRegisterUnknownAccount(t *testing.T) {
	g, _, _ := newTestGateway(t)
	if _, err := g.Register(context.Background(), "ghost", &fakeConn{}); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected account.ErrNotFound, got %v", err)
	}
}

func TestRejoinTakesOver(t *testing.T) {
	g, accounts, _ := newTestGateway(t)
	ctx := context.Background()
	seed(t, accounts, "r1", account.RoleRider)

	old := &fakeConn{}
	if _, err := g.Register(ctx, "r1", old); err != nil {
		t.Fatalf("first register: %v", err)
	}
	fresh := &fakeConn{}
	if _, err := g.Register(ctx, "r1", fresh); err != nil {
		t.Fatalf("second register: %v", err)
	}

	g.Send("r1", "ride-confirmed", nil)
	if len(fresh.envelopes()) != 1 {
		t.Fatal("newest connection did not receive the event")
	}
	if len(old.envelopes()) != 0 {
		t.Fatal("stale connection received the event")
	}
}

func TestSendSurvivesWriteFailure(t *testing.T) {
	g, accounts, _ := newTestGateway(t)
	ctx := context.Background()
	seed(t, accounts, "r1", account.RoleRider)

	c := &fakeConn{fail: true}
	if _, err := g.Register(ctx, "r1", c); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Must not panic or block; the drop is counted, nothing else.
	g.Send("r1", "ride-confirmed", nil)
}

func TestUpdateCaptainLocation(t *testing.T) {
	g, accounts, rides := newTestGateway(t)
	ctx := context.Background()
	seed(t, accounts, "c1", account.RoleCaptain)
	seed(t, accounts, "r1", account.RoleRider)

	// Invalid payloads fail fast and never touch the store.
	for _, p := range []types.Point{{}, {Lat: 91, Lng: 10}, {Lat: 10, Lng: 181}, {Lat: -95, Lng: -10}} {
		if err := g.UpdateCaptainLocation(ctx, "c1", p); !errors.Is(err, ErrBadLocation) {
			t.Fatalf("point %+v: expected ErrBadLocation, got %v", p, err)
		}
	}

	// Without an active ride the position is stored and nothing is pushed.
	riderConn := &fakeConn{}
	if _, err := g.Register(ctx, "r1", riderConn); err != nil {
		t.Fatalf("register rider: %v", err)
	}
	pos := types.Point{Lat: 28.6139, Lng: 77.2090}
	if err := g.UpdateCaptainLocation(ctx, "c1", pos); err != nil {
		t.Fatalf("update without ride: %v", err)
	}
	if len(riderConn.envelopes()) != 0 {
		t.Fatal("no ride is active, rider must not be notified")
	}
	stored, err := accounts.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("get captain: %v", err)
	}
	if stored.LiveLocation != pos {
		t.Fatalf("location not persisted: %+v", stored.LiveLocation)
	}

	// With an accepted ride the captain's rider, and only that rider,
	// receives the update.
	capID := types.ID("c1")
	r := &ride.Ride{ID: "ride-1", RiderID: "r1", Status: ride.StatusRequested}
	if err := rides.Create(ctx, r); err != nil {
		t.Fatalf("create ride: %v", err)
	}
	if ok, err := rides.UpdateStatus(ctx, r.ID, ride.StatusRequested, ride.StatusAccepted, 0, &capID, nil); err != nil || !ok {
		t.Fatalf("accept ride: ok=%v err=%v", ok, err)
	}

	if err := g.UpdateCaptainLocation(ctx, "c1", pos); err != nil {
		t.Fatalf("update with ride: %v", err)
	}
	got := riderConn.envelopes()
	if len(got) != 1 || got[0].Event != EventCaptainLocation {
		t.Fatalf("envelopes = %+v", got)
	}
	data := got[0].Data.(map[string]any)
	if data["captainId"] != types.ID("c1") {
		t.Fatalf("payload captainId = %v", data["captainId"])
	}
	if data["location"] != pos {
		t.Fatalf("payload location = %v", data["location"])
	}
}
