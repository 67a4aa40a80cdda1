// README: Ride lifecycle tests (state machine, OTP gate, pushes).
package ride

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"swiftcab/internal/maps"
	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/fare"
	"swiftcab/internal/notify"
	"swiftcab/internal/types"
)

// TestCanTransition verifies the transition table without any store.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// the six legal edges
		{StatusRequested, StatusAccepted, true},
		{StatusAccepted, StatusStarted, true},
		{StatusStarted, StatusCompleted, true},
		{StatusRequested, StatusRejected, true},
		{StatusRequested, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		// no skipping forward
		{StatusRequested, StatusStarted, false},
		{StatusRequested, StatusCompleted, false},
		{StatusAccepted, StatusCompleted, false},
		// no moving backward
		{StatusAccepted, StatusRequested, false},
		{StatusStarted, StatusAccepted, false},
		// started can no longer be cancelled or rejected
		{StatusStarted, StatusCancelled, false},
		{StatusStarted, StatusRejected, false},
		{StatusAccepted, StatusRejected, false},
		// terminal states have no outgoing edges
		{StatusCompleted, StatusRequested, false},
		{StatusCompleted, StatusStarted, false},
		{StatusCancelled, StatusAccepted, false},
		{StatusRejected, StatusRequested, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

type pushedEvent struct {
	AccountID types.ID
	Event     string
	Payload   any
}

type recordingPusher struct {
	mu     sync.Mutex
	events []pushedEvent
}

func (p *recordingPusher) Send(accountID types.ID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushedEvent{accountID, event, payload})
}

func (p *recordingPusher) all() []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushedEvent, len(p.events))
	copy(out, p.events)
	return out
}

type nopDispatcher struct{}

func (nopDispatcher) SendOTP(context.Context, notify.Channel, string, string) error { return nil }
func (nopDispatcher) SendRideAlert(context.Context, string, string, string, string) error {
	return nil
}

type fixture struct {
	svc    *Service
	store  *MemoryStore
	pusher *recordingPusher
	rider  types.ID
	cap1   types.ID
}

func setup(t *testing.T) *fixture {
	t.Helper()
	accounts := account.NewMemoryStore()
	ctx := context.Background()
	rider := &account.Account{ID: "r1", Role: account.RoleRider, Email: "rider@example.com", Phone: "+919876543210", FirstName: "Asha"}
	captain := &account.Account{
		ID: "c1", Role: account.RoleCaptain, Email: "cap@example.com", Phone: "+919876543211",
		FirstName: "Ravi", Vehicle: &account.Vehicle{Plate: "DL 3C 1234", Capacity: 4, Class: "sedan"},
	}
	if err := accounts.Create(ctx, rider); err != nil {
		t.Fatalf("seed rider: %v", err)
	}
	if err := accounts.Create(ctx, captain); err != nil {
		t.Fatalf("seed captain: %v", err)
	}

	store := NewMemoryStore()
	pusher := &recordingPusher{}
	fares := fare.NewService(maps.StaticProvider{DistanceKm: 10, DurationMin: 20})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, fares, accounts, nopDispatcher{}, pusher, "admin@example.com", logger)
	return &fixture{svc: svc, store: store, pusher: pusher, rider: "r1", cap1: "c1"}
}

func (f *fixture) create(t *testing.T) *Ride {
	t.Helper()
	r, err := f.svc.Create(context.Background(), CreateCommand{
		RiderID:      f.rider,
		Pickup:       "123 Main St",
		Destination:  "456 Oak Ave",
		VehicleClass: "sedan",
	})
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return r
}

func TestCreateRide(t *testing.T) {
	f := setup(t)
	r := f.create(t)

	if r.Status != StatusRequested {
		t.Fatalf("status = %s, want requested", r.Status)
	}
	if len(r.StartOTP) != account.OTPLength {
		t.Fatalf("start OTP %q has wrong length", r.StartOTP)
	}
	// sedan over 10km/20min with the static provider: 50 + 150 + 60.
	if r.Fare.Amount != 260 {
		t.Fatalf("fare = %d, want 260", r.Fare.Amount)
	}
	if len(f.pusher.all()) != 0 {
		t.Fatal("create must not push realtime events")
	}
}

func TestCreateRideValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateCommand{RiderID: f.rider, Pickup: "ab", Destination: "456 Oak Ave", VehicleClass: "sedan"}); !errors.Is(err, fare.ErrBadRequest) {
		t.Fatalf("short pickup: expected fare.ErrBadRequest, got %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateCommand{RiderID: f.rider, Pickup: "123 Main St", Destination: "456 Oak Ave", VehicleClass: "helicopter"}); !errors.Is(err, fare.ErrBadRequest) {
		t.Fatalf("bad class: expected fare.ErrBadRequest, got %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateCommand{Pickup: "123 Main St", Destination: "456 Oak Ave", VehicleClass: "sedan"}); err != ErrBadRequest {
		t.Fatalf("missing rider: expected ErrBadRequest, got %v", err)
	}
}

type failingProvider struct{}

func (failingProvider) Route(context.Context, string, string) (maps.Route, error) {
	return maps.Route{}, errors.New("upstream down")
}

func TestCreateRideUpstreamFailure(t *testing.T) {
	f := setup(t)
	fares := fare.NewService(failingProvider{})
	f.svc.fares = fares

	_, err := f.svc.Create(context.Background(), CreateCommand{
		RiderID: f.rider, Pickup: "123 Main St", Destination: "456 Oak Ave", VehicleClass: "sedan",
	})
	if !errors.Is(err, fare.ErrUpstream) {
		t.Fatalf("expected fare.ErrUpstream, got %v", err)
	}
}

func TestRideHappyPath(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.create(t)

	confirmed, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r.ID, CaptainID: f.cap1})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != StatusAccepted {
		t.Fatalf("status = %s, want accepted", confirmed.Status)
	}
	if confirmed.CaptainID == nil || *confirmed.CaptainID != f.cap1 {
		t.Fatal("captain not assigned")
	}

	started, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: f.cap1, OTP: " " + r.StartOTP + " "})
	if err != nil {
		t.Fatalf("start with padded OTP: %v", err)
	}
	if started.Status != StatusStarted {
		t.Fatalf("status = %s, want started", started.Status)
	}

	ended, err := f.svc.End(ctx, EndCommand{RideID: r.ID, CaptainID: f.cap1})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", ended.Status)
	}

	events := f.pusher.all()
	if len(events) != 3 {
		t.Fatalf("expected 3 pushes, got %d", len(events))
	}
	wantOrder := []string{EventRideConfirmed, EventRideStarted, EventRideEnded}
	for i, e := range events {
		if e.AccountID != f.rider {
			t.Errorf("push %d targeted %s, want the rider", i, e.AccountID)
		}
		if e.Event != wantOrder[i] {
			t.Errorf("push %d = %s, want %s", i, e.Event, wantOrder[i])
		}
	}

	// ride-confirmed must carry the ride (with OTP) and the captain's
	// public profile, never the captain's credentials.
	payload, ok := events[0].Payload.(map[string]any)
	if !ok {
		t.Fatalf("confirm payload type %T", events[0].Payload)
	}
	pr, ok := payload["ride"].(*Ride)
	if !ok || pr.StartOTP != r.StartOTP {
		t.Fatal("confirm payload missing ride start OTP")
	}
	profile, ok := payload["captain"].(account.Profile)
	if !ok || profile.ID != f.cap1 {
		t.Fatal("confirm payload missing captain profile")
	}
}

func TestStartRequiresExactOTP(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.create(t)

	// Correct OTP in the wrong state is still refused.
	if _, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: f.cap1, OTP: r.StartOTP}); err != ErrInvalidState {
		t.Fatalf("start before confirm: expected ErrInvalidState, got %v", err)
	}

	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r.ID, CaptainID: f.cap1}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: f.cap1, OTP: "000000"}); err != ErrInvalidOTP {
		t.Fatalf("wrong OTP: expected ErrInvalidOTP, got %v", err)
	}
	// A different captain cannot start someone else's ride.
	if _, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: "c2", OTP: r.StartOTP}); err != ErrInvalidState {
		t.Fatalf("foreign captain: expected ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: f.cap1, OTP: r.StartOTP}); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: "missing", CaptainID: f.cap1}); err != ErrNotFound {
		t.Fatalf("confirm missing ride: expected ErrNotFound, got %v", err)
	}

	r := f.create(t)
	if _, err := f.svc.End(ctx, EndCommand{RideID: r.ID, CaptainID: f.cap1}); err != ErrInvalidState {
		t.Fatalf("end requested ride: expected ErrInvalidState, got %v", err)
	}

	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r.ID, CaptainID: f.cap1}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r.ID, CaptainID: "c2"}); err != ErrInvalidState {
		t.Fatalf("double confirm: expected ErrInvalidState, got %v", err)
	}
	// accepted can no longer be rejected, only cancelled.
	if _, err := f.svc.Reject(ctx, CancelCommand{RideID: r.ID, Reason: "too far"}); err != ErrInvalidState {
		t.Fatalf("reject accepted ride: expected ErrInvalidState, got %v", err)
	}
}

func TestCancelAndReject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r := f.create(t)
	rejected, err := f.svc.Reject(ctx, CancelCommand{RideID: r.ID, Reason: "no captains nearby"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}
	if rejected.CancelReason == nil || *rejected.CancelReason != "no captains nearby" {
		t.Fatal("reject reason not recorded")
	}

	r2 := f.create(t)
	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r2.ID, CaptainID: f.cap1}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	pushesBefore := len(f.pusher.all())
	cancelled, err := f.svc.Cancel(ctx, CancelCommand{RideID: r2.ID, Reason: "fraud review"})
	if err != nil {
		t.Fatalf("cancel accepted ride: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	// Cancel notifies by email only; no realtime push.
	if got := len(f.pusher.all()); got != pushesBefore {
		t.Fatalf("cancel pushed %d realtime events", got-pushesBefore)
	}

	// Terminal: nothing moves a cancelled ride.
	if _, err := f.svc.Start(ctx, StartCommand{RideID: r2.ID, CaptainID: f.cap1, OTP: r2.StartOTP}); err != ErrInvalidState {
		t.Fatalf("start cancelled ride: expected ErrInvalidState, got %v", err)
	}
}

func TestFindActiveByCaptain(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.FindActiveByCaptain(ctx, f.cap1); err != ErrNotFound {
		t.Fatalf("no active ride: expected ErrNotFound, got %v", err)
	}

	r := f.create(t)
	if _, err := f.svc.Confirm(ctx, ConfirmCommand{RideID: r.ID, CaptainID: f.cap1}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	active, err := f.svc.FindActiveByCaptain(ctx, f.cap1)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if active.ID != r.ID {
		t.Fatalf("found ride %s, want %s", active.ID, r.ID)
	}

	if _, err := f.svc.Start(ctx, StartCommand{RideID: r.ID, CaptainID: f.cap1, OTP: r.StartOTP}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.FindActiveByCaptain(ctx, f.cap1); err != nil {
		t.Fatalf("started ride should still be active: %v", err)
	}

	if _, err := f.svc.End(ctx, EndCommand{RideID: r.ID, CaptainID: f.cap1}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := f.svc.FindActiveByCaptain(ctx, f.cap1); err != ErrNotFound {
		t.Fatalf("completed ride must not be active: %v", err)
	}
}
