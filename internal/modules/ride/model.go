// README: Ride aggregate and status definitions.
package ride

import (
	"time"

	"swiftcab/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusRequested Status = "requested"
	StatusAccepted  Status = "accepted"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

type Ride struct {
	ID        types.ID  `json:"id"`
	RiderID   types.ID  `json:"rider_id"`
	CaptainID *types.ID `json:"captain_id,omitempty"`

	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`

	VehicleClass  string      `json:"vehicle_class"`
	Fare          types.Money `json:"fare"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	PaymentDone   bool        `json:"payment_done"`

	// StartOTP gates accepted → started. It travels in the
	// ride-confirmed push so the rider can verify the captain at
	// pickup; the captain learns it from the rider in person.
	StartOTP string `json:"start_otp,omitempty"`

	Status        Status `json:"status"`
	StatusVersion int    `json:"-"`

	ScheduledDate string  `json:"scheduled_date,omitempty"`
	ScheduledTime string  `json:"scheduled_time,omitempty"`
	CancelReason  *string `json:"cancel_reason,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the ride state flow (diagram) as code.
// completed, cancelled, and rejected are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusRequested: {StatusAccepted, StatusCancelled, StatusRejected},
	StatusAccepted:  {StatusStarted, StatusCancelled},
	StatusStarted:   {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
