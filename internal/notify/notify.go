// README: Notification dispatcher boundary (OTP codes and ride status alerts).
package notify

import (
	"context"
	"log/slog"
)

// Channel selects the delivery medium for an OTP code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound notification. Delivery is handled by an
// external worker; the dispatcher only hands the message off.
type Message struct {
	Kind    string  `json:"kind"` // "otp" or "ride_alert"
	Channel Channel `json:"channel,omitempty"`
	To      string  `json:"to"`
	Subject string  `json:"subject,omitempty"`
	Code    string  `json:"code,omitempty"`
	RideID  string  `json:"ride_id,omitempty"`
	Body    string  `json:"body,omitempty"`
}

// Dispatcher is the collaborator boundary for email/SMS delivery.
// Implementations must not block ride state transitions on failure.
type Dispatcher interface {
	SendOTP(ctx context.Context, ch Channel, to, code string) error
	SendRideAlert(ctx context.Context, to, subject, rideID, body string) error
}

// LogDispatcher writes notifications to the structured log. Used in
// dev and tests where no delivery backend is configured.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) SendOTP(_ context.Context, ch Channel, to, code string) error {
	d.Logger.Info("notify_otp", "channel", string(ch), "to", to, "code", code)
	return nil
}

func (d *LogDispatcher) SendRideAlert(_ context.Context, to, subject, rideID, body string) error {
	d.Logger.Info("notify_ride_alert", "to", to, "subject", subject, "ride_id", rideID, "body", body)
	return nil
}
