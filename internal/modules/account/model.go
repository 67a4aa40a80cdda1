// README: Account aggregate for riders, captains, and admins.
package account

import (
	"time"

	"swiftcab/internal/types"
)

type Role string

const (
	RoleRider   Role = "rider"
	RoleCaptain Role = "captain"
	RoleAdmin   Role = "admin"
)

// Vehicle descriptor, captains only.
type Vehicle struct {
	Color    string `json:"color"`
	Plate    string `json:"plate"`
	Capacity int    `json:"capacity"`
	Class    string `json:"class"`
}

type Account struct {
	ID        types.ID
	Role      Role
	FirstName string
	LastName  string
	Email     string
	Phone     string

	// Credential and OTP material; never serialized in default reads.
	PasswordHash string
	EmailOTP     string
	MobileOTP    string

	EmailVerified  bool
	MobileVerified bool

	// Presence, owned by the realtime gateway.
	ConnectionID string
	LiveLocation types.Point

	// Captain-only fields.
	Status    string // "active" / "inactive"
	Vehicle   *Vehicle
	LicenseNo string
	PhotoURL  string

	CreatedAt time.Time
}

// Verified reports whether the account can log in.
func (a *Account) Verified() bool {
	return a.EmailVerified && a.MobileVerified
}

// Profile is the public view of an account, safe to hand to the other
// party of a ride. Credential and OTP fields never appear here.
type Profile struct {
	ID        types.ID `json:"id"`
	Role      Role     `json:"role"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Vehicle   *Vehicle `json:"vehicle,omitempty"`
	PhotoURL  string   `json:"photo_url,omitempty"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Role:      a.Role,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
		Vehicle:   a.Vehicle,
		PhotoURL:  a.PhotoURL,
	}
}
