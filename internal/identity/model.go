package identity

import "time"

// User is the durable account record keyed by phone number.
type User struct {
	ID                int64
	Phone             string
	Name              string
	PasswordHash      string
	Email             string
	EmergencyContact1 string
	EmergencyContact2 string
	RegisteredAt      time.Time
	LastLogin         time.Time
	LoginAttempts     int
	IsLocked          bool
	LockTime          time.Time
}

// Profile is the read-only projection handed to screens and cached in the
// session.
type Profile struct {
	ID                int64  `json:"id"`
	Phone             string `json:"phone"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	EmergencyContact1 string `json:"emergency_contact_1,omitempty"`
	EmergencyContact2 string `json:"emergency_contact_2,omitempty"`
}

// Profile projects the user.
func (u User) Profile() Profile {
	return Profile{
		ID:                u.ID,
		Phone:             u.Phone,
		Name:              u.Name,
		Email:             u.Email,
		EmergencyContact1: u.EmergencyContact1,
		EmergencyContact2: u.EmergencyContact2,
	}
}

// Contacts returns the configured emergency contact numbers.
func (p Profile) Contacts() []string {
	var out []string
	for _, c := range []string{p.EmergencyContact1, p.EmergencyContact2} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// LoginState is the mutable part of a user touched by login attempts.
type LoginState struct {
	Attempts  int
	IsLocked  bool
	LockTime  time.Time
	LastLogin time.Time
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Phone           string
	Name            string
	Password        string
	ConfirmPassword string
	Email           string
}
