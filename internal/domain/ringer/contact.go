package ringer

import "errors"

// ErrInvalidContact is returned for a contact without a name.
var ErrInvalidContact = errors.New("contact name is required")

// TrustedContact is a caller that is allowed to break through silence.
// The Name/Number pair is the identity of the contact.
type TrustedContact struct {
	// Name is the display name shown by calling apps.
	Name string
	// Number is the phone number as entered by the user.
	Number string
}

// Equal reports whether both contacts have the same identity.
func (c TrustedContact) Equal(other TrustedContact) bool {
	return c.Name == other.Name && c.Number == other.Number
}

// Clone returns a copy of the contact.
func (c *TrustedContact) Clone() *TrustedContact {
	if c == nil {
		return nil
	}

	cloned := *c

	return &cloned
}

// Actor identifies who requested a manual action through the control plane.
type Actor struct {
	// Hostname is the machine name where the request originated.
	Hostname string
	// Username is the system user who issued the request.
	Username string
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}
