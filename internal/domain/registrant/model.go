package registrant

import (
	"fmt"
	"regexp"
	"time"
)

const MaxNameLength = 100

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Registrant is a person signed up for a session, on either the main list or
// the waitlist. Position is 1-based and scoped to the list the registrant is
// currently on.
type Registrant struct {
	ID         string
	SessionID  string
	Name       string
	PIN        string
	Position   int
	Waitlisted bool
	Paid       bool
	SignedUpAt time.Time
}

func (r Registrant) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("registrant session id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("registrant name is required")
	}
	if len(r.Name) > MaxNameLength {
		return fmt.Errorf("registrant name exceeds %d characters", MaxNameLength)
	}
	if !ValidPIN(r.PIN) {
		return fmt.Errorf("registrant pin must be exactly 4 digits")
	}
	if r.Position < 1 {
		return fmt.Errorf("registrant position must be >= 1")
	}
	return nil
}

// ValidPIN reports whether pin is exactly four digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// Redacted returns a copy safe to hand outward. The PIN is only ever compared
// server side.
func (r Registrant) Redacted() Registrant {
	r.PIN = ""
	return r
}
