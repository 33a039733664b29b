package types

import "fmt"

// Acceptance represents the review state of an executed action
type Acceptance string

const (
	AcceptancePending  Acceptance = "pending"
	AcceptanceAccepted Acceptance = "accepted"
	AcceptanceRejected Acceptance = "rejected"
)

// AllAcceptances returns all valid acceptance states
func AllAcceptances() []Acceptance {
	return []Acceptance{
		AcceptancePending,
		AcceptanceAccepted,
		AcceptanceRejected,
	}
}

// IsValid checks if the acceptance state is valid
func (a Acceptance) IsValid() bool {
	switch a {
	case AcceptancePending, AcceptanceAccepted, AcceptanceRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the acceptance state
func (a Acceptance) String() string {
	return string(a)
}

// ParseAcceptance parses a string into an Acceptance
func ParseAcceptance(s string) (Acceptance, error) {
	a := Acceptance(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid acceptance state: %s", s)
	}
	return a, nil
}
