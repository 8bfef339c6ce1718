package models

import (
	"time"
)

// Outcome is the final verdict on an application.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeConditionalRisk Outcome = "conditional_risk"
	OutcomeRefused         Outcome = "refused"
)

// ValidOutcomes returns all valid outcome values.
func ValidOutcomes() []Outcome {
	return []Outcome{
		OutcomeAccepted,
		OutcomeConditionalRisk,
		OutcomeRefused,
	}
}

// IsValid checks if the outcome is valid.
func (o Outcome) IsValid() bool {
	for _, valid := range ValidOutcomes() {
		if o == valid {
			return true
		}
	}
	return false
}

// Label returns the human-readable form of the outcome.
func (o Outcome) Label() string {
	switch o {
	case OutcomeAccepted:
		return "Accepted"
	case OutcomeConditionalRisk:
		return "Conditional risk"
	case OutcomeRefused:
		return "Refused"
	default:
		return string(o)
	}
}

// Decision is the aggregated verdict together with the reasons that
// produced it, in the order they were first observed. An accepted
// application carries no reasons.
type Decision struct {
	Outcome   Outcome   `json:"outcome"`
	Reasons   []string  `json:"reasons,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}

// DecisionRecord is one row of the append-only history log: the complete
// profile snapshot plus the decision taken on it.
type DecisionRecord struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Profile   ApplicantProfile `json:"profile"`
	Outcome   Outcome          `json:"outcome"`
	Reasons   []string         `json:"reasons,omitempty"`
	Policy    string           `json:"policy"`
	Mode      string           `json:"mode"`
	CreatedAt time.Time        `json:"created_at"`
}
