// Package session holds the state of in-flight credit applications: the
// profile collected so far, the accumulated alerts and the step cursor.
// Each application owns its state through an explicit session object kept
// in a store, so independent applications never share mutable state.
package session

import (
	"time"

	"credit-decision-engine/internal/models"
)

// Status of an application session.
type Status string

const (
	StatusCollecting Status = "collecting"
	StatusDecided    Status = "decided"
)

// Session is the state of one application. Step is the form step currently
// being collected (1-based); earlier steps may be resubmitted, later ones
// not reached yet. Alerts grow monotonically until Reset.
type Session struct {
	ID            string                  `json:"id"`
	Status        Status                  `json:"status"`
	Step          int                     `json:"step"`
	Policy        string                  `json:"policy"`
	Mode          string                  `json:"mode"`
	ReferenceDate time.Time               `json:"reference_date"`
	Profile       models.ApplicantProfile `json:"profile"`
	Alerts        models.AlertList        `json:"alerts"`
	Decision      *models.Decision        `json:"decision,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// Clone returns a copy safe to hand across store boundaries. Profile
// pointer fields are shared but never written through; alert items and
// decision reasons get their own backing arrays.
func (s *Session) Clone() *Session {
	copied := *s
	copied.Alerts = models.AlertList{Items: append([]models.Alert(nil), s.Alerts.Items...)}

	if s.Decision != nil {
		d := *s.Decision
		d.Reasons = append([]string(nil), s.Decision.Reasons...)
		copied.Decision = &d
	}

	return &copied
}
