package decision

import (
	"time"

	"credit-decision-engine/internal/models"
)

// StepCount is the number of form steps an application goes through.
const StepCount = 3

// Engine evaluates applicant profiles under one rule policy and one
// aggregation mode. It is purely computational: no I/O, no stored state,
// safe for concurrent use across independent applications as long as each
// caller holds its own profile and accumulator.
type Engine struct {
	policy         Policy
	mode           Mode
	startDelayDays int
}

// NewEngine creates an engine. A non-positive start delay falls back to
// the default release delay.
func NewEngine(policy Policy, mode Mode, startDelayDays int) *Engine {
	if startDelayDays <= 0 {
		startDelayDays = DefaultStartDelayDays
	}

	return &Engine{
		policy:         policy,
		mode:           mode,
		startDelayDays: startDelayDays,
	}
}

// PolicyName returns the name of the active rule policy.
func (e *Engine) PolicyName() string {
	return e.policy.Name
}

// Mode returns the active aggregation mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Schedule computes the credit period for a profile as of the evaluation
// date.
func (e *Engine) Schedule(p *models.ApplicantProfile, ref time.Time) Schedule {
	return BuildSchedule(p, ref, e.startDelayDays)
}

// EvaluateStep runs the rule group for one form step against the profile
// collected so far and returns the alerts it raised.
func (e *Engine) EvaluateStep(step int, p *models.ApplicantProfile, ref time.Time) ([]models.Alert, error) {
	group, err := e.policy.Group(step)
	if err != nil {
		return nil, err
	}

	return group(p, e.Schedule(p, ref)), nil
}

// EvaluateAll runs every rule group in form order against a profile and
// returns the accumulated alerts. In stop-early mode the walk stops after
// the first group that raises a red alert, mirroring a staged form that
// refuses before later steps are reached.
func (e *Engine) EvaluateAll(p *models.ApplicantProfile, ref time.Time) *models.AlertList {
	schedule := e.Schedule(p, ref)
	accumulated := &models.AlertList{}

	for _, group := range []GroupFunc{e.policy.Financial, e.policy.Account, e.policy.Employment} {
		accumulated.Add(group(p, schedule)...)
		if e.mode == ModeStopEarly && accumulated.HasRed() {
			break
		}
	}

	return accumulated
}

// Decide aggregates the accumulated alerts into the final verdict.
func (e *Engine) Decide(alerts *models.AlertList) models.Decision {
	return Aggregate(alerts)
}
