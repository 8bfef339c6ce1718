package decision

import (
	"fmt"
	"time"

	"credit-decision-engine/internal/models"
)

// Mode selects when the verdict falls. Earlier product revisions refused
// as soon as a step raised a red alert; later ones collect alerts across
// every step and decide once at the end. The reasons list the caller sees
// differs between the two, so the mode is explicit configuration.
type Mode string

const (
	ModeCollectAll Mode = "collect-all"
	ModeStopEarly  Mode = "stop-early"
)

// ModeByName resolves a configured aggregation mode.
func ModeByName(name string) (Mode, error) {
	switch Mode(name) {
	case ModeCollectAll:
		return ModeCollectAll, nil
	case ModeStopEarly:
		return ModeStopEarly, nil
	}
	if name == "" {
		return ModeCollectAll, nil
	}
	return "", fmt.Errorf("unknown aggregation mode %q", name)
}

// Aggregate turns the accumulated alerts into the final verdict. Any red
// alert forces refusal with the red messages in first-observed order;
// otherwise any orange alert downgrades to conditional risk; a clean list
// is an acceptance with no reasons.
func Aggregate(alerts *models.AlertList) models.Decision {
	now := time.Now().UTC()

	if reds := alerts.Messages(models.SeverityRed); len(reds) > 0 {
		return models.Decision{Outcome: models.OutcomeRefused, Reasons: reds, DecidedAt: now}
	}

	if oranges := alerts.Messages(models.SeverityOrange); len(oranges) > 0 {
		return models.Decision{Outcome: models.OutcomeConditionalRisk, Reasons: oranges, DecidedAt: now}
	}

	return models.Decision{Outcome: models.OutcomeAccepted, DecidedAt: now}
}
