package decision

import (
	"fmt"

	"credit-decision-engine/internal/models"
)

// GroupFunc is one rule group: a pure predicate set over the profile
// collected so far and the computed credit schedule. Implementations must
// not mutate the profile.
type GroupFunc func(p *models.ApplicantProfile, schedule Schedule) []models.Alert

// Policy bundles the rule group for each form step. The past-delinquency
// and employer-trust rules changed between product revisions and neither
// variant has been retired, so both ship as selectable policies and each
// group can be swapped independently without touching the engine.
type Policy struct {
	Name       string
	Financial  GroupFunc
	Account    GroupFunc
	Employment GroupFunc
}

// Policy names accepted in configuration.
const (
	PolicyNameV1 = "v1"
	PolicyNameV2 = "v2"
)

// PolicyV2 is the current rule set: boolean past-delinquency follow-ups
// with a 25% ratio cap, and the three-state employer status.
func PolicyV2() Policy {
	return Policy{
		Name:       PolicyNameV2,
		Financial:  financialRules,
		Account:    accountRulesCurrent,
		Employment: employmentRulesCurrent,
	}
}

// PolicyV1 is the legacy rule set: count-based past delinquencies and
// tenure-band employer vetting with a suspicion flag.
func PolicyV1() Policy {
	return Policy{
		Name:       PolicyNameV1,
		Financial:  financialRules,
		Account:    accountRulesLegacy,
		Employment: employmentRulesLegacy,
	}
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyNameV1:
		return PolicyV1(), nil
	case PolicyNameV2, "":
		return PolicyV2(), nil
	default:
		return Policy{}, fmt.Errorf("unknown rule policy %q", name)
	}
}

// Group returns the rule group for a form step (1 = financial/contract,
// 2 = account/delinquency, 3 = employment).
func (p Policy) Group(step int) (GroupFunc, error) {
	switch step {
	case 1:
		return p.Financial, nil
	case 2:
		return p.Account, nil
	case 3:
		return p.Employment, nil
	default:
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidStep, step)
	}
}
