package decision

import (
	"credit-decision-engine/internal/models"
)

// Alert messages. The exact text doubles as the de-duplication key for the
// accumulator, so changing one retires the old reason everywhere at once.
const (
	MsgDebtRatioTooHigh       = "debt ratio too high"
	MsgContractEndsBeforeTerm = "fixed-term contract ends before requested credit term"
	MsgCustomerTooRecent      = "customer too recent"
	MsgCurrentDelinquency     = "current unpaid debt within last 6 months"
	MsgPastDelinquencyCap     = "cap debt ratio at 25% due to past delinquency"
	MsgNoEmployerChange       = "no employer change despite past delinquency"
	MsgTenureTooShort         = "employer tenure under 3 months"
	MsgEmployerRedAlert       = "employer known with risky financial standing"
	MsgEmployerPending        = "employer status needs further verification"

	// Legacy rule set only.
	MsgTooManyPastDelinquencies = "too many past delinquencies"
	MsgEmployerNotReliable      = "employer not reliable or under suspicion"
	MsgEmployerSuspicion        = "verification needed on employer"
)

// Rule thresholds.
const (
	maxDebtRatio            = 1.0 / 3.0
	pastDelinquencyCap      = 0.25
	minAccountAgeMonths     = 3
	minTenureMonths         = 3
	tenureReviewCeiling     = 12
	maxPastDelinquencyCount = 1
)

// financialRules is the step 1 group, shared by both rule sets. The
// debt-ratio rule fires as soon as any ratio can be established; the
// fixed-term rule needs the contract end date and a bounded credit period.
func financialRules(p *models.ApplicantProfile, schedule Schedule) []models.Alert {
	var alerts []models.Alert

	if ratio, ok := EffectiveDebtRatio(p); ok && ratio > maxDebtRatio {
		alerts = append(alerts, models.RedAlert(MsgDebtRatioTooHigh))
	}

	if p.ContractType != nil && *p.ContractType == models.ContractFixedTerm &&
		p.ContractEndDate != nil && schedule.EndKnown &&
		p.ContractEndDate.Before(schedule.End) {
		alerts = append(alerts, models.RedAlert(MsgContractEndsBeforeTerm))
	}

	return alerts
}

// accountRulesCurrent is the step 2 group of the current rule set. A past
// delinquency is forgiven when the applicant changed employer or their
// situation improved, subject to a tighter 25% ratio cap; with both flags
// explicitly false it is a refusal. Flags not yet supplied decide nothing.
func accountRulesCurrent(p *models.ApplicantProfile, schedule Schedule) []models.Alert {
	alerts := accountBaseRules(p)

	if p.PastDelinquency != nil && *p.PastDelinquency {
		changed := p.EmployerChanged != nil && *p.EmployerChanged
		improved := p.SituationImproved != nil && *p.SituationImproved

		switch {
		case changed || improved:
			if ratio, ok := EffectiveDebtRatio(p); ok && ratio > pastDelinquencyCap {
				alerts = append(alerts, models.OrangeAlert(MsgPastDelinquencyCap))
			}
		case p.EmployerChanged != nil && p.SituationImproved != nil:
			alerts = append(alerts, models.RedAlert(MsgNoEmployerChange))
		}
	}

	return alerts
}

// accountRulesLegacy is the step 2 group of the legacy rule set, which
// counts past delinquencies instead of inspecting what changed since.
func accountRulesLegacy(p *models.ApplicantProfile, schedule Schedule) []models.Alert {
	alerts := accountBaseRules(p)

	if p.PastDelinquencyCount != nil && *p.PastDelinquencyCount > maxPastDelinquencyCount {
		alerts = append(alerts, models.RedAlert(MsgTooManyPastDelinquencies))
	}

	return alerts
}

// accountBaseRules holds the step 2 rules common to both rule sets.
func accountBaseRules(p *models.ApplicantProfile) []models.Alert {
	var alerts []models.Alert

	if p.AccountAgeMonths != nil && *p.AccountAgeMonths < minAccountAgeMonths {
		alerts = append(alerts, models.RedAlert(MsgCustomerTooRecent))
	}

	if p.CurrentDelinquency != nil && *p.CurrentDelinquency {
		alerts = append(alerts, models.RedAlert(MsgCurrentDelinquency))
	}

	return alerts
}

// employmentRulesCurrent is the step 3 group of the current rule set: the
// three-state employer status decides between refusal, manual review and a
// clean pass. The status rule stays quiet until the field is supplied.
func employmentRulesCurrent(p *models.ApplicantProfile, schedule Schedule) []models.Alert {
	alerts := employmentBaseRules(p)

	if p.EmployerStatus != nil {
		switch *p.EmployerStatus {
		case models.EmployerKnownRedAlert:
			alerts = append(alerts, models.RedAlert(MsgEmployerRedAlert))
		case models.EmployerUnknownPending:
			alerts = append(alerts, models.OrangeAlert(MsgEmployerPending))
		}
	}

	return alerts
}

// employmentRulesLegacy is the step 3 group of the legacy rule set: an
// unverified or suspected employer inside the 3-12 month tenure band is
// flagged for review, and a suspicion flags review at any tenure.
func employmentRulesLegacy(p *models.ApplicantProfile, schedule Schedule) []models.Alert {
	alerts := employmentBaseRules(p)

	known := p.EmployerKnown == nil || *p.EmployerKnown
	suspicion := p.EmployerSuspicion != nil && *p.EmployerSuspicion

	if p.EmployerTenureMonths != nil &&
		*p.EmployerTenureMonths >= minTenureMonths &&
		*p.EmployerTenureMonths <= tenureReviewCeiling &&
		(!known || suspicion) {
		alerts = append(alerts, models.OrangeAlert(MsgEmployerNotReliable))
	}

	if suspicion {
		alerts = append(alerts, models.OrangeAlert(MsgEmployerSuspicion))
	}

	return alerts
}

// employmentBaseRules holds the step 3 rule common to both rule sets.
func employmentBaseRules(p *models.ApplicantProfile) []models.Alert {
	var alerts []models.Alert

	if p.EmployerTenureMonths != nil && *p.EmployerTenureMonths < minTenureMonths {
		alerts = append(alerts, models.RedAlert(MsgTenureTooShort))
	}

	return alerts
}
