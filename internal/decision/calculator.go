// Package decision implements the credit decision core: the debt-ratio
// calculator, the rule groups evaluated after each form step, and the
// aggregator that turns accumulated alerts into a final verdict.
package decision

import (
	"time"

	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/utils"
)

// DefaultStartDelayDays is how many days after the evaluation date the
// funds are released and repayment starts.
const DefaultStartDelayDays = 15

// EstimateInstallment derives the estimated monthly installment and debt
// ratio from the financial fields. Amortization is flat with no interest.
// While the duration or the income is missing or not positive the result
// is (0, 0), a "not computable yet" value that never reads as a high
// ratio. Negative charges and amounts are clamped to zero.
func EstimateInstallment(income, charges, amount float64, durationMonths int) (float64, float64) {
	if durationMonths <= 0 || income <= 0 {
		return 0, 0
	}

	if charges < 0 {
		charges = 0
	}
	if amount < 0 {
		amount = 0
	}

	installment := amount / float64(durationMonths)
	ratio := (charges + installment) / income

	return installment, ratio
}

// EffectiveDebtRatio returns the normalized debt ratio the rules evaluate.
// A ratio supplied on the profile wins and is normalized (values above 1
// are percentages); otherwise one is derived from income, charges, amount
// and duration once those allow it. The second return is false while no
// ratio can be established, which keeps the debt-ratio rule quiet.
func EffectiveDebtRatio(p *models.ApplicantProfile) (float64, bool) {
	if p.DebtRatio != nil {
		return models.NormalizeDebtRatio(*p.DebtRatio), true
	}

	if p.MonthlyIncome == nil || p.RequestedAmount == nil || p.DurationMonths == nil {
		return 0, false
	}
	if *p.MonthlyIncome <= 0 || *p.DurationMonths <= 0 {
		return 0, false
	}

	var charges float64
	if p.MonthlyCharges != nil {
		charges = *p.MonthlyCharges
	}

	_, ratio := EstimateInstallment(*p.MonthlyIncome, charges, *p.RequestedAmount, *p.DurationMonths)
	return ratio, true
}

// Schedule is the credit period computed for one evaluation date: funds are
// released a fixed number of days after the application and repaid over the
// requested duration. EndKnown is false while the duration is missing or
// not positive, in which case the period is open-ended and the fixed-term
// conflict rule cannot fire.
type Schedule struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	EndKnown bool      `json:"end_known"`
}

// BuildSchedule computes the credit period for the profile as of the given
// evaluation date.
func BuildSchedule(p *models.ApplicantProfile, ref time.Time, startDelayDays int) Schedule {
	if startDelayDays <= 0 {
		startDelayDays = DefaultStartDelayDays
	}

	schedule := Schedule{Start: ref.AddDate(0, 0, startDelayDays)}
	if p.DurationMonths != nil && *p.DurationMonths > 0 {
		schedule.End = utils.AddMonths(schedule.Start, *p.DurationMonths)
		schedule.EndKnown = true
	}

	return schedule
}
