package decision_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
)

func TestPolicyByName(t *testing.T) {
	policy, err := decision.PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, decision.PolicyNameV2, policy.Name, "Empty name should resolve to the current policy")

	policy, err = decision.PolicyByName("v1")
	require.NoError(t, err)
	assert.Equal(t, decision.PolicyNameV1, policy.Name)

	policy, err = decision.PolicyByName("v2")
	require.NoError(t, err)
	assert.Equal(t, decision.PolicyNameV2, policy.Name)

	_, err = decision.PolicyByName("v3")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "v3")
}

func TestModeByName(t *testing.T) {
	mode, err := decision.ModeByName("")
	require.NoError(t, err)
	assert.Equal(t, decision.ModeCollectAll, mode, "Empty name should resolve to collect-all")

	mode, err = decision.ModeByName("collect-all")
	require.NoError(t, err)
	assert.Equal(t, decision.ModeCollectAll, mode)

	mode, err = decision.ModeByName("stop-early")
	require.NoError(t, err)
	assert.Equal(t, decision.ModeStopEarly, mode)

	_, err = decision.ModeByName("lazy")
	assert.Error(t, err)
}

func TestPolicy_Group(t *testing.T) {
	policy := decision.PolicyV2()

	for step := 1; step <= decision.StepCount; step++ {
		group, err := policy.Group(step)
		require.NoError(t, err)
		assert.NotNil(t, group)
	}

	for _, step := range []int{0, -1, 4} {
		_, err := policy.Group(step)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInvalidStep), "Step %d should be invalid", step)
	}
}

func TestAggregate_RedWins(t *testing.T) {
	var alerts models.AlertList
	alerts.Add(
		models.OrangeAlert("needs review"),
		models.RedAlert("refuse now"),
		models.OrangeAlert("also review"),
		models.RedAlert("refuse again"),
	)

	verdict := decision.Aggregate(&alerts)

	assert.Equal(t, models.OutcomeRefused, verdict.Outcome)
	assert.Equal(t, []string{"refuse now", "refuse again"}, verdict.Reasons,
		"Refusal reasons should carry only the red messages, in first-observed order")
	assert.False(t, verdict.DecidedAt.IsZero())
}

func TestAggregate_OrangesDowngrade(t *testing.T) {
	var alerts models.AlertList
	alerts.Add(
		models.OrangeAlert("cap debt ratio"),
		models.OrangeAlert("verify employer"),
	)

	verdict := decision.Aggregate(&alerts)

	assert.Equal(t, models.OutcomeConditionalRisk, verdict.Outcome)
	assert.Equal(t, []string{"cap debt ratio", "verify employer"}, verdict.Reasons)
}

func TestAggregate_CleanAccepts(t *testing.T) {
	verdict := decision.Aggregate(&models.AlertList{})

	assert.Equal(t, models.OutcomeAccepted, verdict.Outcome)
	assert.Empty(t, verdict.Reasons, "An acceptance carries no reasons")
}

// refusedEverywhere trips a red alert in every rule group: ratio 40%,
// account 1 month old, and a red-alert employer.
func refusedEverywhere() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		DebtRatio:            models.Float(0.40),
		AccountAgeMonths:     models.Int(1),
		EmployerTenureMonths: models.Int(24),
		EmployerStatus:       models.Employer(models.EmployerKnownRedAlert),
	}
}

func TestEngine_EvaluateAll_CollectAll(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV2(), decision.ModeCollectAll, 0)

	alerts := engine.EvaluateAll(refusedEverywhere(), time.Now().UTC())

	require.Equal(t, 3, alerts.Len(), "Collect-all should visit every group")
	assert.Equal(t,
		[]string{decision.MsgDebtRatioTooHigh, decision.MsgCustomerTooRecent, decision.MsgEmployerRedAlert},
		alerts.Messages(models.SeverityRed))

	verdict := engine.Decide(alerts)
	assert.Equal(t, models.OutcomeRefused, verdict.Outcome)
	assert.Len(t, verdict.Reasons, 3)
}

func TestEngine_EvaluateAll_StopEarly(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV2(), decision.ModeStopEarly, 0)

	alerts := engine.EvaluateAll(refusedEverywhere(), time.Now().UTC())

	require.Equal(t, 1, alerts.Len(), "Stop-early should stop after the first red group")
	assert.Equal(t, []string{decision.MsgDebtRatioTooHigh}, alerts.Messages(models.SeverityRed))

	verdict := engine.Decide(alerts)
	assert.Equal(t, models.OutcomeRefused, verdict.Outcome)
	assert.Equal(t, []string{decision.MsgDebtRatioTooHigh}, verdict.Reasons)
}

func TestEngine_EvaluateAll_StopEarlyKeepsOranges(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV2(), decision.ModeStopEarly, 0)

	// Orange at step 1 is not a red, so the walk continues through the
	// account group and stops only when the employer refuses at step 3.
	profile := &models.ApplicantProfile{
		DebtRatio:       models.Float(0.30),
		PastDelinquency: models.Bool(true),
		EmployerChanged: models.Bool(true),
		EmployerStatus:  models.Employer(models.EmployerKnownRedAlert),
	}

	alerts := engine.EvaluateAll(profile, time.Now().UTC())

	assert.Equal(t, []string{decision.MsgPastDelinquencyCap}, alerts.Messages(models.SeverityOrange))
	assert.Equal(t, []string{decision.MsgEmployerRedAlert}, alerts.Messages(models.SeverityRed))
}

func TestEngine_EvaluateAll_AcceptsCleanProfile(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV2(), decision.ModeCollectAll, 0)

	profile := &models.ApplicantProfile{
		MonthlyIncome:        models.Float(700000),
		MonthlyCharges:       models.Float(100000),
		RequestedAmount:      models.Float(300000),
		DurationMonths:       models.Int(24),
		ContractType:         models.Contract(models.ContractPermanent),
		AccountAgeMonths:     models.Int(36),
		CurrentDelinquency:   models.Bool(false),
		PastDelinquency:      models.Bool(false),
		EmployerTenureMonths: models.Int(48),
		EmployerStatus:       models.Employer(models.EmployerKnownNoAlert),
	}

	alerts := engine.EvaluateAll(profile, time.Now().UTC())
	require.Zero(t, alerts.Len())

	verdict := engine.Decide(alerts)
	assert.Equal(t, models.OutcomeAccepted, verdict.Outcome)
	assert.Empty(t, verdict.Reasons)
}

func TestEngine_EvaluateStep(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV2(), decision.ModeCollectAll, 0)

	alerts, err := engine.EvaluateStep(1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)}, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, decision.MsgDebtRatioTooHigh, alerts[0].Message)

	_, err = engine.EvaluateStep(4, &models.ApplicantProfile{}, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidStep))
}

func TestEngine_Getters(t *testing.T) {
	engine := decision.NewEngine(decision.PolicyV1(), decision.ModeStopEarly, 20)

	assert.Equal(t, decision.PolicyNameV1, engine.PolicyName())
	assert.Equal(t, decision.ModeStopEarly, engine.Mode())

	ref := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	schedule := engine.Schedule(&models.ApplicantProfile{}, ref)
	assert.True(t, schedule.Start.Equal(ref.AddDate(0, 0, 20)))
}
