package session_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/session"
	"credit-decision-engine/internal/utils"
)

func TestMain(m *testing.M) {
	// Keep manager logging out of the test output.
	_ = utils.InitLogger("error")
	os.Exit(m.Run())
}

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()

	manager, err := session.NewManager(session.NewMemoryStore(), session.Config{}, nil)
	require.NoError(t, err)
	return manager
}

// Step fragments for a profile no rule objects to.
func cleanFinancials() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		MonthlyIncome:   models.Float(700000),
		MonthlyCharges:  models.Float(100000),
		RequestedAmount: models.Float(300000),
		DurationMonths:  models.Int(24),
		ContractType:    models.Contract(models.ContractPermanent),
	}
}

func cleanAccount() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		AccountAgeMonths:   models.Int(24),
		CurrentDelinquency: models.Bool(false),
		PastDelinquency:    models.Bool(false),
	}
}

func cleanEmployment() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		EmployerTenureMonths: models.Int(36),
		EmployerStatus:       models.Employer(models.EmployerKnownNoAlert),
	}
}

func TestManager_Open(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{
		ClientNumber:   "C-00042",
		ClientName:     "Jean Dupont",
		AccountOfficer: "M. Leroy",
		OfficerEmail:   "leroy@bank.nc",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, session.StatusCollecting, sess.Status)
	assert.Equal(t, 1, sess.Step)
	assert.Equal(t, decision.PolicyNameV2, sess.Policy, "Default policy should be the current one")
	assert.Equal(t, string(decision.ModeCollectAll), sess.Mode)
	assert.Equal(t, "C-00042", sess.Profile.ClientNumber)
	assert.Equal(t, "leroy@bank.nc", sess.Profile.OfficerEmail)
	assert.False(t, sess.ReferenceDate.IsZero())
	assert.Nil(t, sess.Decision)

	loaded, err := manager.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
}

func TestManager_Open_Overrides(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{Policy: "v1", Mode: "stop-early"})
	require.NoError(t, err)
	assert.Equal(t, decision.PolicyNameV1, sess.Policy)
	assert.Equal(t, string(decision.ModeStopEarly), sess.Mode)

	_, err = manager.Open(ctx, session.OpenOptions{Policy: "v9"})
	assert.Error(t, err, "Unknown policy names should be rejected")

	_, err = manager.Open(ctx, session.OpenOptions{Mode: "whenever"})
	assert.Error(t, err, "Unknown mode names should be rejected")
}

func TestManager_Get_Unknown(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.Get(context.Background(), "no-such-session")
	assert.True(t, errors.Is(err, models.ErrSessionNotFound))
}

func TestManager_SubmitStep_FullRun(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{ClientNumber: "C-001"})
	require.NoError(t, err)

	result, err := manager.SubmitStep(ctx, sess.ID, 1, cleanFinancials())
	require.NoError(t, err)
	assert.Empty(t, result.NewAlerts)
	assert.Equal(t, 2, result.Session.Step, "A clean step should advance the cursor")

	result, err = manager.SubmitStep(ctx, sess.ID, 2, cleanAccount())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Session.Step)

	result, err = manager.SubmitStep(ctx, sess.ID, 3, cleanEmployment())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Session.Step, "The cursor stays on the last step")
	assert.Equal(t, session.StatusCollecting, result.Session.Status)

	decided, already, err := manager.Decide(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, session.StatusDecided, decided.Status)
	require.NotNil(t, decided.Decision)
	assert.Equal(t, models.OutcomeAccepted, decided.Decision.Outcome)
	assert.Empty(t, decided.Decision.Reasons)
}

func TestManager_SubmitStep_OutOfOrder(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	_, err = manager.SubmitStep(ctx, sess.ID, 2, cleanAccount())
	assert.True(t, errors.Is(err, models.ErrStepOutOfOrder))

	_, err = manager.SubmitStep(ctx, sess.ID, 3, cleanEmployment())
	assert.True(t, errors.Is(err, models.ErrStepOutOfOrder))
}

func TestManager_SubmitStep_InvalidStep(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	for _, step := range []int{0, -1, 4} {
		_, err = manager.SubmitStep(ctx, sess.ID, step, &models.ApplicantProfile{})
		assert.True(t, errors.Is(err, models.ErrInvalidStep), "Step %d should be invalid", step)
	}
}

func TestManager_SubmitStep_ResubmissionKeepsAlerts(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	result, err := manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)})
	require.NoError(t, err)
	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, decision.MsgDebtRatioTooHigh, result.NewAlerts[0].Message)

	// Correcting the ratio does not retract the alert already raised.
	result, err = manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.20)})
	require.NoError(t, err)
	assert.Empty(t, result.NewAlerts)
	assert.Equal(t, 1, result.Session.Alerts.Len(), "Accumulated alerts are never retracted")
	assert.Equal(t, 2, result.Session.Step, "Resubmitting an earlier step must not move the cursor")
}

func TestManager_SubmitStep_DuplicateAlertNotRepeated(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	result, err := manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)})
	require.NoError(t, err)
	require.Len(t, result.NewAlerts, 1)

	result, err = manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.45)})
	require.NoError(t, err)
	assert.Empty(t, result.NewAlerts, "The same reason must not be raised twice")
	assert.Equal(t, 1, result.Session.Alerts.Len())
}

func TestManager_Decide_Refusal(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	_, err = manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)})
	require.NoError(t, err)
	_, err = manager.SubmitStep(ctx, sess.ID, 2, &models.ApplicantProfile{AccountAgeMonths: models.Int(1)})
	require.NoError(t, err)

	decided, already, err := manager.Decide(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, already)
	require.NotNil(t, decided.Decision)
	assert.Equal(t, models.OutcomeRefused, decided.Decision.Outcome)
	assert.Equal(t,
		[]string{decision.MsgDebtRatioTooHigh, decision.MsgCustomerTooRecent},
		decided.Decision.Reasons)
}

func TestManager_Decide_Idempotent(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	first, already, err := manager.Decide(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, models.OutcomeAccepted, first.Decision.Outcome)

	second, already, err := manager.Decide(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, already, "A second decide must report the stored result")
	assert.Equal(t, first.Decision.Outcome, second.Decision.Outcome)
	assert.True(t, first.Decision.DecidedAt.Equal(second.Decision.DecidedAt))
}

func TestManager_SubmitStep_AfterDecided(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{})
	require.NoError(t, err)

	_, _, err = manager.Decide(ctx, sess.ID)
	require.NoError(t, err)

	_, err = manager.SubmitStep(ctx, sess.ID, 1, cleanFinancials())
	assert.True(t, errors.Is(err, models.ErrSessionDecided))
}

func TestManager_StopEarly_DecidesMidForm(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{Mode: "stop-early"})
	require.NoError(t, err)

	result, err := manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)})
	require.NoError(t, err)

	assert.Equal(t, session.StatusDecided, result.Session.Status, "A red alert should decide the session on the spot")
	require.NotNil(t, result.Session.Decision)
	assert.Equal(t, models.OutcomeRefused, result.Session.Decision.Outcome)
	assert.Equal(t, []string{decision.MsgDebtRatioTooHigh}, result.Session.Decision.Reasons)

	_, err = manager.SubmitStep(ctx, sess.ID, 2, cleanAccount())
	assert.True(t, errors.Is(err, models.ErrSessionDecided))
}

func TestManager_StopEarly_OrangeContinues(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{Mode: "stop-early"})
	require.NoError(t, err)

	result, err := manager.SubmitStep(ctx, sess.ID, 1, cleanFinancials())
	require.NoError(t, err)
	assert.Equal(t, session.StatusCollecting, result.Session.Status)

	fragment := &models.ApplicantProfile{
		PastDelinquency: models.Bool(true),
		EmployerChanged: models.Bool(true),
		DebtRatio:       models.Float(0.30),
	}
	result, err = manager.SubmitStep(ctx, sess.ID, 2, fragment)
	require.NoError(t, err)

	assert.Equal(t, session.StatusCollecting, result.Session.Status, "Orange alerts must not decide the session")
	require.Len(t, result.NewAlerts, 1)
	assert.Equal(t, models.SeverityOrange, result.NewAlerts[0].Severity)
}

func TestManager_Reset(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	sess, err := manager.Open(ctx, session.OpenOptions{ClientNumber: "C-001"})
	require.NoError(t, err)

	_, err = manager.SubmitStep(ctx, sess.ID, 1, &models.ApplicantProfile{DebtRatio: models.Float(0.40)})
	require.NoError(t, err)
	_, _, err = manager.Decide(ctx, sess.ID)
	require.NoError(t, err)

	reset, err := manager.Reset(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, reset.ID, "Reset keeps the session id")
	assert.Equal(t, session.StatusCollecting, reset.Status)
	assert.Equal(t, 1, reset.Step)
	assert.Zero(t, reset.Alerts.Len())
	assert.Nil(t, reset.Decision)
	assert.Empty(t, reset.Profile.ClientNumber, "Reset starts over with an empty profile")

	result, err := manager.SubmitStep(ctx, sess.ID, 1, cleanFinancials())
	require.NoError(t, err)
	assert.Empty(t, result.NewAlerts, "Alerts from the previous application must not leak through")
}
