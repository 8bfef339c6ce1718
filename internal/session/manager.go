package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/metrics"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/utils"
)

// Config selects the default rule policy and aggregation mode for new
// sessions, and the release delay used to compute credit schedules.
type Config struct {
	Policy         string
	Mode           string
	StartDelayDays int
}

// Manager drives application sessions from Collecting through Decided.
type Manager struct {
	store          Store
	policy         decision.Policy
	mode           decision.Mode
	startDelayDays int
	metrics        *metrics.Metrics
}

// NewManager validates the configured defaults and creates a manager.
func NewManager(store Store, cfg Config, m *metrics.Metrics) (*Manager, error) {
	policy, err := decision.PolicyByName(cfg.Policy)
	if err != nil {
		return nil, err
	}

	mode, err := decision.ModeByName(cfg.Mode)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:          store,
		policy:         policy,
		mode:           mode,
		startDelayDays: cfg.StartDelayDays,
		metrics:        m,
	}, nil
}

// OpenOptions carries per-session overrides and the identification fields
// known before the form starts.
type OpenOptions struct {
	Policy         string
	Mode           string
	ClientNumber   string
	ClientName     string
	AccountOfficer string
	OfficerEmail   string
}

// Open starts a new application session at step 1.
func (m *Manager) Open(ctx context.Context, opts OpenOptions) (*Session, error) {
	policy := m.policy
	if opts.Policy != "" {
		p, err := decision.PolicyByName(opts.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	mode := m.mode
	if opts.Mode != "" {
		mo, err := decision.ModeByName(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = mo
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:            uuid.New().String(),
		Status:        StatusCollecting,
		Step:          1,
		Policy:        policy.Name,
		Mode:          string(mode),
		ReferenceDate: now,
		Profile: models.ApplicantProfile{
			ClientNumber:   opts.ClientNumber,
			ClientName:     opts.ClientName,
			AccountOfficer: opts.AccountOfficer,
			OfficerEmail:   opts.OfficerEmail,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	utils.GetLogger().Info("Application session opened",
		utils.String("sessionID", sess.ID),
		utils.String("policy", sess.Policy),
		utils.String("mode", sess.Mode))

	return sess, nil
}

// Get loads a session by id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// StepResult is the outcome of one step submission.
type StepResult struct {
	Session   *Session
	NewAlerts []models.Alert
}

// SubmitStep merges the step's fields into the profile, evaluates the
// step's rule group and accumulates the alerts. Steps must be reached in
// order, but an already-reached step may be resubmitted with corrected
// values; accumulated alerts are never retracted. In stop-early mode a red
// alert decides the session on the spot.
func (m *Manager) SubmitStep(ctx context.Context, id string, step int, fragment *models.ApplicantProfile) (*StepResult, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Status == StatusDecided {
		return nil, models.ErrSessionDecided
	}
	if step < 1 || step > decision.StepCount {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidStep, step)
	}
	if step > sess.Step {
		return nil, models.ErrStepOutOfOrder
	}

	sess.Profile.Merge(fragment)

	eng := m.engineFor(sess)
	started := time.Now()
	alerts, err := eng.EvaluateStep(step, &sess.Profile, sess.ReferenceDate)
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveEvaluation(time.Since(started))

	added := sess.Alerts.Add(alerts...)
	for _, alert := range added {
		m.metrics.AlertRaised(string(alert.Severity))
	}

	if step == sess.Step && sess.Step < decision.StepCount {
		sess.Step++
	}

	if eng.Mode() == decision.ModeStopEarly && sess.Alerts.HasRed() {
		d := eng.Decide(&sess.Alerts)
		sess.Decision = &d
		sess.Status = StatusDecided
		m.metrics.DecisionTaken(string(d.Outcome), sess.Policy)
	}

	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	utils.GetLogger().Info("Form step evaluated",
		utils.String("sessionID", sess.ID),
		utils.Int("step", step),
		utils.Int("newAlerts", len(added)),
		utils.Int("totalAlerts", sess.Alerts.Len()),
		utils.Bool("decided", sess.Status == StatusDecided))

	return &StepResult{Session: sess, NewAlerts: added}, nil
}

// Decide finalizes the application by aggregating everything accumulated
// so far. Calling it on a decided session returns the stored result; the
// second return reports that case so callers do not re-log history.
func (m *Manager) Decide(ctx context.Context, id string) (*Session, bool, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if sess.Status == StatusDecided {
		return sess, true, nil
	}

	eng := m.engineFor(sess)
	d := eng.Decide(&sess.Alerts)
	sess.Decision = &d
	sess.Status = StatusDecided
	sess.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, false, fmt.Errorf("failed to save session: %w", err)
	}

	m.metrics.DecisionTaken(string(d.Outcome), sess.Policy)

	utils.GetLogger().Info("Application decided",
		utils.String("sessionID", sess.ID),
		utils.String("outcome", string(d.Outcome)),
		utils.Strings("reasons", d.Reasons))

	return sess, false, nil
}

// Reset starts a new application under the same session id: profile,
// alerts and decision are cleared and the evaluation date moves to now.
func (m *Manager) Reset(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess.Profile = models.ApplicantProfile{}
	sess.Alerts = models.AlertList{}
	sess.Decision = nil
	sess.Status = StatusCollecting
	sess.Step = 1
	sess.ReferenceDate = now
	sess.UpdatedAt = now

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	utils.GetLogger().Info("Application session reset",
		utils.String("sessionID", sess.ID))

	return sess, nil
}

// engineFor rebuilds the engine for a stored session. Unknown names can
// only appear when a session outlives a policy rename; those fall back to
// the manager defaults.
func (m *Manager) engineFor(sess *Session) *decision.Engine {
	policy := m.policy
	if p, err := decision.PolicyByName(sess.Policy); err == nil {
		policy = p
	}

	mode := m.mode
	if mo, err := decision.ModeByName(sess.Mode); err == nil {
		mode = mo
	}

	return decision.NewEngine(policy, mode, m.startDelayDays)
}
