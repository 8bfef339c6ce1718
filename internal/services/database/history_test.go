// Integration tests for the decision history repository. They run only
// when DATABASE_URL points at a Postgres instance with the schema from
// scripts/init_db.go applied; otherwise the whole package is skipped.
package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/database"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("Skipping database integration tests: DATABASE_URL not set")
		os.Exit(0)
	}

	var err error
	testDB, err = database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func cleanupSession(t *testing.T, sessionID string) {
	t.Helper()
	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(),
			`DELETE FROM decision_history WHERE session_id = $1`, sessionID)
		assert.NoError(t, err)
	})
}

func TestHealthCheck(t *testing.T) {
	assert.NoError(t, testDB.HealthCheck(context.Background()))
}

func TestHistoryRepository_AppendAndList(t *testing.T) {
	repo := database.NewHistoryRepository(testDB)
	ctx := context.Background()

	sessionID := uuid.New().String()
	cleanupSession(t, sessionID)

	base := time.Now().UTC().Truncate(time.Microsecond)
	first := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Profile: models.ApplicantProfile{
			ClientNumber:  "C-00042",
			MonthlyIncome: models.Float(700000),
			ContractType:  models.Contract(models.ContractPermanent),
		},
		Outcome:   models.OutcomeRefused,
		Reasons:   []string{"debt ratio too high", "customer too recent"},
		Policy:    "v2",
		Mode:      "collect-all",
		CreatedAt: base,
	}
	second := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Profile:   models.ApplicantProfile{ClientNumber: "C-00043"},
		Outcome:   models.OutcomeAccepted,
		Policy:    "v2",
		Mode:      "collect-all",
		CreatedAt: base.Add(time.Second),
	}

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	records, err := repo.List(ctx, database.DefaultListLimit)
	require.NoError(t, err)

	var mine []models.DecisionRecord
	for _, record := range records {
		if record.SessionID == sessionID {
			mine = append(mine, record)
		}
	}
	require.Len(t, mine, 2)

	assert.Equal(t, second.ID, mine[0].ID, "Listing should be newest first")
	assert.Equal(t, first.ID, mine[1].ID)

	loaded := mine[1]
	assert.Equal(t, models.OutcomeRefused, loaded.Outcome)
	assert.Equal(t, []string{"debt ratio too high", "customer too recent"}, loaded.Reasons)
	assert.Equal(t, "C-00042", loaded.Profile.ClientNumber)
	require.NotNil(t, loaded.Profile.MonthlyIncome, "The profile snapshot should round-trip through JSONB")
	assert.Equal(t, float64(700000), *loaded.Profile.MonthlyIncome)
	assert.WithinDuration(t, first.CreatedAt, loaded.CreatedAt, time.Millisecond)
}

func TestHistoryRepository_EmptyReasons(t *testing.T) {
	repo := database.NewHistoryRepository(testDB)
	ctx := context.Background()

	sessionID := uuid.New().String()
	cleanupSession(t, sessionID)

	record := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Profile:   models.ApplicantProfile{ClientNumber: "C-00044"},
		Outcome:   models.OutcomeAccepted,
		Policy:    "v2",
		Mode:      "collect-all",
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Append(ctx, record), "Nil reasons should insert as an empty array")
}

func TestHistoryRepository_Count(t *testing.T) {
	repo := database.NewHistoryRepository(testDB)
	ctx := context.Background()

	before, err := repo.Count(ctx)
	require.NoError(t, err)

	sessionID := uuid.New().String()
	cleanupSession(t, sessionID)

	record := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Outcome:   models.OutcomeAccepted,
		Policy:    "v2",
		Mode:      "collect-all",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Append(ctx, record))

	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
