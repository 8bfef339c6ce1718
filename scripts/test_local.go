//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/database"
	"credit-decision-engine/internal/utils"
)

func main() {
	fmt.Println("=== Credit Decision Engine - Local Test ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	_ = utils.InitLogger("error")
	defer utils.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect to database
	db, err := database.NewFromURL(os.Getenv("DATABASE_URL"))
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	// Evaluate a sample application
	fmt.Println()
	fmt.Println("🧮 Evaluating sample application...")

	profile := models.ApplicantProfile{
		ClientNumber:         "C-00042",
		ClientName:           "Local Test Client",
		MonthlyIncome:        models.Float(700000),
		MonthlyCharges:       models.Float(250000),
		RequestedAmount:      models.Float(300000),
		DurationMonths:       models.Int(12),
		AccountAgeMonths:     models.Int(24),
		EmployerTenureMonths: models.Int(36),
		EmployerStatus:       models.Employer(models.EmployerKnownNoAlert),
	}

	policy, err := decision.PolicyByName("")
	if err != nil {
		fmt.Printf("❌ Failed to resolve policy: %v\n", err)
		os.Exit(1)
	}

	eng := decision.NewEngine(policy, decision.ModeCollectAll, decision.DefaultStartDelayDays)
	alerts := eng.EvaluateAll(&profile, time.Now().UTC())
	d := eng.Decide(alerts)

	fmt.Printf("   Outcome: %s\n", d.Outcome.Label())
	if len(d.Reasons) > 0 {
		fmt.Printf("   Reasons: %s\n", strings.Join(d.Reasons, "; "))
	}

	// Append the decision to the history log
	fmt.Println()
	fmt.Println("📥 Appending decision to history...")

	repo := database.NewHistoryRepository(db)
	record := &models.DecisionRecord{
		ID:        uuid.New().String(),
		SessionID: uuid.New().String(),
		Profile:   profile,
		Outcome:   d.Outcome,
		Reasons:   d.Reasons,
		Policy:    eng.PolicyName(),
		Mode:      string(eng.Mode()),
		CreatedAt: d.DecidedAt,
	}

	if err := repo.Append(ctx, record); err != nil {
		fmt.Printf("❌ Failed to append decision record: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Decision appended!")

	// Read the log back
	fmt.Println()
	fmt.Println("📖 Reading decision history...")

	records, err := repo.List(ctx, 5)
	if err != nil {
		fmt.Printf("❌ Failed to list decision records: %v\n", err)
		os.Exit(1)
	}

	for _, rec := range records {
		fmt.Printf("   %s  %-16s  %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Outcome, rec.SessionID)
	}

	// Summary
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("              TEST COMPLETE")
	fmt.Println("═══════════════════════════════════════════")

	total, err := repo.Count(ctx)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not count decision records: %v\n", err)
	}

	fmt.Printf("📊 Decisions in history: %d\n", total)
	fmt.Println("═══════════════════════════════════════════")
}
