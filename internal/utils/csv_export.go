package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"credit-decision-engine/internal/models"
)

// historyColumns is the fixed export schema: the profile fields in the
// order the form collects them, then the decision columns.
var historyColumns = []string{
	"client_number",
	"client_name",
	"account_officer",
	"monthly_income",
	"monthly_charges",
	"requested_amount",
	"duration_months",
	"debt_ratio",
	"contract_type",
	"contract_end_date",
	"account_age_months",
	"current_delinquency",
	"past_delinquency",
	"employer_changed",
	"situation_improved",
	"past_delinquency_count",
	"employer_tenure_months",
	"employer_status",
	"employer_known",
	"employer_suspicion",
	"decision",
	"reasons",
	"policy",
	"mode",
	"decided_at",
}

// HistoryColumns returns the column order of history exports.
func HistoryColumns() []string {
	return append([]string(nil), historyColumns...)
}

// WriteHistoryCSV writes the decision log as CSV, one row per decided
// application. Fields that were never supplied export as empty cells.
func WriteHistoryCSV(w io.Writer, records []models.DecisionRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(historyColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range records {
		if err := writer.Write(historyRow(&records[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

func historyRow(record *models.DecisionRecord) []string {
	p := &record.Profile

	return []string{
		p.ClientNumber,
		p.ClientName,
		p.AccountOfficer,
		csvFloat(p.MonthlyIncome),
		csvFloat(p.MonthlyCharges),
		csvFloat(p.RequestedAmount),
		csvInt(p.DurationMonths),
		csvFloat(p.DebtRatio),
		csvContract(p.ContractType),
		csvDate(p.ContractEndDate),
		csvInt(p.AccountAgeMonths),
		csvBool(p.CurrentDelinquency),
		csvBool(p.PastDelinquency),
		csvBool(p.EmployerChanged),
		csvBool(p.SituationImproved),
		csvInt(p.PastDelinquencyCount),
		csvInt(p.EmployerTenureMonths),
		csvEmployer(p.EmployerStatus),
		csvBool(p.EmployerKnown),
		csvBool(p.EmployerSuspicion),
		string(record.Outcome),
		strings.Join(record.Reasons, "; "),
		record.Policy,
		record.Mode,
		record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func csvBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func csvDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return FormatDate(*v)
}

func csvContract(v *models.ContractType) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func csvEmployer(v *models.EmployerStatus) string {
	if v == nil {
		return ""
	}
	return string(*v)
}
