package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"credit-decision-engine/internal/models"
)

// CSV import errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns a batch CSV must carry. Everything
// else on the profile is optional and stays nil when the column is absent
// or the cell is empty.
var RequiredColumns = []string{
	"client_number",
	"monthly_income",
	"requested_amount",
	"duration_months",
}

// ColumnAliases maps alternative column names to standard names. Batch
// files arrive from the French intake side as often as not, so the French
// spellings are first-class.
var ColumnAliases = map[string]string{
	// client_number aliases
	"client":        "client_number",
	"client_id":     "client_number",
	"clientid":      "client_number",
	"client id":     "client_number",
	"numero_client": "client_number",
	"numero client": "client_number",

	// client_name aliases
	"name":        "client_name",
	"nom":         "client_name",
	"nom_client":  "client_name",
	"client name": "client_name",

	// account_officer aliases
	"officer":         "account_officer",
	"gestionnaire":    "account_officer",
	"account officer": "account_officer",

	// officer_email aliases
	"email":              "officer_email",
	"email_gestionnaire": "officer_email",
	"officer email":      "officer_email",

	// monthly_income aliases
	"income":         "monthly_income",
	"salaire":        "monthly_income",
	"revenu":         "monthly_income",
	"revenus":        "monthly_income",
	"revenu_mensuel": "monthly_income",
	"revenu mensuel": "monthly_income",
	"monthly income": "monthly_income",

	// monthly_charges aliases
	"charges":              "monthly_charges",
	"charges_mensuelles":   "monthly_charges",
	"charges mensuelles":   "monthly_charges",
	"monthly charges":      "monthly_charges",
	"existing_commitments": "monthly_charges",

	// requested_amount aliases
	"amount":           "requested_amount",
	"montant":          "requested_amount",
	"montant_demande":  "requested_amount",
	"montant demande":  "requested_amount",
	"credit_amount":    "requested_amount",
	"requested amount": "requested_amount",

	// duration_months aliases
	"duration":        "duration_months",
	"duree":           "duration_months",
	"duree_mois":      "duration_months",
	"duree mois":      "duration_months",
	"months":          "duration_months",
	"duration months": "duration_months",

	// debt_ratio aliases
	"ratio":            "debt_ratio",
	"taux":             "debt_ratio",
	"taux_endettement": "debt_ratio",
	"taux endettement": "debt_ratio",
	"debt ratio":       "debt_ratio",

	// contract_type aliases
	"contract":      "contract_type",
	"contrat":       "contract_type",
	"type_contrat":  "contract_type",
	"type contrat":  "contract_type",
	"contract type": "contract_type",

	// contract_end_date aliases
	"contract_end":      "contract_end_date",
	"fin_contrat":       "contract_end_date",
	"fin contrat":       "contract_end_date",
	"date_fin_contrat":  "contract_end_date",
	"contract end date": "contract_end_date",

	// account_age_months aliases
	"account_age":        "account_age_months",
	"account age":        "account_age_months",
	"anciennete_compte":  "account_age_months",
	"anciennete compte":  "account_age_months",
	"account age months": "account_age_months",

	// account history aliases
	"impaye_en_cours":        "current_delinquency",
	"impaye en cours":        "current_delinquency",
	"current delinquency":    "current_delinquency",
	"impaye_passe":           "past_delinquency",
	"impaye passe":           "past_delinquency",
	"past delinquency":       "past_delinquency",
	"changement_employeur":   "employer_changed",
	"employer changed":       "employer_changed",
	"situation_amelioree":    "situation_improved",
	"situation improved":     "situation_improved",
	"nb_impayes":             "past_delinquency_count",
	"delinquency_count":      "past_delinquency_count",
	"past delinquency count": "past_delinquency_count",

	// employment aliases
	"tenure":                 "employer_tenure_months",
	"anciennete_employeur":   "employer_tenure_months",
	"anciennete employeur":   "employer_tenure_months",
	"employer tenure":        "employer_tenure_months",
	"employer tenure months": "employer_tenure_months",
	"statut_employeur":       "employer_status",
	"statut employeur":       "employer_status",
	"employer status":        "employer_status",
	"employeur_connu":        "employer_known",
	"employer known":         "employer_known",
	"suspicion":              "employer_suspicion",
	"employeur_suspicion":    "employer_suspicion",
	"employer suspicion":     "employer_suspicion",
}

// ApplicationsCSVParser parses batch CSV files of credit applications.
type ApplicationsCSVParser struct {
	columnMapping map[string]int
}

// NewApplicationsCSVParser creates a new parser instance.
func NewApplicationsCSVParser() *ApplicationsCSVParser {
	return &ApplicationsCSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseApplications parses CSV content into applicant profiles. Rows that
// cannot be parsed are reported as line-numbered errors and skipped; the
// valid rows are still returned.
func (p *ApplicationsCSVParser) ParseApplications(content string) ([]models.ApplicantProfile, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var profiles []models.ApplicantProfile
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		profile, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		profiles = append(profiles, *profile)
	}

	if len(profiles) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return profiles, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their
// indices.
func (p *ApplicationsCSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into an applicant profile.
func (p *ApplicationsCSVParser) parseRow(record []string) (*models.ApplicantProfile, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	profile := &models.ApplicantProfile{
		ClientNumber:   getValue("client_number"),
		ClientName:     getValue("client_name"),
		AccountOfficer: getValue("account_officer"),
		OfficerEmail:   getValue("officer_email"),
	}

	if profile.ClientNumber == "" {
		return nil, errors.New("missing client_number")
	}

	income, err := requireAmount(getValue, "monthly_income")
	if err != nil {
		return nil, err
	}
	profile.MonthlyIncome = models.Float(income)

	amount, err := requireAmount(getValue, "requested_amount")
	if err != nil {
		return nil, err
	}
	profile.RequestedAmount = models.Float(amount)

	duration, err := requireInt(getValue, "duration_months")
	if err != nil {
		return nil, err
	}
	profile.DurationMonths = models.Int(duration)

	if v := getValue("monthly_charges"); v != "" {
		charges, err := ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("invalid monthly_charges: %w", err)
		}
		profile.MonthlyCharges = models.Float(float64(charges))
	}

	if v := getValue("debt_ratio"); v != "" {
		ratio, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid debt_ratio: %w", err)
		}
		profile.DebtRatio = models.Float(ratio)
	}

	if v := getValue("contract_type"); v != "" {
		contractType := models.NormalizeContractType(v)
		if !contractType.IsValid() {
			return nil, fmt.Errorf("invalid contract_type %q", v)
		}
		profile.ContractType = &contractType
	}

	if v := getValue("contract_end_date"); v != "" {
		date, ok := ParseDate(v)
		if !ok {
			return nil, fmt.Errorf("invalid contract_end_date %q", v)
		}
		profile.ContractEndDate = models.Date(date)
	}

	if v := getValue("account_age_months"); v != "" {
		age, err := parseCSVInt(v)
		if err != nil {
			return nil, fmt.Errorf("invalid account_age_months: %w", err)
		}
		profile.AccountAgeMonths = models.Int(age)
	}

	boolFields := []struct {
		column string
		target **bool
	}{
		{"current_delinquency", &profile.CurrentDelinquency},
		{"past_delinquency", &profile.PastDelinquency},
		{"employer_changed", &profile.EmployerChanged},
		{"situation_improved", &profile.SituationImproved},
		{"employer_known", &profile.EmployerKnown},
		{"employer_suspicion", &profile.EmployerSuspicion},
	}
	for _, field := range boolFields {
		if v := getValue(field.column); v != "" {
			parsed, err := parseCSVBool(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", field.column, err)
			}
			*field.target = models.Bool(parsed)
		}
	}

	if v := getValue("past_delinquency_count"); v != "" {
		count, err := parseCSVInt(v)
		if err != nil {
			return nil, fmt.Errorf("invalid past_delinquency_count: %w", err)
		}
		profile.PastDelinquencyCount = models.Int(count)
	}

	if v := getValue("employer_tenure_months"); v != "" {
		tenure, err := parseCSVInt(v)
		if err != nil {
			return nil, fmt.Errorf("invalid employer_tenure_months: %w", err)
		}
		profile.EmployerTenureMonths = models.Int(tenure)
	}

	if v := getValue("employer_status"); v != "" {
		status := models.NormalizeEmployerStatus(v)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid employer_status %q", v)
		}
		profile.EmployerStatus = &status
	}

	return profile, nil
}

func requireAmount(getValue func(string) string, column string) (float64, error) {
	v := getValue(column)
	if v == "" {
		return 0, fmt.Errorf("missing %s", column)
	}
	amount, err := ParseAmount(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return float64(amount), nil
}

func requireInt(getValue func(string) string, column string) (int, error) {
	v := getValue(column)
	if v == "" {
		return 0, fmt.Errorf("missing %s", column)
	}
	parsed, err := parseCSVInt(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return parsed, nil
}

// parseCSVInt parses a string to int, handling float forms ("12.0").
func parseCSVInt(s string) (int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	if s == "" {
		return 0, errors.New("empty value")
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// parseCSVBool parses the boolean spellings the intake side produces,
// French included.
func parseCSVBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "oui", "o", "1":
		return true, nil
	case "false", "no", "n", "non", "0":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized boolean %q", s)
	}
}

// ValidateCSVStructure performs a quick validation of CSV structure
// without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
