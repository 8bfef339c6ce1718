// Package models defines the data structures for the credit decision engine.
package models

import (
	"time"
)

// ContractType identifies the applicant's employment contract.
type ContractType string

const (
	ContractPermanent ContractType = "permanent"
	ContractFixedTerm ContractType = "fixed_term"
)

// ValidContractTypes returns all valid contract type values.
func ValidContractTypes() []ContractType {
	return []ContractType{
		ContractPermanent,
		ContractFixedTerm,
	}
}

// IsValid checks if the contract type is valid.
func (c ContractType) IsValid() bool {
	for _, valid := range ValidContractTypes() {
		if c == valid {
			return true
		}
	}
	return false
}

// EmployerStatus is the verification state of the applicant's employer.
type EmployerStatus string

const (
	EmployerKnownNoAlert   EmployerStatus = "known_no_alert"
	EmployerKnownRedAlert  EmployerStatus = "known_red_alert"
	EmployerUnknownPending EmployerStatus = "unknown_pending"
)

// ValidEmployerStatuses returns all valid employer status values.
func ValidEmployerStatuses() []EmployerStatus {
	return []EmployerStatus{
		EmployerKnownNoAlert,
		EmployerKnownRedAlert,
		EmployerUnknownPending,
	}
}

// IsValid checks if the employer status is valid.
func (s EmployerStatus) IsValid() bool {
	for _, valid := range ValidEmployerStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ApplicantProfile is the record a form step fills in piece by piece. Every
// decisioning field is a pointer: nil means "not supplied yet", and the
// rules substitute defaults that cannot trigger an alert on their own.
type ApplicantProfile struct {
	// Identification, never used by the rules.
	ClientNumber   string `json:"client_number,omitempty"`
	ClientName     string `json:"client_name,omitempty"`
	AccountOfficer string `json:"account_officer,omitempty"`
	OfficerEmail   string `json:"officer_email,omitempty"`

	// Financial.
	MonthlyIncome   *float64 `json:"monthly_income,omitempty"`
	MonthlyCharges  *float64 `json:"monthly_charges,omitempty"`
	RequestedAmount *float64 `json:"requested_amount,omitempty"`
	DurationMonths  *int     `json:"duration_months,omitempty"`
	DebtRatio       *float64 `json:"debt_ratio,omitempty"`

	// Contract.
	ContractType    *ContractType `json:"contract_type,omitempty"`
	ContractEndDate *time.Time    `json:"contract_end_date,omitempty"`

	// Account history.
	AccountAgeMonths     *int  `json:"account_age_months,omitempty"`
	CurrentDelinquency   *bool `json:"current_delinquency,omitempty"`
	PastDelinquency      *bool `json:"past_delinquency,omitempty"`
	EmployerChanged      *bool `json:"employer_changed,omitempty"`
	SituationImproved    *bool `json:"situation_improved,omitempty"`
	PastDelinquencyCount *int  `json:"past_delinquency_count,omitempty"`

	// Employment.
	EmployerTenureMonths *int            `json:"employer_tenure_months,omitempty"`
	EmployerStatus       *EmployerStatus `json:"employer_status,omitempty"`
	EmployerKnown        *bool           `json:"employer_known,omitempty"`
	EmployerSuspicion    *bool           `json:"employer_suspicion,omitempty"`
}

// Merge copies every supplied field of the fragment into the profile,
// leaving fields the fragment did not set untouched.
func (p *ApplicantProfile) Merge(fragment *ApplicantProfile) {
	if fragment == nil {
		return
	}

	if fragment.ClientNumber != "" {
		p.ClientNumber = fragment.ClientNumber
	}
	if fragment.ClientName != "" {
		p.ClientName = fragment.ClientName
	}
	if fragment.AccountOfficer != "" {
		p.AccountOfficer = fragment.AccountOfficer
	}
	if fragment.OfficerEmail != "" {
		p.OfficerEmail = fragment.OfficerEmail
	}

	if fragment.MonthlyIncome != nil {
		p.MonthlyIncome = fragment.MonthlyIncome
	}
	if fragment.MonthlyCharges != nil {
		p.MonthlyCharges = fragment.MonthlyCharges
	}
	if fragment.RequestedAmount != nil {
		p.RequestedAmount = fragment.RequestedAmount
	}
	if fragment.DurationMonths != nil {
		p.DurationMonths = fragment.DurationMonths
	}
	if fragment.DebtRatio != nil {
		p.DebtRatio = fragment.DebtRatio
	}

	if fragment.ContractType != nil {
		p.ContractType = fragment.ContractType
	}
	if fragment.ContractEndDate != nil {
		p.ContractEndDate = fragment.ContractEndDate
	}

	if fragment.AccountAgeMonths != nil {
		p.AccountAgeMonths = fragment.AccountAgeMonths
	}
	if fragment.CurrentDelinquency != nil {
		p.CurrentDelinquency = fragment.CurrentDelinquency
	}
	if fragment.PastDelinquency != nil {
		p.PastDelinquency = fragment.PastDelinquency
	}
	if fragment.EmployerChanged != nil {
		p.EmployerChanged = fragment.EmployerChanged
	}
	if fragment.SituationImproved != nil {
		p.SituationImproved = fragment.SituationImproved
	}
	if fragment.PastDelinquencyCount != nil {
		p.PastDelinquencyCount = fragment.PastDelinquencyCount
	}

	if fragment.EmployerTenureMonths != nil {
		p.EmployerTenureMonths = fragment.EmployerTenureMonths
	}
	if fragment.EmployerStatus != nil {
		p.EmployerStatus = fragment.EmployerStatus
	}
	if fragment.EmployerKnown != nil {
		p.EmployerKnown = fragment.EmployerKnown
	}
	if fragment.EmployerSuspicion != nil {
		p.EmployerSuspicion = fragment.EmployerSuspicion
	}
}

// NormalizeDebtRatio maps a user-supplied ratio to its decimal form: values
// above 1 are read as percentages and divided by 100, values at or below 1
// are already decimal and pass through.
func NormalizeDebtRatio(ratio float64) float64 {
	if ratio > 1 {
		return ratio / 100
	}
	return ratio
}

// Pointer helpers for building partial profiles.

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Date returns a pointer to v.
func Date(v time.Time) *time.Time { return &v }

// Contract returns a pointer to v.
func Contract(v ContractType) *ContractType { return &v }

// Employer returns a pointer to v.
func Employer(v EmployerStatus) *EmployerStatus { return &v }
