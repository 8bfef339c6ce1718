package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/utils"
)

// ErrInvalidDate reports a date that matched none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// FlexibleAmount accepts a JSON number or a free-text amount such as
// "700 000" or "300000 XPF" and carries the parsed value.
type FlexibleAmount float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}

		parsed, err := utils.ParseAmount(text)
		if err != nil {
			return err
		}

		*f = FlexibleAmount(parsed)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*f = FlexibleAmount(value)
	return nil
}

// FlexibleDate accepts ISO (2006-01-02) and French day-first
// (02/01/2006, 02-01-2006) date strings.
type FlexibleDate struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *FlexibleDate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}

	parsed, ok := utils.ParseDate(text)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}

	d.Time = parsed
	return nil
}

// CreateApplicationRequest opens a new application session. Policy and
// mode override the configured defaults when set.
type CreateApplicationRequest struct {
	ClientNumber   string `json:"client_number"`
	ClientName     string `json:"client_name"`
	AccountOfficer string `json:"account_officer"`
	OfficerEmail   string `json:"officer_email"`
	Policy         string `json:"policy"`
	Mode           string `json:"mode"`
}

// StepRequest carries one form step's fields. Every field is optional;
// absent fields leave the stored profile untouched. Amounts accept free
// text, dates accept ISO and day-first formats, and the enumerated fields
// accept the common intake spellings (CDI, CDD, "no alert", ...).
type StepRequest struct {
	ClientNumber   string `json:"client_number"`
	ClientName     string `json:"client_name"`
	AccountOfficer string `json:"account_officer"`
	OfficerEmail   string `json:"officer_email"`

	MonthlyIncome   *FlexibleAmount `json:"monthly_income"`
	MonthlyCharges  *FlexibleAmount `json:"monthly_charges"`
	RequestedAmount *FlexibleAmount `json:"requested_amount"`
	DurationMonths  *int            `json:"duration_months"`
	DebtRatio       *float64        `json:"debt_ratio"`

	ContractType    *string       `json:"contract_type"`
	ContractEndDate *FlexibleDate `json:"contract_end_date"`

	AccountAgeMonths     *int  `json:"account_age_months"`
	CurrentDelinquency   *bool `json:"current_delinquency"`
	PastDelinquency      *bool `json:"past_delinquency"`
	EmployerChanged      *bool `json:"employer_changed"`
	SituationImproved    *bool `json:"situation_improved"`
	PastDelinquencyCount *int  `json:"past_delinquency_count"`

	EmployerTenureMonths *int    `json:"employer_tenure_months"`
	EmployerStatus       *string `json:"employer_status"`
	EmployerKnown        *bool   `json:"employer_known"`
	EmployerSuspicion    *bool   `json:"employer_suspicion"`
}

// ToProfile converts the request into a profile fragment, normalizing the
// enumerated fields and rejecting values that remain invalid after
// normalization.
func (r *StepRequest) ToProfile() (*models.ApplicantProfile, error) {
	p := &models.ApplicantProfile{
		ClientNumber:   r.ClientNumber,
		ClientName:     r.ClientName,
		AccountOfficer: r.AccountOfficer,
		OfficerEmail:   r.OfficerEmail,
	}

	if r.MonthlyIncome != nil {
		p.MonthlyIncome = models.Float(float64(*r.MonthlyIncome))
	}
	if r.MonthlyCharges != nil {
		p.MonthlyCharges = models.Float(float64(*r.MonthlyCharges))
	}
	if r.RequestedAmount != nil {
		p.RequestedAmount = models.Float(float64(*r.RequestedAmount))
	}
	p.DurationMonths = r.DurationMonths
	p.DebtRatio = r.DebtRatio

	if r.ContractType != nil {
		contractType := models.NormalizeContractType(*r.ContractType)
		if !contractType.IsValid() {
			return nil, &models.FieldError{
				Field: "contract_type",
				Value: *r.ContractType,
				Err:   models.ErrInvalidContractType,
			}
		}
		p.ContractType = &contractType
	}
	if r.ContractEndDate != nil {
		p.ContractEndDate = models.Date(r.ContractEndDate.Time)
	}

	p.AccountAgeMonths = r.AccountAgeMonths
	p.CurrentDelinquency = r.CurrentDelinquency
	p.PastDelinquency = r.PastDelinquency
	p.EmployerChanged = r.EmployerChanged
	p.SituationImproved = r.SituationImproved
	p.PastDelinquencyCount = r.PastDelinquencyCount

	p.EmployerTenureMonths = r.EmployerTenureMonths
	if r.EmployerStatus != nil {
		status := models.NormalizeEmployerStatus(*r.EmployerStatus)
		if !status.IsValid() {
			return nil, &models.FieldError{
				Field: "employer_status",
				Value: *r.EmployerStatus,
				Err:   models.ErrInvalidEmployerStatus,
			}
		}
		p.EmployerStatus = &status
	}
	p.EmployerKnown = r.EmployerKnown
	p.EmployerSuspicion = r.EmployerSuspicion

	return p, nil
}
