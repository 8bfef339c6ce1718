package handlers_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/handlers"
	"credit-decision-engine/internal/models"
)

func TestFlexibleAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected float64
	}{
		{"plain number", `42000`, 42000},
		{"decimal number", `42000.5`, 42000.5},
		{"quoted digits", `"42000"`, 42000},
		{"spaced thousands", `"700 000"`, 700000},
		{"currency suffix", `"300000 XPF"`, 300000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var amount handlers.FlexibleAmount
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &amount))
			assert.Equal(t, tt.expected, float64(amount))
		})
	}
}

func TestFlexibleAmount_UnmarshalJSON_Invalid(t *testing.T) {
	for _, payload := range []string{`"abc"`, `"-5000"`, `true`} {
		var amount handlers.FlexibleAmount
		assert.Error(t, json.Unmarshal([]byte(payload), &amount), "Payload %s should fail", payload)
	}
}

func TestFlexibleDate_UnmarshalJSON(t *testing.T) {
	expected := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	for _, payload := range []string{`"2026-09-30"`, `"30/09/2026"`, `"30-09-2026"`} {
		var date handlers.FlexibleDate
		require.NoError(t, json.Unmarshal([]byte(payload), &date), "Payload %s should parse", payload)
		assert.True(t, expected.Equal(date.Time))
	}

	var date handlers.FlexibleDate
	err := json.Unmarshal([]byte(`"someday"`), &date)
	require.Error(t, err)
	assert.True(t, errors.Is(err, handlers.ErrInvalidDate))
}

func TestStepRequest_ToProfile(t *testing.T) {
	payload := `{
		"client_number": "C-00042",
		"monthly_income": "700 000",
		"duration_months": 12,
		"contract_type": "CDD",
		"contract_end_date": "30/09/2027",
		"employer_status": "no alert",
		"past_delinquency": false
	}`

	var req handlers.StepRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	profile, err := req.ToProfile()
	require.NoError(t, err)

	assert.Equal(t, "C-00042", profile.ClientNumber)
	require.NotNil(t, profile.MonthlyIncome)
	assert.Equal(t, float64(700000), *profile.MonthlyIncome)
	require.NotNil(t, profile.ContractType)
	assert.Equal(t, models.ContractFixedTerm, *profile.ContractType)
	require.NotNil(t, profile.ContractEndDate)
	assert.Equal(t, "2027-09-30", profile.ContractEndDate.Format("2006-01-02"))
	require.NotNil(t, profile.EmployerStatus)
	assert.Equal(t, models.EmployerKnownNoAlert, *profile.EmployerStatus)
	require.NotNil(t, profile.PastDelinquency)
	assert.False(t, *profile.PastDelinquency, "Explicit false must survive the conversion")
	assert.Nil(t, profile.CurrentDelinquency, "Absent fields must stay nil")
}

func TestStepRequest_ToProfile_InvalidEnums(t *testing.T) {
	var fieldErr *models.FieldError

	req := handlers.StepRequest{ContractType: stringPtr("freelance")}
	_, err := req.ToProfile()
	require.Error(t, err)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "contract_type", fieldErr.Field)
	assert.True(t, errors.Is(err, models.ErrInvalidContractType))

	req = handlers.StepRequest{EmployerStatus: stringPtr("blacklisted")}
	_, err = req.ToProfile()
	require.Error(t, err)
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "employer_status", fieldErr.Field)
}

func stringPtr(s string) *string { return &s }
