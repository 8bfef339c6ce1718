package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrInvalidContractType   = errors.New("invalid contract type")
	ErrInvalidEmployerStatus = errors.New("invalid employer status")
	ErrInvalidOutcome        = errors.New("invalid decision outcome")
	ErrSessionNotFound       = errors.New("application session not found")
	ErrSessionDecided        = errors.New("application already decided")
	ErrInvalidStep           = errors.New("invalid form step")
	ErrStepOutOfOrder        = errors.New("form steps must be completed in order")
)

// FieldError ties a validation failure to the field that caused it, keeping
// the submitted text so the caller can present it for correction.
type FieldError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is checks.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// NormalizeContractType converts common contract type spellings to the
// standard values. CDI and CDD are the intake-side names for permanent and
// fixed-term contracts.
func NormalizeContractType(value string) ContractType {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]ContractType{
		"permanent":  ContractPermanent,
		"cdi":        ContractPermanent,
		"open_ended": ContractPermanent,
		"indefinite": ContractPermanent,
		"fixed_term": ContractFixedTerm,
		"cdd":        ContractFixedTerm,
		"temporary":  ContractFixedTerm,
		"temp":       ContractFixedTerm,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return ContractType(normalized)
}

// NormalizeEmployerStatus converts common employer status spellings to the
// standard values.
func NormalizeEmployerStatus(value string) EmployerStatus {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	statusMap := map[string]EmployerStatus{
		"known_no_alert":  EmployerKnownNoAlert,
		"no_alert":        EmployerKnownNoAlert,
		"verified":        EmployerKnownNoAlert,
		"clear":           EmployerKnownNoAlert,
		"known_red_alert": EmployerKnownRedAlert,
		"red_alert":       EmployerKnownRedAlert,
		"risky":           EmployerKnownRedAlert,
		"unknown_pending": EmployerUnknownPending,
		"unknown":         EmployerUnknownPending,
		"pending":         EmployerUnknownPending,
		"unverified":      EmployerUnknownPending,
	}

	if mapped, ok := statusMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return EmployerStatus(normalized)
}
