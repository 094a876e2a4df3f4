package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrAdapter       = errors.New("analysis error")
	ErrMutation      = errors.New("mutation error")
	ErrStore         = errors.New("store error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails summarizes an error for logs and persisted job records.
type ErrorDetails struct {
	Kind    string
	Message string
	Hint    string
}

// Details classifies err against the known markers. Kind is "unknown" when no
// marker matches.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: "unknown", Message: strings.TrimSpace(err.Error())}
	switch {
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
		details.Hint = "set llm.api_key or MINUTES_LLM_API_KEY and re-queue"
	case errors.Is(err, ErrAdapter):
		details.Kind = "analysis"
		details.Hint = "re-queue the meeting once the analysis service is reachable"
	case errors.Is(err, ErrMutation):
		details.Kind = "mutation"
		details.Hint = "check the meeting record store and re-queue"
	case errors.Is(err, ErrStore):
		details.Kind = "store"
		details.Hint = "check the job database file and permissions"
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
	case errors.Is(err, ErrNotFound):
		details.Kind = "not_found"
	case errors.Is(err, ErrTransient):
		details.Kind = "transient"
	}
	return details
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
