package shared

import (
	"net/http"
	"sort"
	"strings"

	"reviewhub/internal/domain/report"
	"reviewhub/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Month validates the strict YYYY-MM wire form and returns the parsed value.
func (v *Validator) Month(field, raw string) (report.Month, bool) {
	month, err := report.ParseMonth(strings.TrimSpace(raw))
	if err != nil {
		v.Add(field, "must be a valid month in YYYY-MM format")
		return report.Month{}, false
	}
	return month, true
}

func (v *Validator) Email(field, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	at := strings.Index(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 || strings.ContainsAny(trimmed, " \t") {
		v.Add(field, "must be a valid email address")
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
