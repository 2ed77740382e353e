package fhir

import (
	"encoding/json"
	"strings"
)

// Severity and issue type codes used by this service, from the FHIR R4
// value sets.
const (
	IssueSeverityError = "error"

	IssueTypeInvalid    = "invalid"
	IssueTypeNotFound   = "not-found"
	IssueTypeProcessing = "processing"
)

// OperationOutcome represents a FHIR OperationOutcome for errors.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Diagnostics string   `json:"diagnostics,omitempty"`
	Expression  []string `json:"expression,omitempty"`
}

func NewOperationOutcome(severity, code, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{
				Severity:    severity,
				Code:        code,
				Diagnostics: diagnostics,
			},
		},
	}
}

func ErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeProcessing, diagnostics)
}

func NotFoundOutcome(resourceType, id string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityError, IssueTypeNotFound, resourceType+"/"+id+" not found")
}

// ValidationOutcome creates an OperationOutcome for a single invalid field.
func ValidationOutcome(field, message string) *OperationOutcome {
	oo := NewOperationOutcome(IssueSeverityError, IssueTypeInvalid, message)
	if field != "" {
		oo.Issue[0].Expression = []string{field}
	}
	return oo
}

// ParseOutcome decodes body as an OperationOutcome. It returns nil when the
// body is not one, so callers can fall back to a generic error summary.
func ParseOutcome(body []byte) *OperationOutcome {
	var oo OperationOutcome
	if err := json.Unmarshal(body, &oo); err != nil {
		return nil
	}
	if oo.ResourceType != "OperationOutcome" || len(oo.Issue) == 0 {
		return nil
	}
	return &oo
}

// Diagnostics joins the diagnostics of all issues into one line.
func (oo *OperationOutcome) Diagnostics() string {
	var parts []string
	for _, issue := range oo.Issue {
		if issue.Diagnostics != "" {
			parts = append(parts, issue.Diagnostics)
		}
	}
	return strings.Join(parts, "; ")
}
