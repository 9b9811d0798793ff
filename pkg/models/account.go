package models

import "time"

// AccountStatus is the directory status of an employee.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// EmployeeAccount is the employee directory record. Its lifecycle is independent of any
// single workflow; at most one account exists per email.
type EmployeeAccount struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Email                string        `json:"email"`
	Phone                string        `json:"phone,omitempty"`
	Position             string        `json:"position"`
	Department           string        `json:"department"`
	EmploymentType       string        `json:"employment_type"`
	StartDate            *time.Time    `json:"start_date,omitempty"`
	SupervisorID         string        `json:"supervisor_id,omitempty"`
	Supervisor           *Assignee     `json:"supervisor,omitempty"`
	ClientID             string        `json:"client_id"`
	Documents            []Document    `json:"documents"`
	Status               AccountStatus `json:"status"`
	OnboardedAt          *time.Time    `json:"onboarded_at,omitempty"`
	OffboardedAt         *time.Time    `json:"offboarded_at,omitempty"`
	OffboardingType      string        `json:"offboarding_type,omitempty"`
	ExitReason           string        `json:"exit_reason,omitempty"`
	LastWorkingDay       *time.Time    `json:"last_working_day,omitempty"`
	OffboardingDocuments []string      `json:"offboarding_documents,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// MergeDocuments appends documents whose name is not already present.
func (a *EmployeeAccount) MergeDocuments(documents []Document) {
	seen := make(map[string]bool, len(a.Documents))
	for _, document := range a.Documents {
		seen[document.Name] = true
	}

	for _, document := range documents {
		if seen[document.Name] {
			continue
		}

		seen[document.Name] = true
		a.Documents = append(a.Documents, document)
	}
}
