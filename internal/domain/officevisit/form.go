package officevisit

import (
	"time"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/platform/errs"
)

// maxNoteLen matches the diagnosis note column constraint.
const maxNoteLen = 500

// VisitForm is the request payload for creating or amending a visit. Users
// are referenced by username, diagnoses by vocabulary code.
type VisitForm struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	Patient   string          `json:"patient"`
	HCP       string          `json:"hcp"`
	Type      VisitType       `json:"type"`
	Date      time.Time       `json:"date"`
	Hospital  string          `json:"hospital"`
	Notes     *string         `json:"notes,omitempty"`
	Diagnoses []DiagnosisForm `json:"diagnoses"`
}

// DiagnosisForm references a vocabulary code plus a free-text note. ID is set
// when amending a diagnosis the visit already carries.
type DiagnosisForm struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Code string     `json:"code"`
	Note string     `json:"note"`
}

// Validate checks the visit metadata. Reference resolution happens in the
// services; this only rejects forms that could never persist.
func (f *VisitForm) Validate() error {
	if f.Patient == "" {
		return errs.InvalidReference("patient is required")
	}
	if f.HCP == "" {
		return errs.InvalidReference("hcp is required")
	}
	if !f.Type.Valid() {
		return errs.InvalidReference("unknown visit type %q", f.Type)
	}
	if f.Date.IsZero() {
		return errs.InvalidReference("date is required")
	}
	if f.Hospital == "" {
		return errs.InvalidReference("hospital is required")
	}
	for _, d := range f.Diagnoses {
		if len(d.Note) > maxNoteLen {
			return errs.InvalidReference("diagnosis note exceeds %d characters", maxNoteLen)
		}
	}
	return nil
}
