package officevisit

import (
	"time"

	"github.com/google/uuid"
)

// VisitType classifies an office visit.
type VisitType string

const (
	TypeGeneralCheckup       VisitType = "general_checkup"
	TypeGeneralOphthalmology VisitType = "general_ophthalmology"
	TypeOphthalmologySurgery VisitType = "ophthalmology_surgery"
)

// Valid reports whether t is one of the known visit types.
func (t VisitType) Valid() bool {
	switch t {
	case TypeGeneralCheckup, TypeGeneralOphthalmology, TypeOphthalmologySurgery:
		return true
	}
	return false
}

// OfficeVisit maps to the office_visit table. A visit always carries its
// diagnoses when returned from the service layer.
type OfficeVisit struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	PatientID uuid.UUID    `db:"patient_id" json:"patient_id"`
	HCPID     uuid.UUID    `db:"hcp_id" json:"hcp_id"`
	Type      VisitType    `db:"type" json:"type"`
	Date      time.Time    `db:"date" json:"date"`
	Hospital  string       `db:"hospital" json:"hospital"`
	Notes     *string      `db:"notes" json:"notes,omitempty"`
	Diagnoses []*Diagnosis `db:"-" json:"diagnoses"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Diagnosis maps to the diagnosis table. Code and Description are copied from
// the vocabulary entry at assembly time.
type Diagnosis struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VisitID     uuid.UUID `db:"visit_id" json:"visit_id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Note        string    `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
