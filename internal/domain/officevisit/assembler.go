package officevisit

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/domain/icd"
	"github.com/medrec/visits/internal/platform/errs"
)

// CodeDirectory is the slice of the vocabulary service the assembler needs.
type CodeDirectory interface {
	Lookup(ctx context.Context, code string) (*icd.Code, error)
}

// Assembler turns diagnosis forms into persistable diagnoses. Every code
// reference is resolved against the vocabulary; an unknown code rejects the
// whole form rather than being skipped.
type Assembler struct {
	codes CodeDirectory
}

func NewAssembler(codes CodeDirectory) *Assembler {
	return &Assembler{codes: codes}
}

// Assemble builds the diagnosis named by form for the owner visit. A form id
// must name a diagnosis the owner already carries; the result is always
// attached to the owner, never to whatever visit the id might point at.
func (a *Assembler) Assemble(ctx context.Context, form DiagnosisForm, owner *OfficeVisit) (*Diagnosis, error) {
	code := strings.TrimSpace(form.Code)
	if code == "" {
		return nil, errs.InvalidReference("diagnosis code is required")
	}

	entry, err := a.codes.Lookup(ctx, code)
	if err != nil {
		return nil, errs.InvalidReference("unknown icd code %q", code)
	}

	d := &Diagnosis{
		VisitID:     owner.ID,
		Code:        entry.Code,
		Description: entry.Description,
		Note:        form.Note,
	}

	if form.ID != nil {
		existing := owner.findDiagnosis(*form.ID)
		if existing == nil {
			return nil, errs.InvalidReference("diagnosis %s does not belong to this visit", *form.ID)
		}
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
	}

	return d, nil
}

func (v *OfficeVisit) findDiagnosis(id uuid.UUID) *Diagnosis {
	for _, d := range v.Diagnoses {
		if d.ID == id {
			return d
		}
	}
	return nil
}
