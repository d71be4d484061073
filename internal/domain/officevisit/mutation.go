package officevisit

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/domain/audit"
	"github.com/medrec/visits/internal/domain/identity"
	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/db"
	"github.com/medrec/visits/internal/platform/errs"
)

// UserDirectory is the slice of the identity service the visit services need.
type UserDirectory interface {
	ResolvePatient(ctx context.Context, username string) (*identity.User, error)
	ResolveHCP(ctx context.Context, username string) (*identity.User, error)
}

// MutationService creates and amends office visits. Each call persists the
// visit and all its diagnoses in one transaction and records a trail event
// after the commit.
type MutationService struct {
	repo      Repository
	users     UserDirectory
	assembler *Assembler
	tx        db.TxRunner
	sink      audit.Sink
}

func NewMutationService(repo Repository, users UserDirectory, assembler *Assembler, tx db.TxRunner, sink audit.Sink) *MutationService {
	return &MutationService{repo: repo, users: users, assembler: assembler, tx: tx, sink: sink}
}

func (s *MutationService) Create(ctx context.Context, caller *auth.Caller, form *VisitForm) (*OfficeVisit, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	patient, err := s.users.ResolvePatient(ctx, form.Patient)
	if err != nil {
		return nil, err
	}
	hcp, err := s.users.ResolveHCP(ctx, form.HCP)
	if err != nil {
		return nil, err
	}

	visit := &OfficeVisit{
		ID:        uuid.New(),
		PatientID: patient.ID,
		HCPID:     hcp.ID,
		Type:      form.Type,
		Date:      form.Date,
		Hospital:  form.Hospital,
		Notes:     form.Notes,
		Diagnoses: []*Diagnosis{},
	}

	// A fresh visit carries no diagnoses yet, so any form id is rejected by
	// the assembler.
	diagnoses := make([]*Diagnosis, 0, len(form.Diagnoses))
	for _, df := range form.Diagnoses {
		d, err := s.assembler.Assemble(ctx, df, visit)
		if err != nil {
			return nil, err
		}
		diagnoses = append(diagnoses, d)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, visit); err != nil {
			return err
		}
		for _, d := range diagnoses {
			d.VisitID = visit.ID
			if err := s.repo.InsertDiagnosis(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	visit.Diagnoses = diagnoses

	s.sink.Record(ctx, audit.KindVisitCreate, caller.Username, patient.Username)
	return visit, nil
}

// Update amends the visit named by id. Diagnosis forms carrying an id update
// that diagnosis in place; forms without an id are appended unless an
// identical (code, note) diagnosis is already on the visit. Nothing is ever
// removed.
func (s *MutationService) Update(ctx context.Context, caller *auth.Caller, id uuid.UUID, form *VisitForm) (*OfficeVisit, error) {
	if form.ID != nil && *form.ID != id {
		return nil, errs.InvalidReference("body id %s does not match path id %s", *form.ID, id)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := s.users.ResolvePatient(ctx, form.Patient)
	if err != nil {
		return nil, err
	}
	hcp, err := s.users.ResolveHCP(ctx, form.HCP)
	if err != nil {
		return nil, err
	}

	visit := &OfficeVisit{
		ID:        existing.ID,
		PatientID: patient.ID,
		HCPID:     hcp.ID,
		Type:      form.Type,
		Date:      form.Date,
		Hospital:  form.Hospital,
		Notes:     form.Notes,
		CreatedAt: existing.CreatedAt,
	}

	updated := make(map[uuid.UUID]*Diagnosis)
	var appended []*Diagnosis
	for _, df := range form.Diagnoses {
		d, err := s.assembler.Assemble(ctx, df, existing)
		if err != nil {
			return nil, err
		}
		if df.ID != nil {
			updated[d.ID] = d
			continue
		}
		if hasSameDiagnosis(existing.Diagnoses, updated, appended, d) {
			continue
		}
		appended = append(appended, d)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, visit); err != nil {
			return err
		}
		for _, d := range updated {
			if err := s.repo.UpdateDiagnosis(ctx, d); err != nil {
				return err
			}
		}
		for _, d := range appended {
			d.VisitID = visit.ID
			if err := s.repo.InsertDiagnosis(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Merged view: kept rows, in-place updates, then appends.
	merged := make([]*Diagnosis, 0, len(existing.Diagnoses)+len(appended))
	for _, d := range existing.Diagnoses {
		if u, ok := updated[d.ID]; ok {
			merged = append(merged, u)
			continue
		}
		merged = append(merged, d)
	}
	visit.Diagnoses = append(merged, appended...)

	s.sink.Record(ctx, audit.KindVisitEdit, caller.Username, patient.Username)
	return visit, nil
}

// hasSameDiagnosis reports whether a (code, note) pair is already present on
// the merged visit, which is what makes re-sending a payload idempotent.
func hasSameDiagnosis(existing []*Diagnosis, updated map[uuid.UUID]*Diagnosis, appended []*Diagnosis, d *Diagnosis) bool {
	same := func(other *Diagnosis) bool {
		return other.Code == d.Code && other.Note == d.Note
	}
	for _, e := range existing {
		if u, ok := updated[e.ID]; ok {
			if same(u) {
				return true
			}
			continue
		}
		if same(e) {
			return true
		}
	}
	for _, a := range appended {
		if same(a) {
			return true
		}
	}
	return false
}
