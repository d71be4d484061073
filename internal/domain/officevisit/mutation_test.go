package officevisit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/domain/audit"
	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
)

func hcpCaller(f *fixture) *auth.Caller {
	return &auth.Caller{ID: f.hcp.ID, Username: f.hcp.Username, Role: auth.RoleHCP}
}

func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture()

	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if visit.ID == uuid.Nil {
		t.Error("expected assigned visit id")
	}
	if visit.PatientID != f.patient.ID || visit.HCPID != f.hcp.ID {
		t.Error("expected resolved patient and hcp ids")
	}
	if len(visit.Diagnoses) != 1 {
		t.Fatalf("expected 1 diagnosis, got %d", len(visit.Diagnoses))
	}
	d := visit.Diagnoses[0]
	if d.ID == uuid.Nil || d.VisitID != visit.ID {
		t.Errorf("expected diagnosis attached to visit, got %+v", d)
	}
	if d.Description != "Type 2 diabetes mellitus without complications" {
		t.Errorf("expected description from the vocabulary, got %q", d.Description)
	}
	if d.Note != "routine follow-up" {
		t.Errorf("expected note copied verbatim, got %q", d.Note)
	}

	stored, err := f.repo.GetByID(context.Background(), visit.ID)
	if err != nil {
		t.Fatalf("expected visit persisted: %v", err)
	}
	if len(stored.Diagnoses) != 1 {
		t.Errorf("expected persisted diagnosis, got %d", len(stored.Diagnoses))
	}

	if len(f.sink.events) != 1 {
		t.Fatalf("expected 1 trail event, got %d", len(f.sink.events))
	}
	e := f.sink.events[0]
	if e.kind != audit.KindVisitCreate || e.actor != "dr-jones" || e.subject != "alice" {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestCreate_UnknownCodeRejectsWholeRequest(t *testing.T) {
	f := newFixture()
	form := f.visitForm()
	form.Diagnoses = append(form.Diagnoses, DiagnosisForm{Code: "Z99.99", Note: "made up"})

	_, err := f.mutations.Create(context.Background(), hcpCaller(f), form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if len(f.repo.visits) != 0 || len(f.repo.diags) != 0 {
		t.Error("expected nothing persisted")
	}
	if len(f.sink.events) != 0 {
		t.Error("expected no trail events")
	}
}

func TestCreate_NoteOverCapRejected(t *testing.T) {
	f := newFixture()
	form := f.visitForm()
	form.Diagnoses[0].Note = strings.Repeat("x", 501)

	_, err := f.mutations.Create(context.Background(), hcpCaller(f), form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference for an over-long note, got %v", err)
	}
	if len(f.repo.visits) != 0 {
		t.Error("expected nothing persisted")
	}

	form.Diagnoses[0].Note = strings.Repeat("x", 500)
	if _, err := f.mutations.Create(context.Background(), hcpCaller(f), form); err != nil {
		t.Fatalf("expected a note at the cap to pass, got %v", err)
	}
}

func TestCreate_DiagnosisIDOnFreshVisitRejected(t *testing.T) {
	f := newFixture()
	form := f.visitForm()
	id := uuid.New()
	form.Diagnoses[0].ID = &id

	_, err := f.mutations.Create(context.Background(), hcpCaller(f), form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestCreate_RollbackLeavesStoreUntouched(t *testing.T) {
	f := newFixture()
	f.repo.failInsertDiagnosis = true

	_, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err == nil {
		t.Fatal("expected error from failed diagnosis insert")
	}
	if len(f.repo.visits) != 0 || len(f.repo.diags) != 0 {
		t.Error("expected rollback to discard the visit and its diagnoses")
	}
	if len(f.sink.events) != 0 {
		t.Error("expected no trail events after rollback")
	}
}

func TestCreate_PatientRefMustBePatient(t *testing.T) {
	f := newFixture()
	form := f.visitForm()
	form.Patient = "dr-jones"

	_, err := f.mutations.Create(context.Background(), hcpCaller(f), form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestUpdate_PathBodyIDMismatch(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.sink.events = nil

	form := f.visitForm()
	other := uuid.New()
	form.ID = &other

	_, err = f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
	if len(f.sink.events) != 0 {
		t.Error("expected no trail events for a rejected update")
	}
}

func TestUpdate_Missing(t *testing.T) {
	f := newFixture()
	_, err := f.mutations.Update(context.Background(), hcpCaller(f), uuid.New(), f.visitForm())
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdate_ResendingPayloadIsIdempotent(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		updated, err := f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, f.visitForm())
		if err != nil {
			t.Fatalf("update %d: %v", i+1, err)
		}
		if len(updated.Diagnoses) != 1 {
			t.Fatalf("update %d: expected 1 diagnosis, got %d", i+1, len(updated.Diagnoses))
		}
	}
	if len(f.repo.diags) != 1 {
		t.Errorf("expected 1 stored diagnosis after re-sends, got %d", len(f.repo.diags))
	}
}

func TestUpdate_AppendsNewDiagnosis(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	form := f.visitForm()
	form.Diagnoses = append(form.Diagnoses, DiagnosisForm{Code: "J45", Note: "wheezing"})

	updated, err := f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, form)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Diagnoses) != 2 {
		t.Fatalf("expected 2 diagnoses, got %d", len(updated.Diagnoses))
	}
	if len(f.repo.diags) != 2 {
		t.Errorf("expected 2 stored diagnoses, got %d", len(f.repo.diags))
	}
}

func TestUpdate_DiagnosisInPlace(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	diagID := visit.Diagnoses[0].ID

	form := f.visitForm()
	form.Diagnoses = []DiagnosisForm{{ID: &diagID, Code: "J45", Note: "reassessed"}}

	updated, err := f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, form)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Diagnoses) != 1 {
		t.Fatalf("expected 1 diagnosis, got %d", len(updated.Diagnoses))
	}
	d := updated.Diagnoses[0]
	if d.ID != diagID {
		t.Error("expected diagnosis id to be stable across an in-place update")
	}
	if d.Code != "J45" || d.Note != "reassessed" {
		t.Errorf("expected updated code and note, got %+v", d)
	}
	if d.Description != "Asthma" {
		t.Errorf("expected description re-resolved from the vocabulary, got %q", d.Description)
	}
}

func TestUpdate_ForeignDiagnosisIDRejected(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create second visit: %v", err)
	}
	foreignID := other.Diagnoses[0].ID

	form := f.visitForm()
	form.Diagnoses = []DiagnosisForm{{ID: &foreignID, Code: "E11.9", Note: "stolen"}}

	_, err = f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, form)
	if !errors.Is(err, errs.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestUpdate_RecordsEditEvent(t *testing.T) {
	f := newFixture()
	visit, err := f.mutations.Create(context.Background(), hcpCaller(f), f.visitForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.sink.events = nil

	if _, err := f.mutations.Update(context.Background(), hcpCaller(f), visit.ID, f.visitForm()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.sink.events) != 1 {
		t.Fatalf("expected 1 trail event, got %d", len(f.sink.events))
	}
	e := f.sink.events[0]
	if e.kind != audit.KindVisitEdit || e.actor != "dr-jones" || e.subject != "alice" {
		t.Errorf("unexpected event: %+v", e)
	}
}
