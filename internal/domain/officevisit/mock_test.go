package officevisit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/domain/audit"
	"github.com/medrec/visits/internal/domain/icd"
	"github.com/medrec/visits/internal/domain/identity"
	"github.com/medrec/visits/internal/platform/errs"
)

// mockRepo is an in-memory Repository. Writes apply immediately; mockTx
// snapshots and restores state to imitate transaction rollback.
type mockRepo struct {
	visits map[uuid.UUID]*OfficeVisit
	diags  []*Diagnosis

	failInsertDiagnosis bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{visits: make(map[uuid.UUID]*OfficeVisit)}
}

func (m *mockRepo) Create(_ context.Context, visit *OfficeVisit) error {
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	now := time.Now().UTC()
	visit.CreatedAt = now
	visit.UpdatedAt = now
	stored := *visit
	stored.Diagnoses = nil
	m.visits[visit.ID] = &stored
	return nil
}

func (m *mockRepo) Update(_ context.Context, visit *OfficeVisit) error {
	stored, ok := m.visits[visit.ID]
	if !ok {
		return errs.NotFound("office visit %s", visit.ID)
	}
	visit.CreatedAt = stored.CreatedAt
	visit.UpdatedAt = time.Now().UTC()
	updated := *visit
	updated.Diagnoses = nil
	m.visits[visit.ID] = &updated
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*OfficeVisit, error) {
	stored, ok := m.visits[id]
	if !ok {
		return nil, errs.NotFound("office visit %s", id)
	}
	visit := *stored
	visit.Diagnoses = m.diagnosesFor(id)
	return &visit, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*OfficeVisit, int, error) {
	var out []*OfficeVisit
	for id := range m.visits {
		v := *m.visits[id]
		v.Diagnoses = m.diagnosesFor(id)
		out = append(out, &v)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error) {
	var out []*OfficeVisit
	for id, stored := range m.visits {
		if stored.PatientID != patientID {
			continue
		}
		v := *stored
		v.Diagnoses = m.diagnosesFor(id)
		out = append(out, &v)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByHCP(_ context.Context, hcpID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error) {
	var out []*OfficeVisit
	for id, stored := range m.visits {
		if stored.HCPID != hcpID {
			continue
		}
		v := *stored
		v.Diagnoses = m.diagnosesFor(id)
		out = append(out, &v)
	}
	return out, len(out), nil
}

func (m *mockRepo) InsertDiagnosis(_ context.Context, d *Diagnosis) error {
	if m.failInsertDiagnosis {
		return errors.New("insert diagnosis failed")
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()
	stored := *d
	m.diags = append(m.diags, &stored)
	return nil
}

func (m *mockRepo) UpdateDiagnosis(_ context.Context, d *Diagnosis) error {
	for i, stored := range m.diags {
		if stored.ID == d.ID && stored.VisitID == d.VisitID {
			updated := *d
			updated.CreatedAt = stored.CreatedAt
			m.diags[i] = &updated
			return nil
		}
	}
	return errs.NotFound("diagnosis %s", d.ID)
}

func (m *mockRepo) diagnosesFor(visitID uuid.UUID) []*Diagnosis {
	out := []*Diagnosis{}
	for _, d := range m.diags {
		if d.VisitID == visitID {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out
}

// mockTx imitates rollback by restoring the repo snapshot when fn fails.
type mockTx struct {
	repo *mockRepo
}

func (t *mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	visits := make(map[uuid.UUID]*OfficeVisit, len(t.repo.visits))
	for id, v := range t.repo.visits {
		copied := *v
		visits[id] = &copied
	}
	diags := make([]*Diagnosis, len(t.repo.diags))
	for i, d := range t.repo.diags {
		copied := *d
		diags[i] = &copied
	}

	if err := fn(ctx); err != nil {
		t.repo.visits = visits
		t.repo.diags = diags
		return err
	}
	return nil
}

type mockUsers struct {
	users map[string]*identity.User
}

func (m *mockUsers) resolve(username string, role identity.Role) (*identity.User, error) {
	u, ok := m.users[username]
	if !ok || u.Role != role {
		return nil, errs.InvalidReference("no %s named %q", role, username)
	}
	return u, nil
}

func (m *mockUsers) ResolvePatient(_ context.Context, username string) (*identity.User, error) {
	return m.resolve(username, identity.RolePatient)
}

func (m *mockUsers) ResolveHCP(_ context.Context, username string) (*identity.User, error) {
	return m.resolve(username, identity.RoleHCP)
}

type mockCodes struct {
	codes map[string]*icd.Code
}

func (m *mockCodes) Lookup(_ context.Context, code string) (*icd.Code, error) {
	if c, ok := m.codes[code]; ok {
		return c, nil
	}
	return nil, errs.NotFound("icd code %s", code)
}

type recordedEvent struct {
	kind    audit.Kind
	actor   string
	subject string
}

type mockSink struct {
	events []recordedEvent
}

func (m *mockSink) Record(_ context.Context, kind audit.Kind, actor string, subject ...string) {
	e := recordedEvent{kind: kind, actor: actor}
	if len(subject) > 0 {
		e.subject = subject[0]
	}
	m.events = append(m.events, e)
}

// fixture bundles everything a service test needs.
type fixture struct {
	repo  *mockRepo
	users *mockUsers
	codes *mockCodes
	sink  *mockSink

	patient *identity.User
	hcp     *identity.User

	mutations *MutationService
	queries   *QueryService
}

func newFixture() *fixture {
	patient := &identity.User{ID: uuid.New(), Username: "alice", Role: identity.RolePatient, Enabled: true}
	hcp := &identity.User{ID: uuid.New(), Username: "dr-jones", Role: identity.RoleHCP, Enabled: true}

	repo := newMockRepo()
	users := &mockUsers{users: map[string]*identity.User{
		"alice":    patient,
		"dr-jones": hcp,
	}}
	codes := &mockCodes{codes: map[string]*icd.Code{
		"E11.9": {ID: uuid.New(), Code: "E11.9", Description: "Type 2 diabetes mellitus without complications"},
		"J45":   {ID: uuid.New(), Code: "J45", Description: "Asthma"},
	}}
	sink := &mockSink{}

	assembler := NewAssembler(codes)
	mutations := NewMutationService(repo, users, assembler, &mockTx{repo: repo}, sink)
	queries := NewQueryService(repo, sink)

	return &fixture{
		repo: repo, users: users, codes: codes, sink: sink,
		patient: patient, hcp: hcp,
		mutations: mutations, queries: queries,
	}
}

func (f *fixture) visitForm() *VisitForm {
	return &VisitForm{
		Patient:  "alice",
		HCP:      "dr-jones",
		Type:     TypeGeneralCheckup,
		Date:     time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Hospital: "General Hospital",
		Diagnoses: []DiagnosisForm{
			{Code: "E11.9", Note: "routine follow-up"},
		},
	}
}
