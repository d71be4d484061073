package officevisit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/visits/internal/platform/db"
	"github.com/medrec/visits/internal/platform/errs"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const visitCols = `id, patient_id, hcp_id, type, date, hospital, notes, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, visit *OfficeVisit) error {
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO office_visit (id, patient_id, hcp_id, type, date, hospital, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		visit.ID, visit.PatientID, visit.HCPID, visit.Type, visit.Date, visit.Hospital, visit.Notes,
	).Scan(&visit.CreatedAt, &visit.UpdatedAt)
}

func (r *repoPG) Update(ctx context.Context, visit *OfficeVisit) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE office_visit SET
			patient_id=$2, hcp_id=$3, type=$4, date=$5, hospital=$6, notes=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		visit.ID, visit.PatientID, visit.HCPID, visit.Type, visit.Date, visit.Hospital, visit.Notes,
	).Scan(&visit.CreatedAt, &visit.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*OfficeVisit, error) {
	var v OfficeVisit
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+visitCols+` FROM office_visit WHERE id = $1`, id).
		Scan(&v.ID, &v.PatientID, &v.HCPID, &v.Type, &v.Date, &v.Hospital, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("office visit %s", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadDiagnoses(ctx, []*OfficeVisit{&v}); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*OfficeVisit, int, error) {
	return r.list(ctx, `SELECT `+visitCols+` FROM office_visit ORDER BY date DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM office_visit`, nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error) {
	return r.list(ctx,
		`SELECT `+visitCols+` FROM office_visit WHERE patient_id = $3 ORDER BY date DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM office_visit WHERE patient_id = $1`, &patientID, limit, offset)
}

func (r *repoPG) ListByHCP(ctx context.Context, hcpID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error) {
	return r.list(ctx,
		`SELECT `+visitCols+` FROM office_visit WHERE hcp_id = $3 ORDER BY date DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM office_visit WHERE hcp_id = $1`, &hcpID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, dataSQL, countSQL string, filterID *uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error) {
	var total int
	countArgs := []interface{}{}
	dataArgs := []interface{}{limit, offset}
	if filterID != nil {
		countArgs = append(countArgs, *filterID)
		dataArgs = append(dataArgs, *filterID)
	}

	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visits []*OfficeVisit
	for rows.Next() {
		var v OfficeVisit
		if err := rows.Scan(&v.ID, &v.PatientID, &v.HCPID, &v.Type, &v.Date, &v.Hospital, &v.Notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadDiagnoses(ctx, visits); err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// loadDiagnoses attaches diagnoses to the given visits with a single query.
func (r *repoPG) loadDiagnoses(ctx context.Context, visits []*OfficeVisit) error {
	if len(visits) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*OfficeVisit, len(visits))
	ids := make([]uuid.UUID, 0, len(visits))
	for _, v := range visits {
		v.Diagnoses = []*Diagnosis{}
		byID[v.ID] = v
		ids = append(ids, v.ID)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, visit_id, code, description, note, created_at
		FROM diagnosis WHERE visit_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.ID, &d.VisitID, &d.Code, &d.Description, &d.Note, &d.CreatedAt); err != nil {
			return err
		}
		if v, ok := byID[d.VisitID]; ok {
			v.Diagnoses = append(v.Diagnoses, &d)
		}
	}
	return rows.Err()
}

func (r *repoPG) InsertDiagnosis(ctx context.Context, d *Diagnosis) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diagnosis (id, visit_id, code, description, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		d.ID, d.VisitID, d.Code, d.Description, d.Note,
	).Scan(&d.CreatedAt)
}

func (r *repoPG) UpdateDiagnosis(ctx context.Context, d *Diagnosis) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE diagnosis SET code=$2, description=$3, note=$4
		WHERE id = $1 AND visit_id = $5`,
		d.ID, d.Code, d.Description, d.Note, d.VisitID,
	)
	return err
}
