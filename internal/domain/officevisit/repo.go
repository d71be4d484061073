package officevisit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, visit *OfficeVisit) error
	Update(ctx context.Context, visit *OfficeVisit) error
	GetByID(ctx context.Context, id uuid.UUID) (*OfficeVisit, error)
	List(ctx context.Context, limit, offset int) ([]*OfficeVisit, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error)
	ListByHCP(ctx context.Context, hcpID uuid.UUID, limit, offset int) ([]*OfficeVisit, int, error)
	InsertDiagnosis(ctx context.Context, d *Diagnosis) error
	UpdateDiagnosis(ctx context.Context, d *Diagnosis) error
}
