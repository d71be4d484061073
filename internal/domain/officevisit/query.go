package officevisit

import (
	"context"

	"github.com/google/uuid"

	"github.com/medrec/visits/internal/domain/audit"
	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
)

// QueryService reads office visits. Every successful read leaves its trail
// events; GetByID records the attempt even when the visit does not exist.
type QueryService struct {
	repo Repository
	sink audit.Sink
}

func NewQueryService(repo Repository, sink audit.Sink) *QueryService {
	return &QueryService{repo: repo, sink: sink}
}

// ListAll returns every visit on record. A successful call records
// visit.view_all followed by visit.view_surgery_hcp, in that order.
func (s *QueryService) ListAll(ctx context.Context, caller *auth.Caller, limit, offset int) ([]*OfficeVisit, int, error) {
	visits, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	s.sink.Record(ctx, audit.KindVisitViewAll, caller.Username)
	s.sink.Record(ctx, audit.KindVisitViewSurgeryHCP, caller.Username)
	return visits, total, nil
}

// ListOwn returns the caller's visits: as treating HCP for hcp callers, as
// the patient on record for patient callers.
func (s *QueryService) ListOwn(ctx context.Context, caller *auth.Caller, limit, offset int) ([]*OfficeVisit, int, error) {
	switch caller.Role {
	case auth.RoleHCP:
		visits, total, err := s.repo.ListByHCP(ctx, caller.ID, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		s.sink.Record(ctx, audit.KindVisitViewAll, caller.Username)
		return visits, total, nil

	case auth.RolePatient:
		visits, total, err := s.repo.ListByPatient(ctx, caller.ID, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		s.sink.Record(ctx, audit.KindVisitViewAll, caller.Username)
		s.sink.Record(ctx, audit.KindVisitViewSurgeryPt, caller.Username)
		return visits, total, nil

	default:
		return nil, 0, errs.Forbidden("role %s holds no visits", caller.Role)
	}
}

// GetByID returns one visit. The access attempt is recorded before the
// existence check, so a miss still shows in the trail.
func (s *QueryService) GetByID(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*OfficeVisit, error) {
	s.sink.Record(ctx, audit.KindVisitCheckupView, caller.Username)
	return s.repo.GetByID(ctx, id)
}
