package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind names a recordable action. The set is closed: services record only
// these, and the trail stays queryable by exact kind.
type Kind string

const (
	KindVisitViewAll        Kind = "visit.view_all"
	KindVisitViewSurgeryHCP Kind = "visit.view_surgery_hcp"
	KindVisitViewSurgeryPt  Kind = "visit.view_surgery_patient"
	KindVisitCheckupView    Kind = "visit.checkup_view"
	KindVisitCreate         Kind = "visit.create"
	KindVisitEdit           Kind = "visit.edit"
)

// Event is one row of the append-only trail. Events are never updated or
// deleted once written.
type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Kind      Kind      `db:"kind" json:"kind"`
	Actor     string    `db:"actor" json:"actor"`
	Subject   *string   `db:"subject" json:"subject,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
