package icd

import (
	"time"

	"github.com/google/uuid"
)

// Code is an entry in the ICD-10 diagnosis vocabulary. The directory is
// read-only at runtime; rows arrive through migrations.
type Code struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
