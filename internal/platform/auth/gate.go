package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Operation names a guarded capability. Every route is registered under
// exactly one operation.
type Operation string

const (
	OpViewAllVisits Operation = "visits:view_all"
	OpViewOwnVisits Operation = "visits:view_own"
	OpViewVisitByID Operation = "visits:view_by_id"
	OpCreateVisit   Operation = "visits:create"
	OpEditVisit     Operation = "visits:edit"
	OpViewCodes     Operation = "codes:view"
	OpViewAuditLog  Operation = "audit:view"
)

// gate is the complete operation -> role table. There is no wildcard and no
// admin override: a role can do exactly what the table says.
var gate = map[Operation]map[string]bool{
	OpViewAllVisits: {RoleHCP: true},
	OpViewOwnVisits: {RolePatient: true, RoleHCP: true},
	OpViewVisitByID: {RoleHCP: true},
	OpCreateVisit:   {RoleHCP: true},
	OpEditVisit:     {RoleHCP: true},
	OpViewCodes:     {RoleHCP: true, RoleAdmin: true},
	OpViewAuditLog:  {RoleAdmin: true},
}

// Allowed reports whether the role may perform the operation. Unknown
// operations and unknown roles are denied.
func Allowed(role string, op Operation) bool {
	return gate[op][role]
}

// RequireOperation returns middleware that rejects callers whose role is not
// in the table for op. Denials are side-effect free: nothing is recorded and
// no domain state changes.
func RequireOperation(op Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			if caller == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no authenticated caller")
			}
			if !Allowed(caller.Role, op) {
				return echo.NewHTTPError(http.StatusForbidden, "operation not permitted for role")
			}
			return next(c)
		}
	}
}
