package officevisit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
	"github.com/medrec/visits/pkg/pagination"
)

type Handler struct {
	mutations *MutationService
	queries   *QueryService
}

func NewHandler(mutations *MutationService, queries *QueryService) *Handler {
	return &Handler{mutations: mutations, queries: queries}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/officevisits", h.ListAll, auth.RequireOperation(auth.OpViewAllVisits))
	// Route matching is case-sensitive; the uppercase path is the documented
	// one, the lowercase alias is kept for convenience.
	api.GET("/officevisits/HCP", h.ListOwn, auth.RequireOperation(auth.OpViewOwnVisits))
	api.GET("/officevisits/hcp", h.ListOwn, auth.RequireOperation(auth.OpViewOwnVisits))
	api.GET("/officevisits/myofficevisits", h.ListOwn, auth.RequireOperation(auth.OpViewOwnVisits))
	api.GET("/officevisits/:id", h.GetVisit, auth.RequireOperation(auth.OpViewVisitByID))
	api.POST("/officevisits", h.CreateVisit, auth.RequireOperation(auth.OpCreateVisit))
	api.PUT("/officevisits/:id", h.UpdateVisit, auth.RequireOperation(auth.OpEditVisit))
}

func (h *Handler) ListAll(c echo.Context) error {
	pg := pagination.FromContext(c)
	visits, total, err := h.queries.ListAll(c.Request().Context(), auth.CallerFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListOwn(c echo.Context) error {
	pg := pagination.FromContext(c)
	visits, total, err := h.queries.ListOwn(c.Request().Context(), auth.CallerFrom(c), pg.Limit, pg.Offset)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(visits, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	visit, err := h.queries.GetByID(c.Request().Context(), auth.CallerFrom(c), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, visit)
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var form VisitForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	visit, err := h.mutations.Create(c.Request().Context(), auth.CallerFrom(c), &form)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, visit)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var form VisitForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	visit, err := h.mutations.Update(c.Request().Context(), auth.CallerFrom(c), id, &form)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, visit)
}

// domainError maps a service error to the transport. Misses get a bare 404.
func domainError(err error) error {
	status := errs.HTTPStatus(err)
	if status == http.StatusNotFound {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return echo.NewHTTPError(status, err.Error())
}
