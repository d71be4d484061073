package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
	"github.com/medrec/visits/pkg/pagination"
)

type Handler struct {
	log *Log
}

func NewHandler(log *Log) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminGroup := api.Group("", auth.RequireOperation(auth.OpViewAuditLog))
	adminGroup.GET("/auditevents", h.ListEvents)
}

func (h *Handler) ListEvents(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := Filter{
		Actor:   c.QueryParam("actor"),
		Kind:    Kind(c.QueryParam("kind")),
		Subject: c.QueryParam("subject"),
	}

	events, total, err := h.log.Search(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(events, total, pg.Limit, pg.Offset))
}
