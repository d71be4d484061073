package icd

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrec/visits/internal/platform/auth"
	"github.com/medrec/visits/internal/platform/errs"
	"github.com/medrec/visits/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireOperation(auth.OpViewCodes))
	readGroup.GET("/icdcodes", h.ListCodes)
	readGroup.GET("/icdcodes/:code", h.GetCode)
}

func (h *Handler) ListCodes(c echo.Context) error {
	pg := pagination.FromContext(c)

	codes, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(codes, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetCode(c echo.Context) error {
	code, err := h.svc.Lookup(c.Request().Context(), c.Param("code"))
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, code)
}
