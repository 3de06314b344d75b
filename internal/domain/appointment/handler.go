package appointment

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthreach/healthreach/internal/platform/auth"
	"github.com/healthreach/healthreach/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/appointments", h.Create)
	protected.GET("/appointments", h.List)
	protected.POST("/appointments/:id/approve", h.Approve)
	protected.POST("/appointments/:id/reject", h.Reject)
	protected.DELETE("/hospitals/:id/appointments", h.Purge)
}

func (h *Handler) Create(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), identity, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) List(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), identity, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Detail{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Approve(c echo.Context) error {
	return h.transition(c, h.svc.Approve)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.transition(c, h.svc.Reject)
}

func (h *Handler) transition(c echo.Context, fn func(context.Context, *auth.Identity, uuid.UUID) (*Detail, error)) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := fn(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Purge(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	deleted, err := h.svc.Purge(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}
