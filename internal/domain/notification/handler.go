package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthreach/healthreach/internal/platform/apperrors"
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
	protected.GET("/notifications", h.List)
	protected.GET("/notifications/unread", h.ListUnread)
	protected.POST("/notifications/create", h.Create)
	protected.POST("/notifications/read", h.MarkRead)
	protected.DELETE("/notifications/:id", h.Delete)
	protected.POST("/notifications/emergency", h.Emergency)
}

type listResponse struct {
	Data    []*Notification `json:"data"`
	Total   int             `json:"total"`
	Unread  int             `json:"unread"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	HasMore bool            `json:"has_more"`
}

func (h *Handler) List(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, unread, err := h.svc.List(c.Request().Context(), identity.AccountID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Notification{}
	}
	return c.JSON(http.StatusOK, listResponse{
		Data:    items,
		Total:   total,
		Unread:  unread,
		Limit:   pg.Limit,
		Offset:  pg.Offset,
		HasMore: pg.HasNext(total),
	})
}

func (h *Handler) ListUnread(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	items, err := h.svc.ListUnread(c.Request().Context(), identity.AccountID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Notification{}
	}
	return c.JSON(http.StatusOK, items)
}

type createRequest struct {
	AccountID uuid.UUID              `json:"account_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"notification_type"`
	Data      map[string]interface{} `json:"data"`
}

// Create lets a caller create a notification. Regular users may only notify
// themselves; staff may notify any account.
func (h *Handler) Create(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AccountID == uuid.Nil {
		req.AccountID = identity.AccountID
	}
	if req.AccountID != identity.AccountID && !identity.IsStaff {
		return apperrors.Forbidden("cannot create notifications for other accounts")
	}

	n, err := h.svc.CreateDeduped(c.Request().Context(), &Notification{
		AccountID: req.AccountID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Data:      req.Data,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
	All bool        `json:"all"`
}

func (h *Handler) MarkRead(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.All {
		req.IDs = nil
	}
	updated, err := h.svc.MarkRead(c.Request().Context(), identity.AccountID, req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"updated": updated})
}

func (h *Handler) Delete(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), identity.AccountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type emergencyRequest struct {
	AccountID uuid.UUID              `json:"account_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
}

// Emergency broadcasts an emergency notification. When a target account is
// given the fan-out covers that account plus all active staff; otherwise it
// covers all active staff. Staff only.
func (h *Handler) Emergency(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	if !identity.IsStaff {
		return apperrors.Forbidden("staff account required")
	}
	var req emergencyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var created []*Notification
	if req.AccountID != uuid.Nil {
		created, err = h.svc.NotifyUserAndStaff(c.Request().Context(), req.AccountID, req.Title, req.Message, TypeEmergency, req.Data)
	} else {
		created, err = h.svc.NotifyAllStaff(c.Request().Context(), req.Title, req.Message, TypeEmergency, req.Data)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]int{"delivered": len(created)})
}
