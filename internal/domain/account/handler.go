package account

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthreach/healthreach/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth endpoints on the open group and the
// profile endpoint on the authenticated group.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/users/register", h.Register)
	public.POST("/users/login", h.Login)
	public.POST("/hospitals/login", h.HospitalLogin)
	protected.GET("/users/me", h.Me)
}

type authResponse struct {
	Account   *Account  `json:"account"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.svc.IssueToken(a)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{Account: a, Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) Login(c echo.Context) error {
	return h.login(c, false)
}

func (h *Handler) HospitalLogin(c echo.Context) error {
	return h.login(c, true)
}

func (h *Handler) login(c echo.Context, requireStaff bool) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, token, expiresAt, err := h.svc.Login(c.Request().Context(), creds, requireStaff)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Account: a, Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) Me(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	a, err := h.svc.GetByID(c.Request().Context(), identity.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
