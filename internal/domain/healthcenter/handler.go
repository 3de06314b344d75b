package healthcenter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthreach/healthreach/internal/platform/auth"
	"github.com/healthreach/healthreach/pkg/pagination"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/hospitals/register", h.RegisterHospital)
	public.GET("/hospitals", h.List)
	public.GET("/hospitals/:id", h.Get)
	public.GET("/districts", h.Districts)

	protected.POST("/hospitals", h.Create)
	protected.PUT("/hospitals/:id", h.Update)
	protected.GET("/hospitals/dashboard", h.GetDashboard)
}

type registerResponse struct {
	AccountID uuid.UUID     `json:"account_id"`
	Center    *HealthCenter `json:"center"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (h *Handler) RegisterHospital(c echo.Context) error {
	var in RegisterHospitalInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hc, ownerID, err := h.svc.RegisterHospital(c.Request().Context(), in)
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.Issue(ownerID, in.Email, true, &hc.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{
		AccountID: ownerID,
		Center:    hc,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) Create(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	var hc HealthCenter
	if err := c.Bind(&hc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateOwned(c.Request().Context(), identity.AccountID, &hc); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	hc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hc)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := SearchFilter{
		Query: c.QueryParam("q"),
		City:  c.QueryParam("city"),
	}
	for param, dest := range map[string]**bool{
		"emergency": &filter.Emergency,
		"ambulance": &filter.Ambulance,
		"pharmacy":  &filter.Pharmacy,
		"lab":       &filter.Lab,
	} {
		if v := c.QueryParam(param); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+param+" filter")
			}
			*dest = &b
		}
	}

	items, total, err := h.svc.Search(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*HealthCenter{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var hc HealthCenter
	if err := c.Bind(&hc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	hc.ID = id
	updated, err := h.svc.Update(c.Request().Context(), identity.AccountID, identity.IsStaff, &hc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Districts(c echo.Context) error {
	districts, err := h.svc.Districts(c.Request().Context())
	if err != nil {
		return err
	}
	if districts == nil {
		districts = []string{}
	}
	return c.JSON(http.StatusOK, districts)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	identity, err := auth.MustIdentity(c.Request().Context())
	if err != nil {
		return err
	}
	dash, err := h.svc.GetDashboard(c.Request().Context(), identity.AccountID, identity.IsStaff)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dash)
}
