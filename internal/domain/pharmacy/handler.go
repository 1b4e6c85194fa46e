package pharmacy

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/medication"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/pharmacies", h.ListPharmacies)
	api.GET("/pharmacies/:id", h.GetPharmacy)
	api.GET("/pharmacies/:id/stock", h.ListStock)
	api.GET("/pharmacies/:id/stock/check", h.CheckStock)
	api.GET("/pharmacies/:id/expiring", h.ExpiringSoon)

	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/pharmacies", h.CreatePharmacy)
	admin.POST("/pharmacies/:id/restock", h.Restock)

	staff := api.Group("", auth.RequireRole(auth.RoleDoctor))
	staff.POST("/pharmacies/:id/reduce", h.ReduceStock)
	staff.POST("/pharmacies/:id/dispense", h.Dispense)
}

func (h *Handler) CreatePharmacy(c echo.Context) error {
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePharmacy(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPharmacy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPharmacy(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPharmacies(c echo.Context) error {
	hospitalID, err := uuid.Parse(c.QueryParam("hospital_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "hospital_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPharmacies(c.Request().Context(), hospitalID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Stock Handlers --

type checkStockResponse struct {
	Available bool `json:"available"`
	Current   int  `json:"current"`
}

func (h *Handler) CheckStock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	medicineID, err := uuid.Parse(c.QueryParam("medicine_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "medicine_id is required")
	}
	qty := 1
	if err := echo.QueryParamsBinder(c).Int("quantity", &qty).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	available, current, err := h.svc.CheckStock(c.Request().Context(), pharmacyID, medicineID, qty)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, checkStockResponse{Available: available, Current: current})
}

type reduceStockRequest struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"quantity"`
}

type reduceStockResponse struct {
	Remaining int `json:"remaining"`
}

func (h *Handler) ReduceStock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reduceStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	remaining, err := h.svc.ReduceStock(c.Request().Context(), pharmacyID, req.MedicineID, req.Quantity)
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			return echo.NewHTTPError(http.StatusConflict, insufficient.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, reduceStockResponse{Remaining: remaining})
}

func (h *Handler) Restock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item StockItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.PharmacyID = pharmacyID
	if err := h.svc.Restock(c.Request().Context(), &item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListStock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListStock(c.Request().Context(), pharmacyID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ExpiringSoon(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	days := 30
	if err := echo.QueryParamsBinder(c).Int("days", &days).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid days")
	}
	items, err := h.svc.ExpiringSoon(c.Request().Context(), pharmacyID, time.Duration(days)*24*time.Hour)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// -- Dispensing --

type dispenseRequest struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
}

type dispenseResponse struct {
	Total string `json:"total"`
}

func (h *Handler) Dispense(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	total, err := h.svc.Dispense(c.Request().Context(), req.PrescriptionID, pharmacyID)
	if err != nil {
		var insufficient *InsufficientStockError
		if errors.As(err, &insufficient) {
			return echo.NewHTTPError(http.StatusConflict, insufficient.Error())
		}
		if errors.Is(err, medication.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, dispenseResponse{Total: total.StringFixed(2)})
}
