package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avishkin/pharmacy/internal/events"
	"github.com/avishkin/pharmacy/internal/service"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(mapErrorToStatus(err), Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMedicationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidOrder):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type MedicationHandler struct {
	Catalog   *service.Catalog
	Inventory *service.Inventory
	Producer  *events.Producer
}

func (h *MedicationHandler) CreateMedication(c echo.Context) error {
	var req struct {
		Name  string  `json:"name"`
		Code  string  `json:"code"`
		Price float64 `json:"price"`
		Stock int64   `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	med, err := h.Catalog.Add(c.Request().Context(), req.Name, req.Code, req.Price, req.Stock)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, med.Code, map[string]any{
		"type":  "medication_added",
		"code":  med.Code,
		"name":  med.Name,
		"stock": med.Stock,
	})

	return c.JSON(http.StatusCreated, med)
}

func (h *MedicationHandler) GetMedication(c echo.Context) error {
	med, err := h.Catalog.FindByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, med)
}

func (h *MedicationHandler) ListMedications(c echo.Context) error {
	meds, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, meds)
}

func (h *MedicationHandler) UpdateStock(c echo.Context) error {
	var req struct {
		Delta int64 `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	med, err := h.Inventory.UpdateStock(c.Request().Context(), c.Param("code"), req.Delta)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, med.Code, map[string]any{
		"type":  "stock_updated",
		"code":  med.Code,
		"delta": req.Delta,
		"stock": med.Stock,
	})

	return c.JSON(http.StatusOK, med)
}

func (h *MedicationHandler) RateMedication(c echo.Context) error {
	var req struct {
		Rating float64 `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	code := c.Param("code")
	if err := h.Inventory.RateMedication(c.Request().Context(), code, req.Rating); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "thank you for rating"})
}

func (h *MedicationHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
