package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avishkin/pharmacy/internal/events"
	"github.com/avishkin/pharmacy/internal/service"
)

type OrderHandler struct {
	Inventory *service.Inventory
	Producer  *events.Producer
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req struct {
		Code     string  `json:"code"`
		Quantity int64   `json:"quantity"`
		Address  string  `json:"address"`
		Rating   float64 `json:"rating,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Inventory.PlaceOrder(c.Request().Context(), req.Code, req.Quantity, req.Address)
	if err != nil {
		return errorResponse(c, err)
	}

	// optional rating rides along with placement; an out-of-range value is
	// reported in the response but does not undo the order
	ratingAccepted := false
	if req.Rating != 0 {
		if err := h.Inventory.RateMedication(c.Request().Context(), req.Code, req.Rating); err == nil {
			ratingAccepted = true
		}
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_placed",
		"orderID":  order.ID,
		"code":     req.Code,
		"quantity": order.Quantity,
		"total":    order.TotalCost,
	})

	return c.JSON(http.StatusCreated, map[string]any{
		"order":           order,
		"rating_accepted": ratingAccepted,
	})
}

func (h *OrderHandler) ListActiveOrders(c echo.Context) error {
	orders, err := h.Inventory.ActiveOrders(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Inventory.CancelOrder(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_canceled",
		"orderID":  order.ID,
		"restored": order.Quantity,
	})

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SetDeliveryAddress(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Inventory.SetDeliveryAddress(c.Request().Context(), id, req.Address)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func parseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
