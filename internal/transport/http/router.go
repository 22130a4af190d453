package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/avishkin/pharmacy/internal/handlers"
	"github.com/avishkin/pharmacy/internal/jwtmiddleware"
	"github.com/avishkin/pharmacy/internal/models"
)

type Deps struct {
	JWTSecret         []byte
	AuthHandler       *handlers.AuthHandler
	MedicationHandler *handlers.MedicationHandler
	OrderHandler      *handlers.OrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)

	v1.GET("/medications", d.MedicationHandler.ListMedications)
	v1.GET("/medications/:code", d.MedicationHandler.GetMedication)

	seller := v1.Group("", jwtmiddleware.RequireRole(models.RoleSeller, d.JWTSecret))
	seller.POST("/medications", d.MedicationHandler.CreateMedication)
	seller.POST("/medications/:code/stock", d.MedicationHandler.UpdateStock)

	buyer := v1.Group("", jwtmiddleware.RequireRole(models.RoleBuyer, d.JWTSecret))
	buyer.POST("/orders", d.OrderHandler.PlaceOrder)
	buyer.GET("/orders", d.OrderHandler.ListActiveOrders)
	buyer.POST("/orders/:id/cancel", d.OrderHandler.CancelOrder)
	buyer.PATCH("/orders/:id/address", d.OrderHandler.SetDeliveryAddress)
	buyer.POST("/medications/:code/rating", d.MedicationHandler.RateMedication)
}
