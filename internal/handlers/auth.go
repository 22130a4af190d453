package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/events"
	"github.com/avishkin/pharmacy/internal/hash"
	"github.com/avishkin/pharmacy/internal/jwtmiddleware"
	"github.com/avishkin/pharmacy/internal/models"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *events.Producer
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}
	if req.Role != models.RoleSeller && req.Role != models.RoleBuyer {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be seller or buyer")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	user := models.User{Username: req.Username, PasswordHash: pwHash, Role: req.Role}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := jwtmiddleware.SignAccessToken(user.ID, user.Role, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token": token,
		"role":         user.Role,
	})
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
