package jwtmiddleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func SignAccessToken(userID uint, role string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parseToken(raw string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

// RequireRole validates the bearer token and gates the group by role.
// The role only selects which operations are reachable; the core does not
// depend on it.
func RequireRole(role string, secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := parseToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			got, _ := claims["role"].(string)
			if got != role {
				return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
			}
			setUserContext(c, claims)
			return next(c)
		}
	}
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	if sub, ok := claims["sub"].(float64); ok {
		c.Set("userID", uint(sub))
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}
