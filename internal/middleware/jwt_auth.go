package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/profitboysub0-max/social-music-app/internal/models"
)

// JWTAuthMiddleware rejects requests without a valid JWT and stores
// the claims in the request context.
func JWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseToken(c, jwtSecret)
			if err != nil {
				return err
			}
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}
			c.Set("user", claims)
			return next(c)
		}
	}
}

// OptionalJWTMiddleware parses a JWT when one is supplied but lets
// anonymous requests through. Used on read endpoints where a missing
// user is a valid state.
func OptionalJWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseToken(c, jwtSecret)
			if err != nil {
				return err
			}
			if claims != nil {
				c.Set("user", claims)
			}
			return next(c)
		}
	}
}

// parseToken returns the validated claims, nil when no Authorization
// header is present, or an HTTP error for a malformed or invalid token.
func parseToken(c echo.Context, jwtSecret string) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}
