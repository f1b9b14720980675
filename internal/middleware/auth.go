package middleware

import (
	"crypto/subtle"
	"net/http"

	"robot-route-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// Claims is the JWT payload issued at login and expected on every
// authenticated call.
type Claims struct {
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	IsModerator bool   `json:"is_moderator"`
	jwt.RegisteredClaims
}

// JWT returns the bearer-token middleware. On success it exposes the caller
// to handlers as userID / username / userRole context keys.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token := c.Get("user").(*jwt.Token)
			claims := token.Claims.(*Claims)
			c.Set("userID", claims.UserID)
			c.Set("username", claims.Username)
			role := models.RoleUser
			if claims.IsModerator {
				role = models.RoleModerator
			}
			c.Set("userRole", string(role))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Missing or invalid token"})
		},
	})
}

// ModeratorOnly rejects callers whose token does not carry the moderator
// flag. It must run after JWT.
func ModeratorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get("userRole").(string)
		if role != string(models.RoleModerator) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Moderator privileges required"})
		}
		return next(c)
	}
}

// CalculationKey guards the result callback endpoint with the shared secret
// the calculation collaborator was configured with. An empty configured key
// disables the endpoint entirely.
func CalculationKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get("X-Calculation-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid calculation key"})
			}
			return next(c)
		}
	}
}

// CallerRole reads the role the JWT middleware stored on the context.
func CallerRole(c echo.Context) models.Role {
	role, _ := c.Get("userRole").(string)
	if role == string(models.RoleModerator) {
		return models.RoleModerator
	}
	return models.RoleUser
}
