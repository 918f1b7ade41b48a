package apimiddleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
)

// UserKey is where the authenticated user is stored in the echo context.
// Anonymous requests store a nil *mcmodel.User.
const UserKey = "user"

type GetUserByAPIKeyFN func(string) (*mcmodel.User, error)

type APIKeyConfig struct {
	Skipper         middleware.Skipper
	HeaderName      string
	QueryName       string
	GetUserByAPIKey GetUserByAPIKeyFN
}

var DefaultAPIKeyConfig = APIKeyConfig{
	Skipper:    middleware.DefaultSkipper,
	HeaderName: "Girder-Token",
	QueryName:  "token",
}

// APIKeyAuth identifies the caller from a token header or query param. A
// request without a token proceeds anonymously; an unknown token is
// rejected.
func APIKeyAuth(config APIKeyConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultAPIKeyConfig.Skipper
	}

	if config.HeaderName == "" {
		config.HeaderName = DefaultAPIKeyConfig.HeaderName
	}

	if config.QueryName == "" {
		config.QueryName = DefaultAPIKeyConfig.QueryName
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			value := getAPIKeyFromRequest(config, c)
			if value == "" {
				c.Set(UserKey, (*mcmodel.User)(nil))
				return next(c)
			}

			user, err := config.GetUserByAPIKey(value)
			switch {
			case err != nil:
				return echo.ErrUnauthorized
			case user == nil:
				return echo.ErrUnauthorized
			default:
				c.Set(UserKey, user)
				return next(c)
			}
		}
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in.")
		}
		return next(c)
	}
}

// CurrentUser returns the user APIKeyAuth stored, or nil.
func CurrentUser(c echo.Context) *mcmodel.User {
	user, _ := c.Get(UserKey).(*mcmodel.User)
	return user
}

func getAPIKeyFromRequest(config APIKeyConfig, c echo.Context) string {
	if value := c.Request().Header.Get(config.HeaderName); value != "" {
		return value
	}

	return c.QueryParam(config.QueryName)
}
