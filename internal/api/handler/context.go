package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/incident-tracker/internal/api/middleware"
	"github.com/sirpyerre/incident-tracker/internal/core/domain"
)

// ctxActor returns the user resolved by the Auth middleware. Its absence
// means the route was mounted without Auth, which is reported as 401 rather
// than letting a nil identity reach the services.
func ctxActor(c echo.Context) (*domain.User, error) {
	u := middleware.User(c)
	if u == nil || u.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token is missing")
	}
	return u, nil
}
