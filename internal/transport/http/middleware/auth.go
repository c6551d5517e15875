package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stickspnw/sticks-work-center/internal/presentation/http/response"
	authsvc "github.com/stickspnw/sticks-work-center/internal/service/auth"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

const principalKey = "auth.principal"

// Auth authenticates requests and enforces role gates.
type Auth struct {
	svc *authsvc.Service
}

// NewAuth constructs the auth middleware.
func NewAuth(svc *authsvc.Service) *Auth {
	return &Auth{svc: svc}
}

// Require rejects requests without a valid bearer token and stores the
// verified principal on the request context.
func (a *Auth) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			principal, err := a.svc.Verify(token)
			if err != nil {
				return response.New(c).WithError(err).Build()
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// RequireAdmin gates a route to the admin role. It assumes Require already
// ran.
func (a *Auth) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			if !p.Admin() {
				return response.New(c).WithError(errorbank.Forbidden("admin role required")).Build()
			}
			return next(c)
		}
	}
}

// RequireWrite blocks read-only accounts from mutating routes.
func (a *Auth) RequireWrite() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			if !p.CanWrite() {
				return response.New(c).WithError(errorbank.Forbidden("read-only accounts cannot modify data")).Build()
			}
			return next(c)
		}
	}
}

// Principal returns the authenticated caller stored by Require.
func Principal(c echo.Context) (authsvc.Principal, bool) {
	p, ok := c.Get(principalKey).(authsvc.Principal)
	return p, ok
}
