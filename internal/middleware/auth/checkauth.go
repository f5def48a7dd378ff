package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/credentials"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/httpx"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/metrics"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/provider"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/tokens"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

const userContextKey = "authUser"

// AuthUser is the identity context attached to the request after the guard
// accepts it.
type AuthUser struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type Guard struct {
	Provider     *provider.Provider
	AccessSecret []byte
	Metrics      *metrics.Metrics
}

// CheckAuth authenticates every request on the wrapped routes. An empty role
// list admits any active authenticated user.
func (g *Guard) CheckAuth(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			sessionToken := credentials.FirstNonEmpty(c, credentials.GuardSessionSources()...)
			if sessionToken == "" {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "No session token found"))
			}

			accessToken := credentials.FirstNonEmpty(c, credentials.GuardAccessSources()...)
			if accessToken == "" {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "No access token found"))
			}

			session, err := g.Provider.SessionByToken(ctx, sessionToken)
			if err != nil {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired session"))
			}

			user, err := g.Provider.UserByID(ctx, session.UserID)
			if err != nil {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired session"))
			}
			if user.Status == models.StatusBlocked || user.Status == models.StatusDeleted || user.IsDeleted {
				return g.reject(c, apperrors.New(apperrors.CodeForbidden, "User is not active"))
			}

			claims, ok := tokens.Verify(accessToken, g.AccessSecret)
			if !ok || claims.UserID == "" {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "Invalid access token"))
			}
			if claims.UserID != session.UserID {
				return g.reject(c, apperrors.New(apperrors.CodeUnauthorized, "Unauthorized"))
			}

			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				return g.reject(c, apperrors.New(apperrors.CodeForbidden, "Unauthorized"))
			}

			setRefreshSignal(c, session)

			c.Set(userContextKey, AuthUser{
				UserID: user.ID,
				Role:   user.Role,
				Name:   user.Name,
				Email:  user.Email,
				Status: user.Status,
			})
			return next(c)
		}
	}
}

func (g *Guard) reject(c echo.Context, err error) error {
	g.Metrics.IncGuardRejections()
	return httpx.SendError(c, err)
}

// setRefreshSignal emits advisory headers when less than 20% of the session
// lifetime remains. Exactly 20% does not signal.
func setRefreshSignal(c echo.Context, session *models.Session) {
	now := time.Now()
	lifetime := session.ExpiresAt.Sub(session.CreatedAt)
	if lifetime <= 0 {
		return
	}
	remaining := session.ExpiresAt.Sub(now)
	if remaining*5 < lifetime {
		h := c.Response().Header()
		h.Set("X-Session-Refresh", "true")
		h.Set("X-Session-Expires-At", session.ExpiresAt.UTC().Format(time.RFC3339))
		h.Set("X-Time-Remaining", fmt.Sprintf("%d", remaining.Milliseconds()))
	}
}

// UserFromContext reads the identity attached by CheckAuth.
func UserFromContext(c echo.Context) (AuthUser, bool) {
	user, ok := c.Get(userContextKey).(AuthUser)
	return user, ok
}
