package credentials

import (
	"github.com/labstack/echo/v4"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/provider"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/tokens"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

// Resolver turns a request into a validated session token. Direct session
// sources win; failing those, a valid access token recovers the newest live
// session of its embedded user. That fallback lets a client holding only an
// access token still drive flows that need a session handle.
type Resolver struct {
	Provider     *provider.Provider
	AccessSecret []byte
}

func (r *Resolver) ResolveSessionToken(c echo.Context) (string, error) {
	ctx := c.Request().Context()

	if candidate := FirstNonEmpty(c, SessionSources()...); candidate != "" {
		if session, err := r.Provider.SessionByToken(ctx, candidate); err == nil {
			return session.Token, nil
		}
	}

	accessToken := FirstNonEmpty(c, FallbackAccessSources()...)
	if accessToken == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized,
			"No session token found. Provide a session token, or an access token to derive a valid session.")
	}

	claims, ok := tokens.Verify(accessToken, r.AccessSecret)
	if !ok || claims.UserID == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized,
			"No session token found. Provide a session token, or an access token to derive a valid session.")
	}

	session, err := r.Provider.NewestSessionForUser(ctx, claims.UserID)
	if err != nil {
		return "", apperrors.New(apperrors.CodeUnauthorized,
			"No session token found. Provide a session token, or an access token to derive a valid session.")
	}
	return session.Token, nil
}
