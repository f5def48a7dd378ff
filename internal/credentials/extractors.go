package credentials

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/cookiex"
)

// Extractor pulls one credential candidate out of a request; empty means
// "not present here". Extractors are tried in order, first hit wins.
type Extractor func(c echo.Context) string

func HeaderValue(key string) Extractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(key)
	}
}

func BearerToken() Extractor {
	return func(c echo.Context) string {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return ""
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
}

func CookieValue(name string) Extractor {
	return func(c echo.Context) string {
		cookie, err := c.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// BodyField peeks a string field from a JSON body without consuming it; the
// body is restored so a later Bind still works.
func BodyField(name string) Extractor {
	return func(c echo.Context) string {
		req := c.Request()
		if req.Body == nil {
			return ""
		}
		data, err := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(data))
		if err != nil || len(data) == 0 {
			return ""
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return ""
		}
		if v, ok := fields[name].(string); ok {
			return v
		}
		return ""
	}
}

func FirstNonEmpty(c echo.Context, extractors ...Extractor) string {
	for _, extract := range extractors {
		if v := extract(c); v != "" {
			return v
		}
	}
	return ""
}

// GuardSessionSources are the direct session-token sources the request guard
// accepts: dedicated headers and the session cookie, no bearer reuse, no body.
func GuardSessionSources() []Extractor {
	return []Extractor{
		HeaderValue("x-session-token"),
		HeaderValue("session-token"),
		HeaderValue("sessiontoken"),
		CookieValue(cookiex.SessionTokenCookie),
	}
}

// GuardAccessSources are the access-token sources the request guard accepts.
func GuardAccessSources() []Extractor {
	return []Extractor{
		BearerToken(),
		HeaderValue("x-access-token"),
		HeaderValue("access-token"),
		HeaderValue("accesstoken"),
		CookieValue(cookiex.AccessTokenCookie),
	}
}

// SessionSources is the full precedence list for flows that resolve a session
// handle themselves (refresh, change-password, logout).
func SessionSources() []Extractor {
	return []Extractor{
		BearerToken(),
		HeaderValue("x-session-token"),
		HeaderValue("session-token"),
		HeaderValue("sessiontoken"),
		CookieValue(cookiex.SessionTokenCookie),
		BodyField("sessionToken"),
	}
}

// FallbackAccessSources feed the access-token fallback of the resolver. The
// bearer value comes last here: it was already tried as a session token.
func FallbackAccessSources() []Extractor {
	return []Extractor{
		HeaderValue("x-access-token"),
		HeaderValue("access-token"),
		HeaderValue("accesstoken"),
		CookieValue(cookiex.AccessTokenCookie),
		BodyField("accessToken"),
		BearerToken(),
	}
}

// RefreshTokenSources locate a refresh token for the refresh endpoint.
func RefreshTokenSources() []Extractor {
	return []Extractor{
		CookieValue(cookiex.RefreshTokenCookie),
		BodyField("refreshToken"),
	}
}
