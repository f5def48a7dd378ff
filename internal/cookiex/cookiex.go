package cookiex

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	SessionTokenCookie = "sessionToken"
)

func baseCookie(name, value string, production bool) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	}
}

func Set(c echo.Context, name, value string, maxAge time.Duration, production bool) {
	cookie := baseCookie(name, value, production)
	cookie.Expires = time.Now().Add(maxAge)
	c.SetCookie(cookie)
}

func Clear(c echo.Context, name string, production bool) {
	cookie := baseCookie(name, "", production)
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}
