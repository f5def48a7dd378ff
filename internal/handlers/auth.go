package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/cookiex"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/credentials"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/httpx"
	authmw "github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/middleware/auth"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/service"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

type AuthHandler struct {
	Service  *service.AuthService
	Resolver *credentials.Resolver

	Production bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration
}

func (h *AuthHandler) setAuthCookies(c echo.Context, result *service.AuthResult) {
	cookiex.Set(c, cookiex.AccessTokenCookie, result.AccessToken, h.AccessTTL, h.Production)
	cookiex.Set(c, cookiex.RefreshTokenCookie, result.RefreshToken, h.RefreshTTL, h.Production)
	if result.SessionToken != "" {
		cookiex.Set(c, cookiex.SessionTokenCookie, result.SessionToken, h.SessionTTL, h.Production)
	}
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	cookiex.Clear(c, cookiex.AccessTokenCookie, h.Production)
	cookiex.Clear(c, cookiex.RefreshTokenCookie, h.Production)
	cookiex.Clear(c, cookiex.SessionTokenCookie, h.Production)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "name, email and password are required"))
	}

	result, err := h.Service.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return httpx.SendError(c, err)
	}

	h.setAuthCookies(c, result)
	return httpx.Send(c, http.StatusCreated, "Patient registered successfully", result)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	result, err := h.Service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpx.SendError(c, err)
	}

	h.setAuthCookies(c, result)
	return httpx.Send(c, http.StatusOK, "Login successful", result)
}

func (h *AuthHandler) GetMe(c echo.Context) error {
	user, ok := authmw.UserFromContext(c)
	if !ok {
		return httpx.SendError(c, apperrors.New(apperrors.CodeUnauthorized, "Unauthorized"))
	}

	result, err := h.Service.GetMe(c.Request().Context(), user.UserID)
	if err != nil {
		return httpx.SendError(c, err)
	}
	return httpx.Send(c, http.StatusOK, "User retrieved successfully", result)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := credentials.FirstNonEmpty(c, credentials.RefreshTokenSources()...)
	if refreshToken == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeUnauthorized, "Missing refresh or session token"))
	}
	sessionToken, err := h.Resolver.ResolveSessionToken(c)
	if err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeUnauthorized, "Missing refresh or session token"))
	}

	result, err := h.Service.Refresh(c.Request().Context(), refreshToken, sessionToken)
	if err != nil {
		return httpx.SendError(c, err)
	}

	h.setAuthCookies(c, result)
	return httpx.Send(c, http.StatusOK, "Tokens refreshed successfully", result)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	sessionToken, err := h.Resolver.ResolveSessionToken(c)
	if err != nil {
		return httpx.SendError(c, err)
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "oldPassword and newPassword are required"))
	}

	result, err := h.Service.ChangePassword(c.Request().Context(), sessionToken, req.OldPassword, req.NewPassword)
	if err != nil {
		return httpx.SendError(c, err)
	}

	h.setAuthCookies(c, result)
	return httpx.Send(c, http.StatusOK, "Password changed successfully", result)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	sessionToken, err := h.Resolver.ResolveSessionToken(c)
	if err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeUnauthorized, "No session token found"))
	}

	// Cookies are cleared whatever the provider says; the client's credentials
	// are gone either way.
	logoutErr := h.Service.Logout(c.Request().Context(), sessionToken)
	h.clearAuthCookies(c)
	if logoutErr != nil {
		return httpx.SendError(c, logoutErr)
	}
	return httpx.Send(c, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	if err := h.Service.VerifyEmail(c.Request().Context(), req.Email, req.OTP); err != nil {
		return httpx.SendError(c, err)
	}
	return httpx.Send(c, http.StatusOK, "Email verified successfully", nil)
}

func (h *AuthHandler) ForgetPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	if err := h.Service.ForgetPassword(c.Request().Context(), req.Email); err != nil {
		return httpx.SendError(c, err)
	}
	return httpx.Send(c, http.StatusOK, "Password reset email sent successfully", nil)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.SendError(c, apperrors.New(apperrors.CodeBadRequest, "Invalid request body"))
	}

	if err := h.Service.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		return httpx.SendError(c, err)
	}
	return httpx.Send(c, http.StatusOK, "Password reset successfully", nil)
}
