package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/logging"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/metrics"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/provider"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/tokens"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

// AuthService composes the auth provider's primitives with local profile
// creation and local token issuance. It owns the rollback policy for
// registration and the refresh protocol.
type AuthService struct {
	DB       *gorm.DB
	Provider *provider.Provider
	Metrics  *metrics.Metrics

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthResult carries everything a handler needs to answer an auth flow:
// the identity, the optional patient profile and the full token triple.
type AuthResult struct {
	User         *models.User    `json:"user"`
	Patient      *models.Patient `json:"patient,omitempty"`
	SessionToken string          `json:"sessionToken"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

func claimsFor(user *models.User) tokens.Claims {
	return tokens.Claims{
		UserID:        user.ID,
		Role:          user.Role,
		Name:          user.Name,
		Email:         user.Email,
		Status:        user.Status,
		IsDeleted:     user.IsDeleted,
		EmailVerified: user.EmailVerified,
	}
}

// issueTokenPair signs the access and refresh tokens from one claim bundle.
// Either both come back or neither does.
func (s *AuthService) issueTokenPair(claims tokens.Claims) (string, string, error) {
	access, err := tokens.Sign(claims, s.AccessSecret, s.AccessTTL)
	if err != nil {
		return "", "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to sign access token")
	}
	refresh, err := tokens.Sign(claims, s.RefreshSecret, s.RefreshTTL)
	if err != nil {
		return "", "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to sign refresh token")
	}
	return access, refresh, nil
}

// Register creates the identity at the provider, then the patient profile.
// If the profile write fails the identity is deleted again before the original
// error surfaces; a failed compensating delete is reported alongside it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	user, session, err := s.Provider.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	var rb rollback
	rb.add(func(ctx context.Context) error {
		return s.Provider.DeleteUser(ctx, user.ID)
	})

	patient := models.Patient{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Name:   name,
		Email:  email,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&patient).Error
	})
	if err != nil {
		if rbErr := rb.run(ctx); rbErr != nil {
			logging.FromContext(ctx).Error("registration rollback failed", "userId", user.ID, "error", rbErr)
			return nil, apperrors.Wrap(errors.Join(err, rbErr), apperrors.CodeInternal,
				"Failed to register patient; rollback of created identity also failed")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "Failed to register patient")
	}

	access, refresh, err := s.issueTokenPair(claimsFor(user))
	if err != nil {
		return nil, err
	}

	s.Metrics.IncRegistrations()
	return &AuthResult{
		User:         user,
		Patient:      &patient,
		SessionToken: session.Token,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Login verifies credentials, gates on identity status, then creates the
// session and token pair. Rejected users get no state at all.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.Provider.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.Metrics.IncLogins("rejected")
		return nil, err
	}
	if user.Status == models.StatusBlocked {
		s.Metrics.IncLogins("blocked")
		return nil, apperrors.New(apperrors.CodeForbidden, "Your account is blocked. Please contact support.")
	}
	if user.IsDeleted || user.Status == models.StatusDeleted {
		s.Metrics.IncLogins("deleted")
		return nil, apperrors.New(apperrors.CodeForbidden, "User is deleted")
	}

	session, err := s.Provider.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	access, refresh, err := s.issueTokenPair(claimsFor(user))
	if err != nil {
		return nil, err
	}

	s.Metrics.IncLogins("success")
	return &AuthResult{
		User:         user,
		SessionToken: session.Token,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh issues a new token pair against a live session. The refresh token's
// embedded user must own the session; the session token survives, its window
// rolls forward by the lifetime granted at creation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, sessionToken string) (*AuthResult, error) {
	session, err := s.Provider.SessionByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	claims, ok := tokens.Verify(refreshToken, s.RefreshSecret)
	if !ok || claims.UserID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid refresh token")
	}
	if claims.UserID != session.UserID {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid refresh token")
	}

	user := &models.User{
		ID:            claims.UserID,
		Name:          claims.Name,
		Email:         claims.Email,
		Role:          claims.Role,
		Status:        claims.Status,
		IsDeleted:     claims.IsDeleted,
		EmailVerified: claims.EmailVerified,
	}
	access, refresh, err := s.issueTokenPair(claimsFor(user))
	if err != nil {
		return nil, err
	}

	extended, err := s.Provider.ExtendSession(ctx, session.Token)
	if err != nil {
		return nil, err
	}

	s.Metrics.IncTokenRefreshes()
	return &AuthResult{
		SessionToken: extended.Token,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// ChangePassword verifies the current credential via the provider, rotates it
// (revoking other sessions) and issues a fresh token pair for this session.
func (s *AuthService) ChangePassword(ctx context.Context, sessionToken, oldPassword, newPassword string) (*AuthResult, error) {
	user, err := s.Provider.ChangePassword(ctx, sessionToken, oldPassword, newPassword, true)
	if err != nil {
		return nil, err
	}

	access, refresh, err := s.issueTokenPair(claimsFor(user))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		SessionToken: sessionToken,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionToken string) error {
	return s.Provider.SignOut(ctx, sessionToken)
}

func (s *AuthService) GetMe(ctx context.Context, userID string) (*AuthResult, error) {
	user, err := s.Provider.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := &AuthResult{User: user}

	var patient models.Patient
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error; err == nil {
		result.Patient = &patient
	}
	return result, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	return s.Provider.VerifyEmail(ctx, email, code)
}

// ForgetPassword issues a reset OTP, but only for an active, verified account.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) error {
	user, err := s.Provider.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsDeleted || user.Status == models.StatusDeleted {
		return apperrors.New(apperrors.CodeForbidden, "User is deleted")
	}
	if user.Status == models.StatusBlocked {
		return apperrors.New(apperrors.CodeForbidden, "User is blocked")
	}
	if !user.EmailVerified {
		return apperrors.New(apperrors.CodeForbidden, "Email is not verified")
	}
	return s.Provider.SendOTP(ctx, email, provider.PurposeForgetPassword)
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := s.Provider.ResetPassword(ctx, email, code, newPassword)
	return err
}
