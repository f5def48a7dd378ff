package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/hash"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/logging"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/otp"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

// Notifier delivers outbound messages (OTP mail-outs). Satisfied by
// notifier.Producer in production and by a recording fake in tests.
type Notifier interface {
	Publish(ctx context.Context, key string, event any) error
}

// Provider owns the identity, session and credential records. The rest of the
// application treats it as the external auth provider and composes its
// primitives; it never reaches into these tables directly.
type Provider struct {
	DB         *gorm.DB
	OTPs       otp.Store
	Notifier   Notifier
	SessionTTL time.Duration
	OTPTTL     time.Duration
}

func (p *Provider) SignUp(ctx context.Context, name, email, password string) (*models.User, *models.Session, error) {
	var existing models.User
	err := p.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, nil, apperrors.New(apperrors.CodeConflict, "User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check existing user")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to hash password")
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RolePatient,
		Status:       models.StatusActive,
	}
	if err := p.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeConflict, "User with this email already exists")
	}

	session, err := p.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := p.SendOTP(ctx, user.Email, PurposeEmailVerification); err != nil {
		logging.FromContext(ctx).Warn("verification otp not sent", "email", user.Email, "error", err)
	}

	return &user, session, nil
}

func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := p.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid email or password")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load user")
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid email or password")
	}
	return &user, nil
}

func (p *Provider) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := p.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load user")
	}
	return &user, nil
}

func (p *Provider) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := p.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load user")
	}
	return &user, nil
}

// DeleteUser removes the identity and its sessions. Used as the compensating
// action when registration fails after the identity write.
func (p *Provider) DeleteUser(ctx context.Context, id string) error {
	if err := p.DB.WithContext(ctx).Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete user sessions")
	}
	if err := p.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete user")
	}
	return nil
}

func (p *Provider) ChangePassword(ctx context.Context, sessionToken, currentPassword, newPassword string, revokeOthers bool) (*models.User, error) {
	session, err := p.SessionByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	user, err := p.UserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, currentPassword) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "Current password is incorrect")
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to hash password")
	}
	updates := map[string]any{
		"password_hash":        pwHash,
		"need_password_change": false,
	}
	if err := p.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to update password")
	}

	if revokeOthers {
		if err := p.RevokeUserSessions(ctx, user.ID, session.Token); err != nil {
			return nil, err
		}
	}

	user.PasswordHash = pwHash
	user.NeedPasswordChange = false
	return user, nil
}
