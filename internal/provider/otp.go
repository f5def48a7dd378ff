package provider

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/hash"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

const (
	PurposeEmailVerification = "email-verification"
	PurposeForgetPassword    = "forget-password"
)

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpSubject(purpose string) string {
	if purpose == PurposeEmailVerification {
		return "Verify your email"
	}
	return fmt.Sprintf("Your OTP code (%s)", purpose)
}

// SendOTP stores a one-time code and hands the mail-out to the notifier.
func (p *Provider) SendOTP(ctx context.Context, email, purpose string) error {
	code, err := generateOTP()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to generate OTP")
	}
	if err := p.OTPs.Put(ctx, email, purpose, code, p.OTPTTL); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to store OTP")
	}

	event := map[string]any{
		"type":    "otp",
		"email":   email,
		"otp":     code,
		"purpose": purpose,
		"subject": otpSubject(purpose),
	}
	if err := p.Notifier.Publish(ctx, email, event); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to publish OTP notification")
	}
	return nil
}

// VerifyOTP consumes the stored code; a used or expired code never matches twice.
func (p *Provider) VerifyOTP(ctx context.Context, email, purpose, code string) error {
	stored, err := p.OTPs.Get(ctx, email, purpose)
	if err != nil || stored != code {
		return apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired OTP")
	}
	return p.OTPs.Delete(ctx, email, purpose)
}

func (p *Provider) VerifyEmail(ctx context.Context, email, code string) error {
	if err := p.VerifyOTP(ctx, email, PurposeEmailVerification, code); err != nil {
		return err
	}
	if err := p.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("email_verified", true).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to mark email verified")
	}
	return nil
}

// ResetPassword verifies the forget-password OTP, replaces the credential and
// revokes every session so the user re-authenticates everywhere.
func (p *Provider) ResetPassword(ctx context.Context, email, code, newPassword string) (*models.User, error) {
	if err := p.VerifyOTP(ctx, email, PurposeForgetPassword, code); err != nil {
		return nil, err
	}
	user, err := p.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
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
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to reset password")
	}
	if err := p.RevokeUserSessions(ctx, user.ID, ""); err != nil {
		return nil, err
	}

	user.PasswordHash = pwHash
	user.NeedPasswordChange = false
	return user, nil
}
