package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

func (p *Provider) CreateSession(ctx context.Context, userID string) (*models.Session, error) {
	now := time.Now()
	session := models.Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresIn: int64(p.SessionTTL.Seconds()),
		CreatedAt: now,
		ExpiresAt: now.Add(p.SessionTTL),
	}
	if err := p.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create session")
	}
	return &session, nil
}

// SessionByToken returns the session only when it exists and is unexpired.
func (p *Provider) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := p.DB.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired session")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load session")
	}
	return &session, nil
}

// NewestSessionForUser returns the most recently created live session for a
// user, if any. Used by the access-token fallback path of the resolver.
func (p *Provider) NewestSessionForUser(ctx context.Context, userID string) (*models.Session, error) {
	var session models.Session
	err := p.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "No live session for user")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load session")
	}
	return &session, nil
}

// ExtendSession pushes the expiry forward by the lifetime granted at creation.
// The token value is preserved so the client keeps a stable session handle.
func (p *Provider) ExtendSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := p.DB.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "Invalid or expired session")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to load session")
	}

	session.ExpiresAt = time.Now().Add(time.Duration(session.ExpiresIn) * time.Second)
	if err := p.DB.WithContext(ctx).Model(&models.Session{}).
		Where("token = ?", token).
		Update("expires_at", session.ExpiresAt).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to extend session")
	}
	return &session, nil
}

func (p *Provider) SignOut(ctx context.Context, token string) error {
	if err := p.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to delete session")
	}
	return nil
}

// RevokeUserSessions deletes every session of a user except the named token.
// An empty exceptToken revokes all of them.
func (p *Provider) RevokeUserSessions(ctx context.Context, userID, exceptToken string) error {
	q := p.DB.WithContext(ctx).Where("user_id = ?", userID)
	if exceptToken != "" {
		q = q.Where("token <> ?", exceptToken)
	}
	if err := q.Delete(&models.Session{}).Error; err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to revoke sessions")
	}
	return nil
}
