package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/models"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/otp"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/provider"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/internal/tokens"
	"github.com/FahimMuntasir0417/PH-healthcare-3rd/pkg/apperrors"
)

var (
	svcAccessSecret  = []byte("svc-access-secret")
	svcRefreshSecret = []byte("svc-refresh-secret")
)

type recordingNotifier struct {
	events []map[string]any
}

func (r *recordingNotifier) Publish(ctx context.Context, key string, event any) error {
	if m, ok := event.(map[string]any); ok {
		r.events = append(r.events, m)
	}
	return nil
}

func (r *recordingNotifier) lastOTP(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.events)
	code, ok := r.events[len(r.events)-1]["otp"].(string)
	require.True(t, ok)
	return code
}

func newTestService(t *testing.T) (*AuthService, *recordingNotifier) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}, &models.Patient{}))

	notifier := &recordingNotifier{}
	p := &provider.Provider{
		DB:         db,
		OTPs:       otp.NewMemoryStore(),
		Notifier:   notifier,
		SessionTTL: time.Hour,
		OTPTTL:     5 * time.Minute,
	}
	return &AuthService{
		DB:            db,
		Provider:      p,
		AccessSecret:  svcAccessSecret,
		RefreshSecret: svcRefreshSecret,
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, notifier
}

func TestRegisterSuccess(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	result, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, models.RolePatient, result.User.Role)
	require.NotNil(t, result.Patient)
	require.Equal(t, result.User.ID, result.Patient.UserID)
	require.Equal(t, "alice@example.com", result.Patient.Email)
	require.NotEmpty(t, result.SessionToken)

	claims, ok := tokens.Verify(result.AccessToken, svcAccessSecret)
	require.True(t, ok)
	require.Equal(t, result.User.ID, claims.UserID)

	claims, ok = tokens.Verify(result.RefreshToken, svcRefreshSecret)
	require.True(t, ok)
	require.Equal(t, result.User.ID, claims.UserID)

	// The two tokens are bound to their own secrets.
	_, ok = tokens.Verify(result.AccessToken, svcRefreshSecret)
	require.False(t, ok)
	_, ok = tokens.Verify(result.RefreshToken, svcAccessSecret)
	require.False(t, ok)
}

func TestRegisterRollsBackIdentityOnProfileFailure(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	// Occupy the patient email so the profile insert fails after the identity
	// has been created.
	require.NoError(t, s.DB.Create(&models.Patient{
		ID:     uuid.NewString(),
		UserID: uuid.NewString(),
		Name:   "Existing",
		Email:  "alice@example.com",
	}).Error)

	_, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	require.Equal(t, "Failed to register patient", apperrors.MessageOf(err))

	// Nothing survives: no user, no session.
	_, err = s.Provider.UserByEmail(ctx, "alice@example.com")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	var sessions int64
	require.NoError(t, s.DB.Model(&models.Session{}).Count(&sessions).Error)
	require.Zero(t, sessions)
}

func TestRegisterDuplicateEmailLeavesNoOrphans(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = s.Register(ctx, "Imposter", "alice@example.com", "different")
	require.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	var patients int64
	require.NoError(t, s.DB.Model(&models.Patient{}).Count(&patients).Error)
	require.EqualValues(t, 1, patients)
}

func TestLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionToken)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)

	_, err = s.Login(ctx, "alice@example.com", "wrongpass")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestLoginBlockedAndDeleted(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	result, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	sessionsBefore := countSessions(t, s.DB)

	require.NoError(t, s.DB.Model(&models.User{}).
		Where("id = ?", result.User.ID).
		Update("status", models.StatusBlocked).Error)
	_, err = s.Login(ctx, "alice@example.com", "password123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	require.Equal(t, "Your account is blocked. Please contact support.", apperrors.MessageOf(err))

	require.NoError(t, s.DB.Model(&models.User{}).
		Where("id = ?", result.User.ID).
		Update("status", models.StatusDeleted).Error)
	_, err = s.Login(ctx, "alice@example.com", "password123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	require.Equal(t, "User is deleted", apperrors.MessageOf(err))

	// Rejected logins never create sessions.
	require.Equal(t, sessionsBefore, countSessions(t, s.DB))
}

func countSessions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Session{}).Count(&n).Error)
	return n
}

func TestRefreshIssuesNewPairAndExtendsSession(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Pull the window in so the extension is observable.
	require.NoError(t, s.DB.Model(&models.Session{}).
		Where("token = ?", registered.SessionToken).
		Update("expires_at", time.Now().Add(time.Minute)).Error)

	result, err := s.Refresh(ctx, registered.RefreshToken, registered.SessionToken)
	require.NoError(t, err)
	require.Equal(t, registered.SessionToken, result.SessionToken)

	claims, ok := tokens.Verify(result.AccessToken, svcAccessSecret)
	require.True(t, ok)
	require.Equal(t, registered.User.ID, claims.UserID)
	_, ok = tokens.Verify(result.RefreshToken, svcRefreshSecret)
	require.True(t, ok)

	var session models.Session
	require.NoError(t, s.DB.Where("token = ?", registered.SessionToken).First(&session).Error)
	require.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
}

func TestRefreshRejectsForeignRefreshToken(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	alice, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	bob, err := s.Register(ctx, "Bob", "bob@example.com", "password123")
	require.NoError(t, err)

	var before models.Session
	require.NoError(t, s.DB.Where("token = ?", alice.SessionToken).First(&before).Error)

	// Bob's refresh token does not work against Alice's session.
	_, err = s.Refresh(ctx, bob.RefreshToken, alice.SessionToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	require.Equal(t, "Invalid refresh token", apperrors.MessageOf(err))

	// The failed attempt leaves the session window untouched.
	var after models.Session
	require.NoError(t, s.DB.Where("token = ?", alice.SessionToken).First(&after).Error)
	require.Equal(t, before.ExpiresAt.Unix(), after.ExpiresAt.Unix())
}

func TestRefreshRejectsAccessTokenAsRefreshToken(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = s.Refresh(ctx, registered.AccessToken, registered.SessionToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	require.Equal(t, "Invalid refresh token", apperrors.MessageOf(err))
}

func TestRefreshRequiresLiveSession(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx, registered.SessionToken))

	_, err = s.Refresh(ctx, registered.RefreshToken, registered.SessionToken)
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestChangePassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	result, err := s.ChangePassword(ctx, registered.SessionToken, "password123", "newpassword1")
	require.NoError(t, err)
	require.Equal(t, registered.SessionToken, result.SessionToken)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)

	_, err = s.Login(ctx, "alice@example.com", "password123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = s.Login(ctx, "alice@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestGetMe(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	result, err := s.GetMe(ctx, registered.User.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", result.User.Email)
	require.NotNil(t, result.Patient)
	require.Equal(t, registered.Patient.ID, result.Patient.ID)

	_, err = s.GetMe(ctx, uuid.NewString())
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestForgetPasswordGates(t *testing.T) {
	s, notifier := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Fresh accounts have an unverified email.
	err = s.ForgetPassword(ctx, "alice@example.com")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	require.Equal(t, "Email is not verified", apperrors.MessageOf(err))

	require.NoError(t, s.VerifyEmail(ctx, "alice@example.com", notifier.lastOTP(t)))
	require.NoError(t, s.ForgetPassword(ctx, "alice@example.com"))

	require.NoError(t, s.DB.Model(&models.User{}).
		Where("id = ?", registered.User.ID).
		Update("status", models.StatusBlocked).Error)
	err = s.ForgetPassword(ctx, "alice@example.com")
	require.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	require.Equal(t, "User is blocked", apperrors.MessageOf(err))

	err = s.ForgetPassword(ctx, "nobody@example.com")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestResetPasswordFlow(t *testing.T) {
	s, notifier := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, s.VerifyEmail(ctx, "alice@example.com", notifier.lastOTP(t)))
	require.NoError(t, s.ForgetPassword(ctx, "alice@example.com"))

	code := notifier.lastOTP(t)
	require.Error(t, s.ResetPassword(ctx, "alice@example.com", "999999x", "resetpass1"))
	require.NoError(t, s.ResetPassword(ctx, "alice@example.com", code, "resetpass1"))

	_, err = s.Login(ctx, "alice@example.com", "resetpass1")
	require.NoError(t, err)
}

func TestRegisterRollbackFailureSurfacesBothErrors(t *testing.T) {
	errProfile := errors.New("profile write failed")
	errUndo := errors.New("identity delete failed")

	var rb rollback
	rb.add(func(ctx context.Context) error { return errUndo })
	rbErr := rb.run(context.Background())
	require.ErrorIs(t, rbErr, errUndo)

	joined := errors.Join(errProfile, rbErr)
	require.ErrorIs(t, joined, errProfile)
	require.ErrorIs(t, joined, errUndo)
}
