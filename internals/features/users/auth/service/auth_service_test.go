package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/configs"
	"garderie_backend/internals/features/users/auth/dto"
	authModel "garderie_backend/internals/features/users/auth/model"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/testutil"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := New(db, zap.NewNop(), configs.AuthConfig{
		JWTSecret:        testSecret,
		JWTExpire:        time.Hour,
		MaxLoginAttempts: 3,
		LockDuration:     2 * time.Hour,
	})
	svc.Now = func() time.Time { return fixedNow }
	return svc, db
}

func login(svc *Service, email, password string) (*dto.LoginResponse, error) {
	return svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: password})
}

func reload(t *testing.T, db *gorm.DB, u *userModel.UserModel) *userModel.UserModel {
	t.Helper()
	var got userModel.UserModel
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	return &got
}

func TestLoginIssuesTokenAndStampsLastLogin(t *testing.T) {
	svc, db := newService(t)
	u := testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")

	resp, err := login(svc, "  AWA@garderie.test ", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, fixedNow.Add(time.Hour), resp.ExpiresAt)

	assert.NotEmpty(t, resp.Token)

	got := reload(t, db, u)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(fixedNow))
}

func TestLoginRejectsBadInput(t *testing.T) {
	svc, db := newService(t)
	testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")

	_, err := login(svc, "", "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = login(svc, "nobody@garderie.test", "password123")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, db := newService(t)
	u := testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")
	require.NoError(t, db.Model(u).Update("is_active", false).Error)

	_, err := login(svc, "awa@garderie.test", "password123")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUnauthorized, ae.Kind)
	assert.Equal(t, MsgAccountDisabled, ae.Message)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, db := newService(t)
	u := testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")

	for i := 0; i < 3; i++ {
		_, err := login(svc, "awa@garderie.test", "wrong")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "attempt %d", i+1)
	}
	got := reload(t, db, u)
	assert.Equal(t, 3, got.LoginAttempts)
	require.NotNil(t, got.LockUntil)

	_, err := login(svc, "awa@garderie.test", "password123")
	assert.True(t, apperr.Is(err, apperr.KindLocked), "correct password is refused while locked")

	// once the lock expires the count starts over
	svc.Now = func() time.Time { return fixedNow.Add(3 * time.Hour) }
	_, err = login(svc, "awa@garderie.test", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	got = reload(t, db, u)
	assert.Equal(t, 1, got.LoginAttempts)
	assert.Nil(t, got.LockUntil)

	_, err = login(svc, "awa@garderie.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, 0, reload(t, db, u).LoginAttempts)
}

func TestChangePassword(t *testing.T) {
	svc, db := newService(t)
	u := testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpass1"}))

	_, err = login(svc, "awa@garderie.test", "password123")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = login(svc, "awa@garderie.test", "newpass1")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, db := newService(t)
	u := testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")

	name, phone := " Awa Mensah ", "+22891234567"
	resp, err := svc.UpdateProfile(context.Background(), u.ID, dto.UpdateProfileRequest{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Awa Mensah", resp.Name)
	require.NotNil(t, resp.Phone)
	assert.Equal(t, phone, *resp.Phone)
	assert.Equal(t, "staff", resp.Role)
}

func TestLogoutStoresDigestOnce(t *testing.T) {
	svc, db := newService(t)
	svc.Now = func() time.Time { return time.Now().UTC() }
	testutil.CreateUser(t, db, "Awa", "awa@garderie.test", "staff")

	resp, err := login(svc, "awa@garderie.test", "password123")
	require.NoError(t, err)

	claims, err := helper.ParseAccessToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.ID)
	assert.Equal(t, "staff", claims.Role)

	ctx := context.Background()
	require.NoError(t, svc.Logout(ctx, resp.Token))
	require.NoError(t, svc.Logout(ctx, resp.Token))

	var rows []authModel.TokenBlacklist
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, helper.TokenDigest(testSecret, resp.Token), rows[0].Token)
	assert.WithinDuration(t, resp.ExpiresAt, rows[0].ExpiredAt, time.Second)
}
