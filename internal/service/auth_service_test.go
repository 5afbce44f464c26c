package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository/memory"
	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store, *invalidationCounter) {
	store := newSeededStore(t)
	counter := &invalidationCounter{}
	svc := NewAuthService(
		memory.NewUserRepository(store),
		memory.NewSessionRepository(store),
		memory.NewTeacherRepository(store),
		memory.NewWalletRepository(store),
		counter,
		nil,
		nil,
		AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "discipulus-test"},
	)
	return svc, store, counter
}

func TestAuthLoginDemoStudent(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: seed.DemoStudentEmail, Password: seed.DemoPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seed.DemoStudentID, claims.UserID)
	assert.Empty(t, claims.TeacherID)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthLoginTeacherCarriesTeacherID(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: seed.DemoTeacherEmail, Password: seed.DemoPassword})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsTeacher())
	assert.Equal(t, seed.DemoTeacherID, claims.TeacherID)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: seed.DemoStudentEmail, Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterStudent(t *testing.T) {
	svc, _, counter := newAuthFixture(t)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "  Ana Costa ",
		Email:    "Ana.Costa@Example.com",
		Password: "segredo1",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Costa", resp.User.Name)
	assert.Equal(t, "ana.costa@example.com", resp.User.Email)
	assert.Nil(t, resp.User.TeacherID)
	assert.Zero(t, counter.calls)

	again, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana.costa@example.com", Password: "segredo1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Outro João",
		Email:    seed.DemoStudentEmail,
		Password: "segredo1",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterTeacherCreatesProfileAndWallet(t *testing.T) {
	svc, store, counter := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name:     "Paulo Mendes",
		Email:    "paulo.mendes@example.com",
		Password: "segredo1",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.TeacherID)
	assert.Equal(t, 1, counter.calls)

	profile, err := memory.NewTeacherRepository(store).FindProfile(ctx, *resp.User.TeacherID)
	require.NoError(t, err)
	assert.False(t, profile.Verified)
	assert.Equal(t, float64(newTeacherHourlyRate), profile.HourlyRate)
	assert.Empty(t, profile.Availability)

	wallet, err := memory.NewWalletRepository(store).Get(ctx, *resp.User.TeacherID)
	require.NoError(t, err)
	assert.Zero(t, wallet.Balance)
}

func TestAuthRegisterTeacherLinksExistingRecord(t *testing.T) {
	svc, store, counter := newAuthFixture(t)
	ctx := context.Background()

	existing := &models.TeacherProfile{
		Teacher: models.Teacher{ID: "42", Name: "Helena Prado", HourlyRate: 55, Verified: true},
		Email:   "helena.prado@example.com",
	}
	require.NoError(t, memory.NewTeacherRepository(store).CreateProfile(ctx, existing))

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Name:     "Helena Prado",
		Email:    "HELENA.PRADO@example.com",
		Password: "segredo1",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.TeacherID)
	assert.Equal(t, "42", *resp.User.TeacherID)
	assert.Zero(t, counter.calls)
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, models.LoginRequest{Email: seed.DemoStudentEmail, Password: seed.DemoPassword})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.ValidateToken(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	err = svc.Logout(ctx, &models.JWTClaims{})
	require.Error(t, err)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: seed.DemoStudentEmail, Password: seed.DemoPassword})
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), resp.AccessToken+"x")
	require.Error(t, err)

	other := NewAuthService(nil, nil, nil, nil, nil, nil, nil, AuthConfig{AccessTokenSecret: "other-secret"})
	_, err = other.ValidateToken(context.Background(), resp.AccessToken)
	require.Error(t, err)
}

func TestAuthCleanupSessions(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: seed.DemoStudentEmail, Password: seed.DemoPassword})
	require.NoError(t, err)

	removed, err := svc.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	removed, err = svc.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestAuthMe(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	info, err := svc.Me(context.Background(), seed.DemoTeacherUser)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", info.Name)
	require.NotNil(t, info.TeacherID)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
