package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/altibbe/hedamo/internal/auth/domain"
	"github.com/altibbe/hedamo/internal/auth/repository"
	"github.com/altibbe/hedamo/internal/clock"
	"github.com/altibbe/hedamo/internal/config"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// Anchored at the real present so issued tokens pass exp validation.
	clk := clock.NewFakeClock(time.Now().UTC().Truncate(time.Second))

	svc := New(Params{
		Cfg: config.Config{
			AuthJWTSecret: "test-secret",
			AuthTokenTTL:  time.Hour,
		},
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, clk
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	company := "Acme Ltd"
	registered, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "  Jamie@Example.com ",
		Password: "hunter2hunter2",
		Name:     "Jamie",
		Company:  &company,
	})
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	identity, err := svc.Authenticate(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.UserID)
	assert.Equal(t, "jamie@example.com", identity.Email)

	loggedIn, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "jamie@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	view, err := svc.CurrentUser(ctx, identity.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie", view.Name)
	require.NotNil(t, view.Company)
	assert.Equal(t, "Acme Ltd", *view.Company)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "not-an-email", Password: "hunter2hunter2", Name: "Jamie"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "short", Name: "Jamie"})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "hunter2hunter2", Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "hunter2hunter2", Name: "Jamie"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "JAMIE@example.com", Password: "hunter2hunter2", Name: "Jamie"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "hunter2hunter2", Name: "Jamie"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "jamie@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenClaimsFollowClock(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "hunter2hunter2", Name: "Jamie"})
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(result.Token, &claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, clk.Now().UTC().Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, clk.Now().UTC().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestAuthenticate_RejectsForgedToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not.a.token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	other, _ := newTestService(t)
	other.cfg.AuthJWTSecret = "different-secret"
	result, err := other.Register(ctx, domain.RegisterRequest{Email: "jamie@example.com", Password: "hunter2hunter2", Name: "Jamie"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
