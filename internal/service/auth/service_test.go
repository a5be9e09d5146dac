package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/auth"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, auth.JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]*model.User{
		"doctor@implaeden.com": {
			ID:           1,
			Email:        "doctor@implaeden.com",
			PasswordHash: string(hash),
		},
	}}
	jwtSvc := auth.NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewService(users, jwtSvc), jwtSvc
}

func TestLogin(t *testing.T) {
	svc, jwtSvc := newTestService(t)

	tokens, err := svc.Login(context.Background(), "doctor@implaeden.com", "secreto123")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := jwtSvc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "doctor@implaeden.com", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "doctor@implaeden.com", "incorrecto")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nadie@implaeden.com", "secreto123")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}

func TestRefresh(t *testing.T) {
	svc, jwtSvc := newTestService(t)

	refresh, err := jwtSvc.GenerateRefreshToken(1)
	require.NoError(t, err)

	tokens, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestRefreshRejectsInvalidToken(t *testing.T) {
	svc, jwtSvc := newTestService(t)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	// Token for a user that no longer exists.
	refresh, err := jwtSvc.GenerateRefreshToken(99)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), refresh)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}
