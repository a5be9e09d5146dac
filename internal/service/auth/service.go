package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/auth"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

type Service struct {
	users repository.UserRepository
	jwt   auth.JWTService
}

func NewService(users repository.UserRepository, jwt auth.JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if user == nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	return s.issueTokens(user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	userID, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if user == nil {
		return nil, errors.Unauthorized("invalid refresh token")
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
