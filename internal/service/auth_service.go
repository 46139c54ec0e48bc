package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodgram/internal/auth"
	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	revoked  auth.RevocationStore
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	revoked auth.RevocationStore,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		revoked:  revoked,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if u == nil {
		s.logger.Debug().Msg("login for unknown email")
		return nil, model.ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(u.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("failed to check password")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if !ok {
		s.logger.Debug().Int64("user_id", u.ID).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	if u.IsBlocked {
		s.logger.Warn().Int64("user_id", u.ID).Msg("login attempt on blocked account")
		return nil, model.ErrAccountBlocked
	}

	token, claims, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	s.logger.Info().
		Int64("user_id", u.ID).
		Str("jti", claims.ID).
		Msg("token issued")

	return &model.TokenResponse{AuthToken: token}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return model.ErrUnauthorised
	}

	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoked.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}

	metrics.RecordTokenRevocation()
	s.logger.Info().Str("jti", claims.ID).Str("subject", claims.Subject).Msg("token revoked")

	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			s.logger.Debug().Err(err).Msg("rejected token")
			return nil, nil, model.ErrUnauthorised
		}
		return nil, nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if revoked {
		s.logger.Debug().Str("jti", claims.ID).Msg("revoked token used")
		return nil, nil, model.ErrUnauthorised
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, model.ErrUnauthorised
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if u == nil || u.IsBlocked {
		return nil, nil, model.ErrUnauthorised
	}

	return u, claims, nil
}
