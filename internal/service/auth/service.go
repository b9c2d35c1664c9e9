package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeevanrakshak/donor-api/internal/email"
	"github.com/jeevanrakshak/donor-api/internal/model"
	"github.com/jeevanrakshak/donor-api/internal/repository"
	"github.com/jeevanrakshak/donor-api/pkg/auth"
	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
	"github.com/jeevanrakshak/donor-api/pkg/logger"
)

type Service struct {
	donors   repository.DonorRepository
	jwt      auth.JWTService
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(donors repository.DonorRepository, jwt auth.JWTService, emailSvc email.Service, logger *logger.Logger) *Service {
	return &Service{
		donors:   donors,
		jwt:      jwt,
		emailSvc: emailSvc,
		logger:   logger,
	}
}

// Register creates a donor profile and returns a token pair. New donors start
// available so they are eligible for fan-out immediately.
func (s *Service) Register(ctx context.Context, form *model.RegisterRequest) (*model.Donor, *model.TokenResponse, error) {
	normalized := strings.ToLower(strings.TrimSpace(form.Email))

	if existing, err := s.donors.GetByEmail(ctx, normalized); err == nil && existing != nil {
		return nil, nil, apperrors.NewBadRequest("email already registered", nil)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("failed to check existing donor: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	donor := &model.Donor{
		Name:         form.Name,
		Email:        normalized,
		Phone:        form.Phone,
		BloodGroup:   model.BloodGroup(form.BloodGroup),
		Region:       form.Region,
		City:         form.City,
		Availability: true,
		PasswordHash: string(hash),
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, nil, fmt.Errorf("failed to create donor: %w", err)
	}

	if err := s.emailSvc.SendWelcome(ctx, donor.Email, donor.Name); err != nil {
		s.logger.Error(err, "Failed to send welcome email",
			"donor_id", donor.ID.String())
	}

	tokens, err := s.issueTokens(donor)
	if err != nil {
		return nil, nil, err
	}
	return donor, tokens, nil
}

func (s *Service) Login(ctx context.Context, form *model.LoginRequest) (*model.Donor, *model.TokenResponse, error) {
	normalized := strings.ToLower(strings.TrimSpace(form.Email))

	donor, err := s.donors.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.Unauthorized(nil)
		}
		return nil, nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(form.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized(nil)
	}

	tokens, err := s.issueTokens(donor)
	if err != nil {
		return nil, nil, err
	}
	return donor, tokens, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	donor, err := s.donors.Get(ctx, claims.DonorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthorized(nil)
		}
		return nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	return s.issueTokens(donor)
}

func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) issueTokens(donor *model.Donor) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(donor)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(donor)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.AccessExpiry().Seconds()),
	}, nil
}
