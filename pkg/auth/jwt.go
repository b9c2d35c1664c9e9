package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jeevanrakshak/donor-api/internal/config"
	"github.com/jeevanrakshak/donor-api/internal/model"
)

type JWTService interface {
	GenerateAccessToken(donor *model.Donor) (string, error)
	GenerateRefreshToken(donor *model.Donor) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
	AccessExpiry() time.Duration
}

type jwtService struct {
	secret        []byte
	refreshSecret []byte
	expiry        time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(cfg config.JWTConfig) JWTService {
	return &jwtService{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(cfg.RefreshSecret),
		expiry:        time.Duration(cfg.ExpiryHours) * time.Hour,
		refreshExpiry: time.Duration(cfg.RefreshExpiryHours) * time.Hour,
	}
}

func (s *jwtService) GenerateAccessToken(donor *model.Donor) (string, error) {
	return s.generate(donor, s.secret, s.expiry)
}

func (s *jwtService) GenerateRefreshToken(donor *model.Donor) (string, error) {
	return s.generate(donor, s.refreshSecret, s.refreshExpiry)
}

func (s *jwtService) generate(donor *model.Donor, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"donor_id": donor.ID.String(),
		"email":    donor.Email,
		"iat":      now.Unix(),
		"exp":      now.Add(expiry).Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenStr string) (*model.TokenClaims, error) {
	return s.validate(tokenStr, s.secret)
}

func (s *jwtService) ValidateRefreshToken(tokenStr string) (*model.TokenClaims, error) {
	return s.validate(tokenStr, s.refreshSecret)
}

func (s *jwtService) validate(tokenStr string, secret []byte) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	donorID, ok := claims["donor_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	parsedID, err := uuid.Parse(donorID)
	if err != nil {
		return nil, fmt.Errorf("invalid donor ID in token")
	}

	return &model.TokenClaims{
		DonorID: parsedID,
		Email:   email,
	}, nil
}

func (s *jwtService) AccessExpiry() time.Duration {
	return s.expiry
}
