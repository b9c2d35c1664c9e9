package model

import (
	"github.com/google/uuid"
)

type TokenClaims struct {
	DonorID uuid.UUID `json:"donor_id"`
	Email   string    `json:"email"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	Phone      string `json:"phone" binding:"required,max=20"`
	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
	Region     string `json:"region" binding:"required,max=100"`
	City       string `json:"city" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
