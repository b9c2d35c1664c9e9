package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanrakshak/donor-api/internal/config"
	"github.com/jeevanrakshak/donor-api/internal/model"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "access-secret",
		RefreshSecret:      "refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testConfig())
	donor := &model.Donor{ID: uuid.New(), Email: "asha@example.com"}

	token, err := svc.GenerateAccessToken(donor)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, donor.ID, claims.DonorID)
	assert.Equal(t, donor.Email, claims.Email)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	svc := NewJWTService(testConfig())
	donor := &model.Donor{ID: uuid.New(), Email: "asha@example.com"}

	refresh, err := svc.GenerateRefreshToken(donor)
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err, "tokens signed with the refresh secret must not pass access validation")

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, donor.ID, claims.DonorID)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := NewJWTService(testConfig())
	donor := &model.Donor{ID: uuid.New(), Email: "asha@example.com"}

	token, err := svc.GenerateAccessToken(donor)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.Error(t, err)
}
