package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/stajlink/internal/app/models"
)

func testService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:         "test-secret",
		AccessTokenExp:    time.Hour,
		RefreshTokenExp:   24 * time.Hour,
		CompanySessionExp: 2 * time.Hour,
		TokenIssuer:       "stajlink-test",
	})
}

func testUser() *models.User {
	no := "20201234"
	return &models.User{
		ID:        7,
		Email:     "ogrenci@school.edu.tr",
		RoleType:  models.RoleStudent,
		StudentNo: &no,
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	service := testService()

	access, refresh, expiresIn, refreshExpiresIn, err := service.GenerateTokenPair(testUser())
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)
	assert.Equal(t, 3600, expiresIn)
	assert.Equal(t, 86400, refreshExpiresIn)

	claims, err := service.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ogrenci@school.edu.tr", claims.Email)
	assert.Equal(t, "STUDENT", claims.RoleType)
}

func TestValidateToken_WrongKey(t *testing.T) {
	access, _, _, _, err := testService().GenerateTokenPair(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{
		SecretKey:      "different-secret",
		AccessTokenExp: time.Hour,
	})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: -time.Minute,
	})
	access, _, _, _, err := service.GenerateTokenPair(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCompanySessionRoundTrip(t *testing.T) {
	service := testService()

	token, expiresIn, err := service.GenerateCompanySession(3)
	require.NoError(t, err)
	assert.Equal(t, 7200, expiresIn)

	claims, err := service.ValidateCompanySession(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.CompanyID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	service := testService()

	access, _, _, _, err := service.GenerateTokenPair(testUser())
	require.NoError(t, err)
	_, err = service.ValidateCompanySession(access)
	assert.ErrorIs(t, err, ErrWrongAudience)

	session, _, err := service.GenerateCompanySession(3)
	require.NoError(t, err)
	_, err = service.ValidateToken(session)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	// A bare token without the scheme is passed through
	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.True(t, CheckPassword(hash, "Password123"))
	assert.False(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword("", "Password123"))
}
