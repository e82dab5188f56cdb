package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if existing.StudentNo != nil && user.StudentNo != nil && *existing.StudentNo == *user.StudentNo {
			return nil, apperrors.ErrStudentNoExists
		}
	}
	s.nextID++
	clone := *user
	clone.ID = s.nextID
	clone.CreatedAt = time.Now()
	s.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) UpdateLastLogin(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (s *fakeUserStore) deactivate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsActive = false
	}
}

type storedToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*storedToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*storedToken)}
}

func (s *fakeTokenStore) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = &storedToken{userID: userID, expiry: expiryDate}
	return nil
}

func (s *fakeTokenStore) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if stored.revoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.expiry) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return stored.userID, stored.expiry, nil
}

func (s *fakeTokenStore) RevokeToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	stored.revoked = true
	return nil
}

func newAuthService(users *fakeUserStore, tokens *fakeTokenStore) *AuthService {
	return NewAuthService(users, tokens, testJWTService(), zerolog.Nop())
}

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "ogrenci@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		StudentNo: "20201234",
	}
}

func TestAuthRegister_CreatesStudentAndSignsIn(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	service := newAuthService(users, tokens)

	resp, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "STUDENT", resp.User.RoleType)
	require.NotNil(t, resp.User.StudentNo)
	assert.Equal(t, "20201234", *resp.User.StudentNo)

	user, err := users.GetByEmail(context.Background(), "ogrenci@school.edu.tr")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "Password123", user.Password)
	assert.True(t, user.IsActive)

	// The refresh token must be persisted for later rotation
	userID, _, err := tokens.GetTokenByValue(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthRegister_Validation(t *testing.T) {
	service := newAuthService(newFakeUserStore(), newFakeTokenStore())

	req := validRegisterRequest()
	req.Password = "onlyletters"
	_, err := service.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = validRegisterRequest()
	req.Password = "short1"
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = validRegisterRequest()
	req.StudentNo = "1234"
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAuthRegister_DuplicatesRefused(t *testing.T) {
	service := newAuthService(newFakeUserStore(), newFakeTokenStore())

	_, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	_, err = service.Register(context.Background(), validRegisterRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	req := validRegisterRequest()
	req.Email = "baska@school.edu.tr"
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrStudentNoExists)
}

func TestAuthLogin(t *testing.T) {
	users := newFakeUserStore()
	service := newAuthService(users, newFakeTokenStore())

	registered, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	resp, err := service.Login(context.Background(), &dto.LoginRequest{
		Email:    "Ogrenci@School.edu.tr",
		Password: "Password123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	user, err := users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)

	_, err = service.Login(context.Background(), &dto.LoginRequest{
		Email:    "ogrenci@school.edu.tr",
		Password: "WrongPassword1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	users.deactivate(resp.User.ID)
	_, err = service.Login(context.Background(), &dto.LoginRequest{
		Email:    "ogrenci@school.edu.tr",
		Password: "Password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAuthRefreshToken_RotatesAndRevokesOld(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	service := newAuthService(users, tokens)

	registered, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old token cannot be replayed
	_, err = service.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// The rotated token still works
	_, err = service.RefreshToken(context.Background(), refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthRefreshToken_Refusals(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	service := newAuthService(users, tokens)

	_, err := service.RefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = service.RefreshToken(context.Background(), "unknown-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	registered, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	users.deactivate(registered.User.ID)
	_, err = service.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAuthLogout(t *testing.T) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	service := newAuthService(users, tokens)

	registered, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), registered.RefreshToken))
	_, err = service.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// Logging out an unknown token is not an error
	assert.NoError(t, service.Logout(context.Background(), "unknown-token"))
}

func TestAuthGetProfile(t *testing.T) {
	users := newFakeUserStore()
	service := newAuthService(users, newFakeTokenStore())

	registered, err := service.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	profile, err := service.GetProfile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ogrenci@school.edu.tr", profile.Email)

	_, err = service.GetProfile(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
