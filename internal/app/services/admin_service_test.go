package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

func (s *fakeUserStore) List(ctx context.Context, roleType string, offset uint64, limit int) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, user := range s.users {
		if roleType != "" && string(user.RoleType) != roleType {
			continue
		}
		out = append(out, *user)
	}
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) Update(ctx context.Context, id int64, firstName, lastName *string, isActive *bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if isActive != nil {
		user.IsActive = *isActive
	}
	clone := *user
	return &clone, nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) CountByRole(ctx context.Context, roleType models.RoleType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, user := range s.users {
		if user.RoleType == roleType {
			n++
		}
	}
	return n, nil
}

func (s *fakeTokenStore) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.tokens {
		if stored.userID == userID {
			stored.revoked = true
		}
	}
	return nil
}

func (s *fakeCompanyStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.companies)), nil
}

type fakeStatusCounter struct {
	counts map[string]int64
}

func (s *fakeStatusCounter) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return s.counts, nil
}

type adminFixture struct {
	service *AdminService
	users   *fakeUserStore
	tokens  *fakeTokenStore
}

func newAdminFixture(companies *fakeCompanyStore, apps, logbooks *fakeStatusCounter) *adminFixture {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	return &adminFixture{
		service: NewAdminService(users, tokens, companies, apps, logbooks, zerolog.Nop()),
		users:   users,
		tokens:  tokens,
	}
}

func defaultAdminFixture() *adminFixture {
	return newAdminFixture(newFakeCompanyStore(), &fakeStatusCounter{}, &fakeStatusCounter{})
}

func TestAdminCreateUser_Roles(t *testing.T) {
	fx := defaultAdminFixture()

	advisor, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "danisman@school.edu.tr",
		Password:  "Password123",
		FirstName: "Mehmet",
		LastName:  "Demir",
		RoleType:  "ADVISOR",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADVISOR", advisor.RoleType)
	assert.Nil(t, advisor.StudentNo)

	student, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "ogrenci@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		RoleType:  "STUDENT",
		StudentNo: "20201234",
	})
	require.NoError(t, err)
	require.NotNil(t, student.StudentNo)
	assert.Equal(t, "20201234", *student.StudentNo)
}

func TestAdminCreateUser_Validation(t *testing.T) {
	fx := defaultAdminFixture()

	// Students need a student number
	_, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "ogrenci@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		RoleType:  "STUDENT",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// Other roles must not carry one
	_, err = fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "danisman@school.edu.tr",
		Password:  "Password123",
		FirstName: "Mehmet",
		LastName:  "Demir",
		RoleType:  "ADVISOR",
		StudentNo: "20201234",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "kisi@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ad",
		LastName:  "Soyad",
		RoleType:  "SUPERUSER",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAdminListUsers_RoleFilter(t *testing.T) {
	fx := defaultAdminFixture()

	for _, req := range []*dto.CreateUserRequest{
		{Email: "a@school.edu.tr", Password: "Password123", FirstName: "Ad", LastName: "Soyad", RoleType: "ADVISOR"},
		{Email: "b@school.edu.tr", Password: "Password123", FirstName: "Ad", LastName: "Soyad", RoleType: "STUDENT", StudentNo: "20200001"},
		{Email: "c@school.edu.tr", Password: "Password123", FirstName: "Ad", LastName: "Soyad", RoleType: "STUDENT", StudentNo: "20200002"},
	} {
		_, err := fx.service.CreateUser(context.Background(), req)
		require.NoError(t, err)
	}

	resp, err := fx.service.ListUsers(context.Background(), "STUDENT", 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, int64(2), resp.Pagination.TotalItems)

	resp, err = fx.service.ListUsers(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 3)

	_, err = fx.service.ListUsers(context.Background(), "WIZARD", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAdminUpdateUser_DeactivationRevokesTokens(t *testing.T) {
	fx := defaultAdminFixture()

	created, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "ogrenci@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		RoleType:  "STUDENT",
		StudentNo: "20201234",
	})
	require.NoError(t, err)

	authService := NewAuthService(fx.users, fx.tokens, testJWTService(), zerolog.Nop())
	session, err := authService.Login(context.Background(), &dto.LoginRequest{
		Email:    "ogrenci@school.edu.tr",
		Password: "Password123",
	})
	require.NoError(t, err)

	inactive := false
	newName := "Fatma"
	updated, err := fx.service.UpdateUser(context.Background(), created.ID, &dto.UpdateUserRequest{
		FirstName: &newName,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fatma", updated.FirstName)
	assert.False(t, updated.IsActive)

	_, err = authService.RefreshToken(context.Background(), session.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestAdminUpdateUser_NotFound(t *testing.T) {
	fx := defaultAdminFixture()

	name := "Ad"
	_, err := fx.service.UpdateUser(context.Background(), 42, &dto.UpdateUserRequest{FirstName: &name})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	fx := defaultAdminFixture()

	created, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     "ogrenci@school.edu.tr",
		Password:  "Password123",
		FirstName: "Ayşe",
		LastName:  "Yılmaz",
		RoleType:  "STUDENT",
		StudentNo: "20201234",
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteUser(context.Background(), created.ID))
	_, err = fx.service.GetUser(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAdminStatistics(t *testing.T) {
	companies := newFakeCompanyStore()
	_, err := companies.GetOrCreate(context.Background(), &models.Company{Name: "Acme", TaxNo: "1234567890"})
	require.NoError(t, err)

	fx := newAdminFixture(companies,
		&fakeStatusCounter{counts: map[string]int64{"PENDING": 4, "APPROVED": 2}},
		&fakeStatusCounter{counts: map[string]int64{"WAITING": 2}},
	)

	for _, no := range []string{"20200001", "20200002"} {
		_, err := fx.service.CreateUser(context.Background(), &dto.CreateUserRequest{
			Email:     no + "@school.edu.tr",
			Password:  "Password123",
			FirstName: "Ad",
			LastName:  "Soyad",
			RoleType:  "STUDENT",
			StudentNo: no,
		})
		require.NoError(t, err)
	}

	stats, err := fx.service.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(1), stats.TotalCompanies)
	assert.Equal(t, int64(4), stats.ApplicationsByStatus["PENDING"])
	assert.Equal(t, int64(2), stats.LogbooksByStatus["WAITING"])
}
