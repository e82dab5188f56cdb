package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/deniz/stajlink/internal/app/auth"
	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/app/models/dto"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

type fakeApplicationStore struct {
	mu           sync.Mutex
	nextID       int64
	applications map[int64]*models.Application

	// per application: true while the logbook is still WAITING
	logbookWaiting map[int64]bool

	// storage paths of the files attached to each application
	filePaths map[int64][]string
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{
		applications:   make(map[int64]*models.Application),
		logbookWaiting: make(map[int64]bool),
		filePaths:      make(map[int64][]string),
	}
}

func (s *fakeApplicationStore) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	clone := *app
	clone.ID = s.nextID
	clone.Status = models.ApplicationPending
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	s.applications[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *fakeApplicationStore) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, nil
	}
	clone := *app
	return &clone, nil
}

func (s *fakeApplicationStore) List(ctx context.Context, studentID, companyID int64, status string, offset uint64, limit int) ([]models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Application
	for _, app := range s.applications {
		if studentID != 0 && app.StudentID != studentID {
			continue
		}
		if companyID != 0 && app.CompanyID != companyID {
			continue
		}
		if status != "" && string(app.Status) != status {
			continue
		}
		out = append(out, *app)
	}
	return out, int64(len(out)), nil
}

func (s *fakeApplicationStore) HasOverlapping(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.applications {
		if app.StudentID != studentID || app.ID == excludeID {
			continue
		}
		if app.Status != models.ApplicationPending && app.Status != models.ApplicationApproved {
			continue
		}
		if start.Before(app.EndDate) && app.StartDate.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeApplicationStore) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, rejectionReason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	app.RejectionReason = rejectionReason
	return true, nil
}

func (s *fakeApplicationStore) ApproveAndCreateLogbook(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok || app.Status != models.ApplicationPending {
		return false, nil
	}
	app.Status = models.ApplicationApproved
	s.logbookWaiting[id] = true
	return true, nil
}

func (s *fakeApplicationStore) CancelApproved(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok || app.Status != models.ApplicationApproved || !s.logbookWaiting[id] {
		return false, nil
	}
	app.Status = models.ApplicationCancelled
	return true, nil
}

func (s *fakeApplicationStore) UpdateDates(ctx context.Context, id int64, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok || app.Status != models.ApplicationPending {
		return false, nil
	}
	app.StartDate = start
	app.EndDate = end
	return true, nil
}

func (s *fakeApplicationStore) Delete(ctx context.Context, id int64) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[id]; !ok {
		return nil, false, nil
	}
	paths := s.filePaths[id]
	delete(s.applications, id)
	delete(s.logbookWaiting, id)
	delete(s.filePaths, id)
	return paths, true, nil
}

type fakeCompanyStore struct {
	mu        sync.Mutex
	nextID    int64
	companies map[string]*models.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: make(map[string]*models.Company)}
}

func (s *fakeCompanyStore) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeCompanyStore) GetByTaxNo(ctx context.Context, taxNo string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[taxNo]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (s *fakeCompanyStore) GetOrCreate(ctx context.Context, company *models.Company) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.companies[company.TaxNo]; ok {
		clone := *existing
		return &clone, nil
	}
	s.nextID++
	clone := *company
	clone.ID = s.nextID
	s.companies[company.TaxNo] = &clone
	out := clone
	return &out, nil
}

type fakeEmailService struct {
	mu        sync.Mutex
	otps      []string
	decisions []bool
	sendErr   error
}

func (s *fakeEmailService) SendCompanyOTP(toEmail, companyName, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.otps = append(s.otps, code)
	return nil
}

func (s *fakeEmailService) SendApplicationDecision(toEmail, studentName, companyName string, approved bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.decisions = append(s.decisions, approved)
	return nil
}

// fakeStudentGate mirrors the role check the authorization service performs.
// Unmapped user IDs count as students.
type fakeStudentGate struct {
	mu    sync.Mutex
	roles map[int64]models.RoleType
}

func (g *fakeStudentGate) ValidateStudent(ctx context.Context, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if role, ok := g.roles[userID]; ok && role != models.RoleStudent {
		return appauth.ErrNotStudent
	}
	return nil
}

func newApplicationService(apps *fakeApplicationStore, companies *fakeCompanyStore) *ApplicationService {
	return newApplicationServiceWithDeps(apps, companies, &fakeStudentGate{}, newFakeFileStorage())
}

func newApplicationServiceWithDeps(apps *fakeApplicationStore, companies *fakeCompanyStore, gate *fakeStudentGate, storage *fakeFileStorage) *ApplicationService {
	return NewApplicationService(apps, companies, gate, storage, &fakeEmailService{}, zerolog.Nop())
}

func validCreateRequest() *dto.CreateApplicationRequest {
	return &dto.CreateApplicationRequest{
		CompanyName:  "Acme Yazılım",
		CompanyTaxNo: "1234567890",
		CompanyEmail: "ik@acme.com.tr",
		Position:     "Backend Intern",
		StartDate:    "2026-07-01",
		EndDate:      "2026-08-30",
	}
}

func TestApplicationCreate_CreatesCompanyOnFirstContact(t *testing.T) {
	apps := newFakeApplicationStore()
	companies := newFakeCompanyStore()
	service := newApplicationService(apps, companies)

	resp, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, int64(7), resp.StudentID)

	company, err := companies.GetByTaxNo(context.Background(), "1234567890")
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, company.ID, resp.CompanyID)
}

func TestApplicationCreate_ReusesCompanyByTaxNo(t *testing.T) {
	apps := newFakeApplicationStore()
	companies := newFakeCompanyStore()
	service := newApplicationService(apps, companies)

	first, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.CompanyName = "Acme Yazılım A.Ş."
	req.StartDate = "2026-09-01"
	req.EndDate = "2026-10-01"
	second, err := service.Create(context.Background(), 8, req)
	require.NoError(t, err)

	assert.Equal(t, first.CompanyID, second.CompanyID)
}

func TestApplicationCreate_RejectsBadTaxNo(t *testing.T) {
	service := newApplicationService(newFakeApplicationStore(), newFakeCompanyStore())

	req := validCreateRequest()
	req.CompanyTaxNo = "12345"
	_, err := service.Create(context.Background(), 7, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApplicationCreate_RejectsInvalidDateRange(t *testing.T) {
	service := newApplicationService(newFakeApplicationStore(), newFakeCompanyStore())

	req := validCreateRequest()
	req.StartDate = "2026-08-30"
	req.EndDate = "2026-07-01"
	_, err := service.Create(context.Background(), 7, req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateRange)
}

func TestApplicationCreate_RejectsOverlap(t *testing.T) {
	apps := newFakeApplicationStore()
	companies := newFakeCompanyStore()
	service := newApplicationService(apps, companies)

	_, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.StartDate = "2026-08-01"
	req.EndDate = "2026-09-15"
	_, err = service.Create(context.Background(), 7, req)
	assert.ErrorIs(t, err, apperrors.ErrApplicationOverlap)

	// A different student is free to pick the same weeks
	_, err = service.Create(context.Background(), 8, req)
	assert.NoError(t, err)
}

func TestApplicationCreate_StudentsOnly(t *testing.T) {
	apps := newFakeApplicationStore()
	gate := &fakeStudentGate{roles: map[int64]models.RoleType{99: models.RoleAdvisor}}
	service := newApplicationServiceWithDeps(apps, newFakeCompanyStore(), gate, newFakeFileStorage())

	_, err := service.Create(context.Background(), 99, validCreateRequest())
	require.ErrorIs(t, err, appauth.ErrNotStudent)

	apps.mu.Lock()
	assert.Empty(t, apps.applications)
	apps.mu.Unlock()

	// A student account on the same service still goes through
	_, err = service.Create(context.Background(), 7, validCreateRequest())
	assert.NoError(t, err)
}

func TestApplicationUpdateDates_OnlyWhilePending(t *testing.T) {
	apps := newFakeApplicationStore()
	companies := newFakeCompanyStore()
	service := newApplicationService(apps, companies)

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	// Shifting the same application's own window is not an overlap
	resp, err := service.UpdateDates(context.Background(), created.ID, 7, &dto.UpdateApplicationDatesRequest{
		StartDate: "2026-07-15",
		EndDate:   "2026-09-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-07-15", resp.StartDate)

	ok, err := apps.ApproveAndCreateLogbook(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = service.UpdateDates(context.Background(), created.ID, 7, &dto.UpdateApplicationDatesRequest{
		StartDate: "2026-07-01",
		EndDate:   "2026-08-01",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApplicationUpdateDates_OwnerOnly(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	_, err = service.UpdateDates(context.Background(), created.ID, 99, &dto.UpdateApplicationDatesRequest{
		StartDate: "2026-07-15",
		EndDate:   "2026-09-15",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicationCancel_Pending(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, service.Cancel(context.Background(), created.ID, 7))

	app, err := apps.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationCancelled, app.Status)
}

func TestApplicationCancel_ApprovedOnlyWhileLogbookWaiting(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	ok, err := apps.ApproveAndCreateLogbook(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, service.Cancel(context.Background(), created.ID, 7))

	// Once the logbook moved past WAITING cancellation is refused
	second, err := service.Create(context.Background(), 8, validCreateRequest())
	require.NoError(t, err)
	ok, err = apps.ApproveAndCreateLogbook(context.Background(), second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	apps.mu.Lock()
	apps.logbookWaiting[second.ID] = false
	apps.mu.Unlock()

	err = service.Cancel(context.Background(), second.ID, 8)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApplicationCancel_RejectedIsFinal(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	reason := "no capacity"
	ok, err := apps.UpdateStatus(context.Background(), created.ID, models.ApplicationPending, models.ApplicationRejected, &reason)
	require.NoError(t, err)
	require.True(t, ok)

	err = service.Cancel(context.Background(), created.ID, 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestApplicationDecide_ApproveOpensLogbook(t *testing.T) {
	apps := newFakeApplicationStore()
	companies := newFakeCompanyStore()
	service := newApplicationService(apps, companies)

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	resp, err := service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
		BasvuruID: created.ID,
		Approve:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	apps.mu.Lock()
	defer apps.mu.Unlock()
	assert.True(t, apps.logbookWaiting[created.ID])
}

func TestApplicationDecide_RejectRequiresReason(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
		BasvuruID: created.ID,
		Approve:   false,
	})
	assert.ErrorIs(t, err, apperrors.ErrReasonRequired)

	blank := "   "
	_, err = service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
		BasvuruID: created.ID,
		Approve:   false,
		Reason:    &blank,
	})
	assert.ErrorIs(t, err, apperrors.ErrReasonRequired)

	reason := "Kontenjan dolu"
	resp, err := service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
		BasvuruID: created.ID,
		Approve:   false,
		Reason:    &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, reason, *resp.RejectionReason)
}

func TestApplicationDecide_WrongCompanyDenied(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Decide(context.Background(), created.CompanyID+1, &dto.ApplicationDecisionRequest{
		BasvuruID: created.ID,
		Approve:   true,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplicationDecide_SingleWinner(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	reason := "too late"
	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
			BasvuruID: created.ID,
			Approve:   true,
		})
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := service.Decide(context.Background(), created.CompanyID, &dto.ApplicationDecisionRequest{
			BasvuruID: created.ID,
			Approve:   false,
			Reason:    &reason,
		})
		results <- err
	}()
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

func TestApplicationList_FiltersByStatus(t *testing.T) {
	apps := newFakeApplicationStore()
	service := newApplicationService(apps, newFakeCompanyStore())

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)
	req := validCreateRequest()
	req.StartDate = "2026-10-01"
	req.EndDate = "2026-11-01"
	_, err = service.Create(context.Background(), 7, req)
	require.NoError(t, err)

	ok, err := apps.ApproveAndCreateLogbook(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	resp, err := service.List(context.Background(), dto.ApplicationFilter{StudentID: 7, Status: "APPROVED", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, created.ID, resp.Applications[0].ID)

	_, err = service.List(context.Background(), dto.ApplicationFilter{Status: "BOGUS"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestApplicationDelete_UnlinksStoredFiles(t *testing.T) {
	apps := newFakeApplicationStore()
	storage := newFakeFileStorage()
	service := newApplicationServiceWithDeps(apps, newFakeCompanyStore(), &fakeStudentGate{}, storage)

	created, err := service.Create(context.Background(), 7, validCreateRequest())
	require.NoError(t, err)

	paths := []string{"transcript/1/1.pdf", "logbook_pdf/1/2.pdf"}
	apps.mu.Lock()
	apps.filePaths[created.ID] = paths
	apps.mu.Unlock()
	storage.mu.Lock()
	for _, p := range paths {
		storage.present[p] = true
	}
	storage.mu.Unlock()

	require.NoError(t, service.Delete(context.Background(), created.ID))

	_, err = service.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	for _, p := range paths {
		assert.False(t, storage.has(p))
	}
}

func TestApplicationDelete_UnknownID(t *testing.T) {
	service := newApplicationService(newFakeApplicationStore(), newFakeCompanyStore())

	err := service.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
