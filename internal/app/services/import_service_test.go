package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/deniz/stajlink/internal/app/models"
	"github.com/deniz/stajlink/internal/pkg/apperrors"
)

type fakeImportStore struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*models.ImportJob
	rows   map[int64][]models.ImportJobRow
}

func newFakeImportStore() *fakeImportStore {
	return &fakeImportStore{
		jobs: make(map[int64]*models.ImportJob),
		rows: make(map[int64][]models.ImportJobRow),
	}
}

func (s *fakeImportStore) CreateJob(ctx context.Context, jobType models.ImportJobType, fileName string, createdBy int64) (*models.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	job := &models.ImportJob{
		ID:        s.nextID,
		JobType:   jobType,
		Status:    models.ImportProcessing,
		FileName:  fileName,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	s.jobs[job.ID] = job
	clone := *job
	return &clone, nil
}

func (s *fakeImportStore) GetJob(ctx context.Context, id int64) (*models.ImportJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	clone := *job
	return &clone, nil
}

func (s *fakeImportStore) ListJobs(ctx context.Context, offset uint64, limit int) ([]models.ImportJob, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ImportJob
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	return out, int64(len(out)), nil
}

func (s *fakeImportStore) UpdateProgress(ctx context.Context, id int64, total, succeeded, failed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.TotalRows = total
		job.SucceededRows = succeeded
		job.FailedRows = failed
	}
	return nil
}

func (s *fakeImportStore) Finish(ctx context.Context, id int64, status models.ImportJobStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != models.ImportProcessing {
		return false, nil
	}
	job.Status = status
	return true, nil
}

func (s *fakeImportStore) Cancel(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != models.ImportProcessing {
		return false, nil
	}
	job.Status = models.ImportCancelled
	return true, nil
}

func (s *fakeImportStore) IsCancelled(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return ok && job.Status == models.ImportCancelled, nil
}

func (s *fakeImportStore) AddRow(ctx context.Context, jobID int64, rowNumber int, success bool, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[jobID] = append(s.rows[jobID], models.ImportJobRow{
		JobID:     jobID,
		RowNumber: rowNumber,
		Success:   success,
		Message:   message,
	})
	return nil
}

func (s *fakeImportStore) ListRows(ctx context.Context, jobID int64) ([]models.ImportJobRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ImportJobRow(nil), s.rows[jobID]...), nil
}

// formUpload wraps raw bytes in a multipart file header
func formUpload(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

// xlsxUpload builds a one-sheet spreadsheet from string rows
func xlsxUpload(t *testing.T, name string, rows [][]interface{}) *multipart.FileHeader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return formUpload(t, name, buf.Bytes())
}

func waitForJob(t *testing.T, store *fakeImportStore, jobID int64) *models.ImportJob {
	t.Helper()
	var job *models.ImportJob
	require.Eventually(t, func() bool {
		j, err := store.GetJob(context.Background(), jobID)
		if err != nil || j == nil {
			return false
		}
		job = j
		return j.Status != models.ImportProcessing
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

var studentHeader = []interface{}{"Email", "Ad", "Soyad", "Öğrenci No"}

func TestImportStudents(t *testing.T) {
	store := newFakeImportStore()
	users := newFakeUserStore()
	service := NewImportService(store, users, zerolog.Nop())

	upload := xlsxUpload(t, "ogrenciler.xlsx", [][]interface{}{
		studentHeader,
		{"ali@school.edu.tr", "Ali", "Kaya", "20200001"},
		{"veli@school.edu.tr", "Veli", "Çelik", "20200002"},
		{"bozuk-eposta", "Can", "Öz", "20200003"},
	})

	resp, err := service.StartImport(context.Background(), models.ImportStudents, upload, 1)
	require.NoError(t, err)
	assert.Equal(t, "PROCESSING", resp.Status)
	assert.Equal(t, 3, resp.TotalRows)

	job := waitForJob(t, store, resp.ID)
	assert.Equal(t, models.ImportCompleted, job.Status)
	assert.Equal(t, 2, job.SucceededRows)
	assert.Equal(t, 1, job.FailedRows)

	user, err := users.GetByEmail(context.Background(), "ali@school.edu.tr")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleStudent, user.RoleType)
	require.NotNil(t, user.StudentNo)
	assert.Equal(t, "20200001", *user.StudentNo)

	detail, err := service.GetJobDetail(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Rows, 3)
	var failedRows int
	for _, row := range detail.Rows {
		if !row.Success {
			failedRows++
			assert.NotEmpty(t, row.Message)
			assert.Equal(t, 4, row.RowNumber) // 1-based, after the header
		}
	}
	assert.Equal(t, 1, failedRows)
}

func TestImportAdvisors(t *testing.T) {
	store := newFakeImportStore()
	users := newFakeUserStore()
	service := NewImportService(store, users, zerolog.Nop())

	upload := xlsxUpload(t, "danismanlar.xlsx", [][]interface{}{
		{"Email", "Ad", "Soyad"},
		{"hoca@school.edu.tr", "Mehmet", "Demir"},
	})

	resp, err := service.StartImport(context.Background(), models.ImportAdvisors, upload, 1)
	require.NoError(t, err)

	job := waitForJob(t, store, resp.ID)
	assert.Equal(t, models.ImportCompleted, job.Status)

	user, err := users.GetByEmail(context.Background(), "hoca@school.edu.tr")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.RoleAdvisor, user.RoleType)
	assert.Nil(t, user.StudentNo)
}

func TestImport_AllRowsFailingMarksJobFailed(t *testing.T) {
	store := newFakeImportStore()
	service := NewImportService(store, newFakeUserStore(), zerolog.Nop())

	upload := xlsxUpload(t, "ogrenciler.xlsx", [][]interface{}{
		studentHeader,
		{"bozuk", "Ali", "Kaya", "20200001"},
		{"ali@school.edu.tr", "", "Kaya", "20200002"},
	})

	resp, err := service.StartImport(context.Background(), models.ImportStudents, upload, 1)
	require.NoError(t, err)

	job := waitForJob(t, store, resp.ID)
	assert.Equal(t, models.ImportFailed, job.Status)
	assert.Equal(t, 0, job.SucceededRows)
	assert.Equal(t, 2, job.FailedRows)
}

func TestImport_InputRefusals(t *testing.T) {
	service := NewImportService(newFakeImportStore(), newFakeUserStore(), zerolog.Nop())

	upload := xlsxUpload(t, "x.xlsx", [][]interface{}{studentHeader, {"a@school.edu.tr", "Ad", "Soyad", "20200001"}})
	_, err := service.StartImport(context.Background(), models.ImportJobType("TEACHERS"), upload, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = service.StartImport(context.Background(), models.ImportStudents, nil, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = service.StartImport(context.Background(), models.ImportStudents, formUpload(t, "notes.txt", []byte("not a spreadsheet")), 1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	headerOnly := xlsxUpload(t, "bos.xlsx", [][]interface{}{studentHeader})
	_, err = service.StartImport(context.Background(), models.ImportStudents, headerOnly, 1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestImportCancelJob(t *testing.T) {
	store := newFakeImportStore()
	service := NewImportService(store, newFakeUserStore(), zerolog.Nop())

	err := service.CancelJob(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrImportJobNotFound)

	job, err := store.CreateJob(context.Background(), models.ImportStudents, "ogrenciler.xlsx", 1)
	require.NoError(t, err)
	require.NoError(t, service.CancelJob(context.Background(), job.ID))

	got, err := store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportCancelled, got.Status)

	// Only a processing job can be cancelled
	err = service.CancelJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestImportListJobs(t *testing.T) {
	store := newFakeImportStore()
	service := NewImportService(store, newFakeUserStore(), zerolog.Nop())

	_, err := store.CreateJob(context.Background(), models.ImportStudents, "a.xlsx", 1)
	require.NoError(t, err)
	_, err = store.CreateJob(context.Background(), models.ImportAdvisors, "b.xlsx", 1)
	require.NoError(t, err)

	jobs, pagination, err := service.ListJobs(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, int64(2), pagination.TotalItems)
}
