package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/jobs"
	"github.com/noah-isme/escola-api/pkg/storage"
)

type memExports struct {
	jobs map[string]*models.LedgerExport
	seq  int
}

func newMemExports() *memExports {
	return &memExports{jobs: map[string]*models.LedgerExport{}}
}

func (m *memExports) Create(ctx context.Context, job *models.LedgerExport) error {
	m.seq++
	job.ID = fmt.Sprintf("export-%d", m.seq)
	job.CreatedAt = time.Date(2024, time.February, 9, 12, 0, 0, 0, time.UTC)
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *memExports) FindByID(ctx context.Context, id string) (*models.LedgerExport, error) {
	if job, ok := m.jobs[id]; ok {
		c := *job
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memExports) MarkProcessing(ctx context.Context, id string) error {
	m.jobs[id].Status = models.ExportStatusProcessing
	return nil
}

func (m *memExports) MarkFinished(ctx context.Context, id, storageKey, resultURL string) error {
	now := time.Now().UTC()
	job := m.jobs[id]
	job.Status = models.ExportStatusFinished
	job.StorageKey = &storageKey
	job.ResultURL = &resultURL
	job.FinishedAt = &now
	return nil
}

func (m *memExports) MarkFailed(ctx context.Context, id, message string) error {
	job := m.jobs[id]
	job.Status = models.ExportStatusFailed
	job.ErrorMessage = &message
	return nil
}

func (m *memExports) ListQueued(ctx context.Context, limit int) ([]models.LedgerExport, error) {
	var out []models.LedgerExport
	for _, job := range m.jobs {
		if job.Status == models.ExportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memExports) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.LedgerExport, error) {
	var out []models.LedgerExport
	for _, job := range m.jobs {
		if job.Status == models.ExportStatusFinished && job.StorageKey != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memExports) ClearResult(ctx context.Context, id string) error {
	m.jobs[id].StorageKey = nil
	m.jobs[id].ResultURL = nil
	return nil
}

type stubLedger struct {
	rows       []models.InstallmentDetail
	lastFilter models.InstallmentFilter
	err        error
}

func (s *stubLedger) ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error) {
	s.lastFilter = filter
	return s.rows, s.err
}

type recordingQueue struct {
	enqueued []jobs.Job[string]
	err      error
}

func (q *recordingQueue) Enqueue(job jobs.Job[string]) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func newTestLedgerExportService(t *testing.T) (*LedgerExportService, *memExports, *stubLedger, *recordingQueue) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	paid := models.DateOf(2024, time.February, 5)
	ledger := &stubLedger{rows: []models.InstallmentDetail{
		{
			Installment:   models.Installment{ID: "inst-1", DueDate: models.DateOf(2024, time.February, 10), Amount: decimal.RequireFromString("150"), Status: models.InstallmentPaid, PaymentDate: &paid},
			StudentName:   "Ana Souza",
			ClassName:     "Piano",
			Periodicity:   models.PeriodicityMonthly,
			DisplayStatus: models.InstallmentPaid,
		},
		{
			Installment:   models.Installment{ID: "inst-2", DueDate: models.DateOf(2024, time.March, 10), Amount: decimal.RequireFromString("175.5"), Status: models.InstallmentPending},
			StudentName:   "Ana Souza",
			ClassName:     "Piano",
			Periodicity:   models.PeriodicityMonthly,
			DisplayStatus: models.InstallmentOverdue,
		},
	}}
	repo := newMemExports()
	queue := &recordingQueue{}
	svc := NewLedgerExportService(repo, ledger, store, storage.NewURLSigner("secret", time.Hour), nil, nil, zap.NewNop(), LedgerExportConfig{DownloadPath: "/api/v1/exports/download/"})
	svc.SetQueue(queue)
	return svc, repo, ledger, queue
}

func TestLedgerExportRequestQueuesJob(t *testing.T) {
	svc, repo, _, queue := newTestLedgerExportService(t)

	job, err := svc.RequestExport(context.Background(), &models.JWTClaims{UserID: "admin-1"}, models.LedgerExportRequest{Format: "CSV", StudentID: "student-1", Search: " piano "})
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Equal(t, "csv", job.Format)
	assert.Equal(t, "admin-1", job.CreatedBy)
	assert.Equal(t, "piano", repo.jobs[job.ID].Filters.Search)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].Payload)

	_, err = svc.RequestExport(context.Background(), nil, models.LedgerExportRequest{Format: "docx"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestLedgerExportEnqueueFailureMarksFailed(t *testing.T) {
	svc, repo, _, queue := newTestLedgerExportService(t)
	queue.err = errors.New("queue stopped")

	_, err := svc.RequestExport(context.Background(), nil, models.LedgerExportRequest{Format: "pdf"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, models.ExportStatusFailed, job.Status)
	}
}

func TestLedgerExportProcessAndDownload(t *testing.T) {
	svc, _, ledger, queue := newTestLedgerExportService(t)
	ctx := context.Background()

	job, err := svc.RequestExport(ctx, nil, models.LedgerExportRequest{Format: "csv", StudentID: "student-1"})
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, queue.enqueued[0]))
	assert.Equal(t, "student-1", ledger.lastFilter.StudentID)

	status, err := svc.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.ResultURL)
	require.True(t, strings.HasPrefix(*status.ResultURL, "/api/v1/exports/download/"))

	token := strings.TrimPrefix(*status.ResultURL, "/api/v1/exports/download/")
	download, err := svc.Download(ctx, token)
	require.NoError(t, err)
	defer download.Body.Close()
	body, err := io.ReadAll(download.Body)
	require.NoError(t, err)

	content := string(body)
	assert.Contains(t, content, "Aluno,Turma,Periodicidade,Vencimento,Valor,Status,Pagamento")
	assert.Contains(t, content, "Ana Souza,Piano,Mensal,2024-02-10,150.00,Pago,2024-02-05")
	assert.Contains(t, content, "Ana Souza,Piano,Mensal,2024-03-10,175.50,Atrasado,")
	assert.Equal(t, "text/csv; charset=utf-8", download.ContentType)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))

	_, err = svc.Download(ctx, token+"x")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestLedgerExportProcessFailurePropagates(t *testing.T) {
	svc, repo, ledger, queue := newTestLedgerExportService(t)
	ctx := context.Background()
	ledger.err = errors.New("db down")

	job, err := svc.RequestExport(ctx, nil, models.LedgerExportRequest{Format: "xlsx"})
	require.NoError(t, err)
	cause := svc.Process(ctx, queue.enqueued[0])
	require.Error(t, cause)

	svc.HandleFailure(ctx, queue.enqueued[0], cause)
	assert.Equal(t, models.ExportStatusFailed, repo.jobs[job.ID].Status)
	assert.Equal(t, "db down", *repo.jobs[job.ID].ErrorMessage)
}

func TestLedgerExportCleanupExpired(t *testing.T) {
	svc, repo, _, queue := newTestLedgerExportService(t)
	ctx := context.Background()

	job, err := svc.RequestExport(ctx, nil, models.LedgerExportRequest{Format: "pdf"})
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, queue.enqueued[0]))
	token := strings.TrimPrefix(*repo.jobs[job.ID].ResultURL, "/api/v1/exports/download/")

	assert.Equal(t, 0, svc.CleanupExpired(ctx))

	svc.now = func() time.Time { return time.Now().Add(100 * time.Hour) }
	assert.Equal(t, 1, svc.CleanupExpired(ctx))
	assert.Nil(t, repo.jobs[job.ID].StorageKey)

	_, err = svc.Download(ctx, token)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLedgerExportResumeQueued(t *testing.T) {
	svc, repo, _, queue := newTestLedgerExportService(t)
	require.NoError(t, repo.Create(context.Background(), &models.LedgerExport{Format: "csv", Status: models.ExportStatusQueued}))

	svc.ResumeQueued(context.Background())
	assert.Len(t, queue.enqueued, 1)
}
