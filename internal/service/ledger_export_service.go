package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
	"github.com/noah-isme/escola-api/pkg/export"
	"github.com/noah-isme/escola-api/pkg/jobs"
	"github.com/noah-isme/escola-api/pkg/storage"
)

type ledgerExportStore interface {
	Create(ctx context.Context, job *models.LedgerExport) error
	FindByID(ctx context.Context, id string) (*models.LedgerExport, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, storageKey, resultURL string) error
	MarkFailed(ctx context.Context, id, message string) error
	ListQueued(ctx context.Context, limit int) ([]models.LedgerExport, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.LedgerExport, error)
	ClearResult(ctx context.Context, id string) error
}

type ledgerSource interface {
	ListInstallments(ctx context.Context, filter models.InstallmentFilter) ([]models.InstallmentDetail, error)
}

// agedObjectSweeper is implemented by stores that can purge files by age.
type agedObjectSweeper interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportDispatcher interface {
	Enqueue(job jobs.Job[string]) error
}

// LedgerExportConfig tunes download links and retention.
type LedgerExportConfig struct {
	DownloadPath    string
	Retention       time.Duration
	CleanupInterval time.Duration
}

// LedgerDownload is an opened export ready to stream.
type LedgerDownload struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

var ledgerHeaders = []string{"Aluno", "Turma", "Periodicidade", "Vencimento", "Valor", "Status", "Pagamento"}

// LedgerExportService renders the installment ledger to files in the background.
type LedgerExportService struct {
	repo      ledgerExportStore
	ledger    ledgerSource
	queue     exportDispatcher
	store     storage.ObjectStore
	signer    *storage.URLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LedgerExportConfig
	now       Clock
}

// NewLedgerExportService wires the export pipeline. The queue may be attached later with SetQueue.
func NewLedgerExportService(repo ledgerExportStore, ledger ledgerSource, store storage.ObjectStore, signer *storage.URLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg LedgerExportConfig) *LedgerExportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 72 * time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/exports/download/"
	}
	return &LedgerExportService{
		repo:      repo,
		ledger:    ledger,
		store:     store,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetQueue attaches the dispatcher used by RequestExport.
func (s *LedgerExportService) SetQueue(queue exportDispatcher) {
	s.queue = queue
}

// RequestExport persists a queued export and hands it to the worker pool.
func (s *LedgerExportService) RequestExport(ctx context.Context, actor *models.JWTClaims, req models.LedgerExportRequest) (*models.LedgerExport, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	job := &models.LedgerExport{
		Format:  req.Format,
		Filters: models.ExportFilters{StudentID: req.StudentID, Search: strings.TrimSpace(req.Search)},
		Status:  models.ExportStatusQueued,
	}
	if actor != nil {
		job.CreatedBy = actor.UserID
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, storeFailure(s.logger, err, "failed to create ledger export")
	}
	if s.queue == nil {
		return nil, s.abandon(ctx, job, errors.New("export queue not configured"))
	}
	if err := s.queue.Enqueue(jobs.Job[string]{ID: job.ID, Payload: job.ID}); err != nil {
		return nil, s.abandon(ctx, job, err)
	}
	s.logger.Info("ledger export queued", zap.String("export_id", job.ID), zap.String("format", job.Format))
	return job, nil
}

// Status returns an export job.
func (s *LedgerExportService) Status(ctx context.Context, id string) (*models.LedgerExport, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ledger export not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load ledger export", zap.String("export_id", id))
	}
	return job, nil
}

// Process is the queue handler: it renders, stores and signs one export.
func (s *LedgerExportService) Process(ctx context.Context, item jobs.Job[string]) error {
	job, err := s.repo.FindByID(ctx, item.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("ledger export vanished", zap.String("export_id", item.Payload))
			return nil
		}
		return err
	}
	if job.Status == models.ExportStatusFinished || job.Status == models.ExportStatusFailed {
		return nil
	}
	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	start := s.now()
	err = s.render(ctx, job)
	s.metrics.ObserveExport(job.Format, err == nil, s.now().Sub(start))
	return err
}

// HandleFailure marks an export failed once the queue gives up on it.
func (s *LedgerExportService) HandleFailure(ctx context.Context, item jobs.Job[string], cause error) {
	if err := s.repo.MarkFailed(ctx, item.Payload, cause.Error()); err != nil {
		s.logger.Error("failed to mark ledger export failed", zap.String("export_id", item.Payload), zap.Error(err))
	}
}

// Download resolves a signed token to the stored export.
func (s *LedgerExportService) Download(ctx context.Context, token string) (*LedgerDownload, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.Status(ctx, grant.ExportID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ExportStatusFinished || job.StorageKey == nil || *job.StorageKey != grant.Key {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	body, err := s.store.Open(ctx, grant.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	format := export.Format(job.Format)
	return &LedgerDownload{
		Body:        body,
		Filename:    fmt.Sprintf("mensalidades-%s.%s", job.CreatedAt.UTC().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
	}, nil
}

// ResumeQueued re-enqueues exports left queued by a previous process.
func (s *LedgerExportService) ResumeQueued(ctx context.Context) {
	if s.queue == nil {
		return
	}
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to list queued ledger exports", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job[string]{ID: job.ID, Payload: job.ID}); err != nil {
			s.logger.Warn("failed to requeue ledger export", zap.String("export_id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup purges expired export files every CleanupInterval until ctx ends.
func (s *LedgerExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired deletes stored files older than the retention window and returns
// how many exports were cleared.
func (s *LedgerExportService) CleanupExpired(ctx context.Context) int {
	removed := s.clearExpiredResults(ctx)
	if sweeper, ok := s.store.(agedObjectSweeper); ok {
		orphans, err := sweeper.CleanupOlderThan(s.cfg.Retention)
		if err != nil {
			s.logger.Warn("failed to sweep export directory", zap.Error(err))
		} else if len(orphans) > 0 {
			s.logger.Info("swept aged export files", zap.Int("files", len(orphans)))
		}
	}
	return removed
}

func (s *LedgerExportService) clearExpiredResults(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.Retention)
	removed := 0
	for {
		expired, err := s.repo.ListExpired(ctx, cutoff, 100)
		if err != nil {
			s.logger.Warn("failed to list expired ledger exports", zap.Error(err))
			return removed
		}
		if len(expired) == 0 {
			return removed
		}
		for _, job := range expired {
			if job.StorageKey != nil {
				if err := s.store.Delete(ctx, *job.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
					s.logger.Warn("failed to delete export file", zap.String("export_id", job.ID), zap.Error(err))
					return removed
				}
			}
			if err := s.repo.ClearResult(ctx, job.ID); err != nil {
				s.logger.Warn("failed to clear export result", zap.String("export_id", job.ID), zap.Error(err))
				return removed
			}
			removed++
		}
	}
}

func (s *LedgerExportService) render(ctx context.Context, job *models.LedgerExport) error {
	format := export.Format(job.Format)
	renderer, err := export.RendererFor(format)
	if err != nil {
		return err
	}
	rows, err := s.ledger.ListInstallments(ctx, models.InstallmentFilter{StudentID: job.Filters.StudentID, Search: job.Filters.Search})
	if err != nil {
		return err
	}
	payload, err := renderer.Render(LedgerDataset(rows))
	if err != nil {
		return fmt.Errorf("render ledger %s: %w", format, err)
	}

	key := fmt.Sprintf("ledger/%s.%s", job.ID, format)
	if err := s.store.Put(ctx, key, payload, format.ContentType()); err != nil {
		return fmt.Errorf("store ledger export: %w", err)
	}
	token, _, err := s.signer.Sign(job.ID, key)
	if err != nil {
		return fmt.Errorf("sign ledger export: %w", err)
	}
	if err := s.repo.MarkFinished(ctx, job.ID, key, s.cfg.DownloadPath+token); err != nil {
		return err
	}
	s.logger.Info("ledger export finished", zap.String("export_id", job.ID), zap.Int("rows", len(rows)), zap.Int("bytes", len(payload)))
	return nil
}

func (s *LedgerExportService) abandon(ctx context.Context, job *models.LedgerExport, cause error) error {
	if err := s.repo.MarkFailed(ctx, job.ID, "failed to enqueue export"); err != nil {
		s.logger.Warn("failed to mark ledger export failed", zap.String("export_id", job.ID), zap.Error(err))
	}
	return appErrors.Wrap(cause, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue ledger export")
}

// LedgerDataset lays decorated ledger rows out as an export table.
func LedgerDataset(rows []models.InstallmentDetail) export.Dataset {
	data := export.Dataset{
		Title:   "Mensalidades",
		Headers: ledgerHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		status := row.DisplayStatus
		if status == "" {
			status = row.Status
		}
		paid := ""
		if row.PaymentDate != nil {
			paid = row.PaymentDate.String()
		}
		data.Rows = append(data.Rows, map[string]string{
			"Aluno":         row.StudentName,
			"Turma":         row.ClassName,
			"Periodicidade": row.Periodicity.Label(),
			"Vencimento":    row.DueDate.String(),
			"Valor":         row.Amount.StringFixed(2),
			"Status":        status.Label(),
			"Pagamento":     paid,
		})
	}
	return data
}
