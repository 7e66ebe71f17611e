package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/escola-api/internal/models"
	"github.com/noah-isme/escola-api/internal/repository"
	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByCPF(ctx context.Context, cpf, excludeID string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Update(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) (*string, error)
	FindGuardian(ctx context.Context, id string) (*models.Guardian, error)
	SaveGuardian(ctx context.Context, exec sqlx.ExtContext, guardian *models.Guardian) error
	DeleteOrphanGuardian(ctx context.Context, exec sqlx.ExtContext, guardianID string) error
}

// StudentService handles the student registry and guardians of minors.
type StudentService struct {
	tx        transactor
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(tx transactor, repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{tx: tx, repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(s.logger, err, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	page, size := models.NormalizePaging(filter.Page, filter.PageSize)
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student with its guardian.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, storeFailure(s.logger, err, "failed to load student", zap.String("student_id", id))
	}
	if student.GuardianID != nil {
		guardian, err := s.repo.FindGuardian(ctx, *student.GuardianID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, storeFailure(s.logger, err, "failed to load guardian", zap.String("student_id", id))
		}
		student.Guardian = guardian
	}
	return student, nil
}

// CPFExists reports whether another student already uses the CPF.
func (s *StudentService) CPFExists(ctx context.Context, cpf, excludeID string) (bool, error) {
	exists, err := s.repo.ExistsByCPF(ctx, NormalizeCPF(cpf), excludeID)
	if err != nil {
		return false, storeFailure(s.logger, err, "failed to check cpf")
	}
	return exists, nil
}

// Create registers a student, creating the guardian of a minor in the same transaction.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validate(req, req.BirthDate); err != nil {
		return nil, err
	}
	cpf := NormalizeCPF(req.CPF)
	if err := s.ensureUniqueCPF(ctx, cpf, ""); err != nil {
		return nil, err
	}

	student := &models.Student{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		CPF:       cpf,
		RG:        req.RG,
		Address:   req.Address,
		BirthDate: req.BirthDate,
		IsMinor:   req.IsMinor,
	}
	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if req.IsMinor && req.Guardian != nil {
			guardian := applyGuardian(&models.Guardian{}, req.Guardian)
			if err := s.repo.SaveGuardian(ctx, tx, guardian); err != nil {
				return err
			}
			student.GuardianID = &guardian.ID
			student.Guardian = guardian
		}
		return s.repo.Create(ctx, tx, student)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
		}
		return nil, storeFailure(s.logger, err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.Bool("is_minor", student.IsMinor))
	return student, nil
}

// Update replaces the student fields. Guardians are created or updated for minors and
// detached, then removed when orphaned, once the student is no longer a minor.
func (s *StudentService) Update(ctx context.Context, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validate(req, req.BirthDate); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cpf := NormalizeCPF(req.CPF)
	if err := s.ensureUniqueCPF(ctx, cpf, id); err != nil {
		return nil, err
	}

	previousGuardian := current.GuardianID
	current.FullName = req.FullName
	current.Email = req.Email
	current.Phone = req.Phone
	current.CPF = cpf
	current.RG = req.RG
	current.Address = req.Address
	current.BirthDate = req.BirthDate
	current.IsMinor = req.IsMinor

	err = s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		switch {
		case req.IsMinor && req.Guardian != nil:
			guardian := current.Guardian
			if guardian == nil {
				guardian = &models.Guardian{}
			}
			applyGuardian(guardian, req.Guardian)
			if err := s.repo.SaveGuardian(ctx, tx, guardian); err != nil {
				return err
			}
			current.GuardianID = &guardian.ID
			current.Guardian = guardian
		case !req.IsMinor:
			current.GuardianID = nil
			current.Guardian = nil
		}
		if err := s.repo.Update(ctx, tx, current); err != nil {
			return err
		}
		if previousGuardian != nil && current.GuardianID == nil {
			return s.repo.DeleteOrphanGuardian(ctx, tx, *previousGuardian)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
		}
		return nil, storeFailure(s.logger, err, "failed to update student", zap.String("student_id", id))
	}
	return current, nil
}

// Delete removes a student and its guardian when no other student references it.
// Students with enrollment history cannot be deleted.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		guardianID, err := s.repo.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if guardianID != nil {
			return s.repo.DeleteOrphanGuardian(ctx, tx, *guardianID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "student has enrollment history")
		}
		return storeFailure(s.logger, err, "failed to delete student", zap.String("student_id", id))
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

func (s *StudentService) validate(req interface{}, birthDate models.Date) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if birthDate.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "birth_date is required")
	}
	return nil
}

func (s *StudentService) ensureUniqueCPF(ctx context.Context, cpf, excludeID string) error {
	exists, err := s.repo.ExistsByCPF(ctx, cpf, excludeID)
	if err != nil {
		return storeFailure(s.logger, err, "failed to check cpf")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}
	return nil
}

func applyGuardian(g *models.Guardian, in *models.GuardianInput) *models.Guardian {
	g.FullName = in.FullName
	g.Email = in.Email
	g.Phone = in.Phone
	g.CPF = NormalizeCPF(in.CPF)
	g.RG = in.RG
	g.Address = in.Address
	g.BirthDate = in.BirthDate
	return g
}
