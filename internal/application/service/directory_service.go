package service

import (
	"context"
	"fmt"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// DirectoryService serves organisational reference data backing the
// application forms.
type DirectoryService interface {
	// ListDepartments returns all departments
	ListDepartments(ctx context.Context) ([]*entity.Department, error)

	// GetDepartment returns the department with the given code, nil when
	// unknown
	GetDepartment(ctx context.Context, code string) (*entity.Department, error)
}

type directoryServiceImpl struct {
	departmentRepo port.DepartmentRepository
	logger         Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(departmentRepo port.DepartmentRepository, logger Logger) DirectoryService {
	return &directoryServiceImpl{
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

func (s *directoryServiceImpl) ListDepartments(ctx context.Context) ([]*entity.Department, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list departments", "error", err)
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

func (s *directoryServiceImpl) GetDepartment(ctx context.Context, code string) (*entity.Department, error) {
	if code == "" {
		return nil, nil
	}
	dept, err := s.departmentRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to get department", "error", err, "code", code)
		return nil, fmt.Errorf("get department: %w", err)
	}
	return dept, nil
}
