package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// DepartmentRepository implements port.DepartmentRepository
type DepartmentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *sqlite.DB, logger *zap.Logger) port.DepartmentRepository {
	return &DepartmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *entity.Department) error {
	query := `
		INSERT INTO departments (code, name, local_name, hod_email)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		dept.Code,
		dept.Name,
		dept.LocalName,
		dept.HODEmail,
	)
	if err != nil {
		r.logger.Error("Failed to create department", zap.String("code", dept.Code), zap.Error(err))
		return fmt.Errorf("failed to create department: %w", err)
	}

	return nil
}

// GetByCode retrieves a department by code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*entity.Department, error) {
	query := `
		SELECT code, name, local_name, hod_email
		FROM departments
		WHERE code = ?
	`

	var dept entity.Department
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, code).Scan(
		&dept.Code,
		&dept.Name,
		&dept.LocalName,
		&dept.HODEmail,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	return &dept, nil
}

// List retrieves all departments ordered by code
func (r *DepartmentRepository) List(ctx context.Context) ([]*entity.Department, error) {
	query := `
		SELECT code, name, local_name, hod_email
		FROM departments
		ORDER BY code ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list departments", zap.Error(err))
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*entity.Department
	for rows.Next() {
		var dept entity.Department
		if err := rows.Scan(
			&dept.Code,
			&dept.Name,
			&dept.LocalName,
			&dept.HODEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, &dept)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}

	return departments, nil
}

// Count returns the number of departments
func (r *DepartmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count); err != nil {
		r.logger.Error("Failed to count departments", zap.Error(err))
		return 0, fmt.Errorf("failed to count departments: %w", err)
	}

	return count, nil
}

// Verify interface compliance
var _ port.DepartmentRepository = (*DepartmentRepository)(nil)
