// Package seed populates an empty database with the reference data the
// application needs on first run.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/infrastructure/identity"
)

// defaultDepartments is the government directory loaded into an empty
// database. Codes follow the ministry abbreviations in common use.
var defaultDepartments = []entity.Department{
	{Code: "MOF", Name: "Ministry of Finance", LocalName: "Matagaluega o Tupe", HODEmail: "ceo@mof.gov.ws"},
	{Code: "MFAT", Name: "Ministry of Foreign Affairs and Trade", LocalName: "Matagaluega o le Va i Fafo ma Fefa'ataua'iga", HODEmail: "ceo@mfat.gov.ws"},
	{Code: "MOH", Name: "Ministry of Health", LocalName: "Matagaluega o le Soifua Maloloina", HODEmail: "dg@health.gov.ws"},
	{Code: "MESC", Name: "Ministry of Education, Sports and Culture", LocalName: "Matagaluega o A'oga, Ta'aloga ma Aganu'u", HODEmail: "ceo@mesc.gov.ws"},
	{Code: "MNRE", Name: "Ministry of Natural Resources and Environment", LocalName: "Matagaluega o Puna'oa Fa'anatura ma le Si'osi'omaga", HODEmail: "ceo@mnre.gov.ws"},
	{Code: "MWTI", Name: "Ministry of Works, Transport and Infrastructure", LocalName: "Matagaluega o Galuega, Felauaiga ma Atina'e", HODEmail: "ceo@mwti.gov.ws"},
	{Code: "MAF", Name: "Ministry of Agriculture and Fisheries", LocalName: "Matagaluega o Fa'ato'aga ma Faigafaiva", HODEmail: "ceo@maf.gov.ws"},
	{Code: "MPMC", Name: "Ministry of the Prime Minister and Cabinet", LocalName: "Matagaluega o le Palemia ma le Kapeneta", HODEmail: "ceo@mpmc.gov.ws"},
}

// AdminOptions carries the first administrator account credentials
type AdminOptions struct {
	Username string
	Password string
	Name     string
	Email    string
}

// Seeder loads reference data into the database on startup
type Seeder struct {
	users       port.UserRepository
	departments port.DepartmentRepository
	logger      *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(users port.UserRepository, departments port.DepartmentRepository, logger *zap.Logger) *Seeder {
	return &Seeder{
		users:       users,
		departments: departments,
		logger:      logger,
	}
}

// Run seeds departments and the first administrator account. Both steps
// are no-ops when the data is already present, so Run is safe to call on
// every startup.
func (s *Seeder) Run(ctx context.Context, admin AdminOptions) error {
	if err := s.seedDepartments(ctx); err != nil {
		return err
	}
	return s.seedAdmin(ctx, admin)
}

func (s *Seeder) seedDepartments(ctx context.Context) error {
	count, err := s.departments.Count(ctx)
	if err != nil {
		return fmt.Errorf("count departments: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range defaultDepartments {
		dept := defaultDepartments[i]
		if err := s.departments.Create(ctx, &dept); err != nil {
			return fmt.Errorf("create department %s: %w", dept.Code, err)
		}
	}

	s.logger.Info("Seeded department directory", zap.Int("count", len(defaultDepartments)))
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminOptions) error {
	count, err := s.users.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if admin.Password == "" {
		s.logger.Warn("No admin password configured, skipping admin account seed")
		return nil
	}

	hash, err := identity.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     admin.Username,
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: hash,
		Roles:        []string{entity.RoleUser, entity.RoleReviewer, entity.RoleAdmin},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	s.logger.Info("Seeded first administrator account", zap.String("username", admin.Username))
	return nil
}
