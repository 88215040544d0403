package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// RegisterBuilder renders the travel register export, one row per decided
// application.
type RegisterBuilder struct {
	logger *zap.Logger
}

const (
	registerSheet = "Register"

	// Data rows start below the header
	headerRow    = 1
	dataRowStart = 2

	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04"
)

// registerColumns are the export columns in order, A onwards
var registerColumns = []string{
	"Application ID",
	"Event",
	"Department",
	"Start Date",
	"End Date",
	"Travellers",
	"Government Cost",
	"Status",
	"Decided At",
}

// NewRegisterBuilder creates a new RegisterBuilder
func NewRegisterBuilder(logger *zap.Logger) *RegisterBuilder {
	return &RegisterBuilder{logger: logger}
}

// Build renders the register for the given applications and returns the
// workbook bytes
func (b *RegisterBuilder) Build(apps []*entity.Application) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", registerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := b.writeHeader(file); err != nil {
		return nil, err
	}

	for i, app := range apps {
		if err := b.writeRow(file, dataRowStart+i, app); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	b.logger.Debug("Register built",
		zap.Int("application_count", len(apps)),
		zap.Int("size_bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (b *RegisterBuilder) writeHeader(file *excelize.File) error {
	for i, title := range registerColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := file.SetCellValue(registerSheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header %q: %w", title, err)
		}
	}
	return nil
}

func (b *RegisterBuilder) writeRow(file *excelize.File, row int, app *entity.Application) error {
	values := []interface{}{
		app.ID,
		app.EventTitle,
		app.DepartmentCode,
		formatDate(app.StartDate),
		formatDate(app.EndDate),
		app.TravellerCount,
		app.TotalCost,
		app.Status,
		formatTimePtr(app.DecidedAt),
	}

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell at row %d: %w", row, err)
		}
		if err := file.SetCellValue(registerSheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell at row %d: %w", row, err)
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateTimeFormat)
}
