package export

import (
	"fmt"
	"time"

	"radmon/internal/domain"
	"radmon/internal/units"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const readingsSheet = "Readings"

var readingsHeader = []string{
	"Device ID", "Measured At", "Value", "Unit", "Normalized (µSv/h)",
}

// ReadingsExporter renders a reading series as an Excel workbook for
// offline review.
type ReadingsExporter struct {
	logger *zap.Logger
}

// NewReadingsExporter creates the exporter.
func NewReadingsExporter(logger *zap.Logger) *ReadingsExporter {
	return &ReadingsExporter{logger: logger}
}

// Export builds the workbook and returns its bytes.
func (e *ReadingsExporter) Export(readings []domain.Reading) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", readingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, title := range readingsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(readingsSheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(readingsSheet, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range readings {
		row := i + 2
		values := []interface{}{
			r.DeviceID,
			r.MeasuredAt.Format(time.RFC3339),
			r.Value,
			r.Unit,
			units.Normalize(r.Value, r.Unit),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(readingsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	e.logger.Debug("readings exported", zap.Int("rows", len(readings)))
	return buf.Bytes(), nil
}
