package exporter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"discord-quote-importer/internal/domain"
)

// XlsxExporter сохраняет отчет импорта в файл Excel.
type XlsxExporter struct {
	path   string
	logger *slog.Logger
}

// NewXlsxExporter создает экспортер, сохраняющий отчет по пути path.
func NewXlsxExporter(path string, logger *slog.Logger) *XlsxExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XlsxExporter{path: path, logger: logger}
}

// Export записывает сводку и диагностики на лист "Отчет импорта".
func (e *XlsxExporter) Export(summary domain.ImportSummary, diags []domain.Diagnostic) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	sheetName := "Отчет импорта"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Заголовки
	headers := []string{"Дата отчета", "Источник", "Импортировано", "Всего записей"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	f.SetCellValue(sheetName, "A2", time.Now().Format(time.RFC3339))
	f.SetCellValue(sheetName, "B2", summary.Source)
	f.SetCellValue(sheetName, "C2", summary.Imported)
	f.SetCellValue(sheetName, "D2", summary.Total)

	// Диагностики начинаются через строку после сводки
	f.SetCellValue(sheetName, "A4", "Уровень")
	f.SetCellValue(sheetName, "B4", "Сообщение")
	for i, d := range diags {
		row := i + 5
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(d.Level))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), d.Text)
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("failed to save excel report: %w", err)
	}
	return nil
}
