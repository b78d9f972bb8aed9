// Package exporter содержит адаптеры вывода итогового отчета импорта.
package exporter

import (
	"fmt"
	"io"

	"discord-quote-importer/internal/domain"
)

// ConsoleExporter печатает отчет импорта в текстовый поток.
type ConsoleExporter struct {
	out io.Writer
}

// NewConsoleExporter создает экспортер, пишущий в out.
func NewConsoleExporter(out io.Writer) *ConsoleExporter {
	return &ConsoleExporter{out: out}
}

// Export выводит сводку и все диагностики по порядку их появления.
func (e *ConsoleExporter) Export(summary domain.ImportSummary, diags []domain.Diagnostic) error {
	if _, err := fmt.Fprintf(e.out, "Imported %d of %d quotes from %s.\n", summary.Imported, summary.Total, summary.Source); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	for _, d := range diags {
		if _, err := fmt.Fprintln(e.out, d.Text); err != nil {
			return fmt.Errorf("failed to write diagnostic: %w", err)
		}
	}
	return nil
}
