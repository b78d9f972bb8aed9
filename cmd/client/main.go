// Консольный клиент импорта: загружает файл экспорта на сервер, следит за
// прогрессом задачи и печатает итоговый отчет.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"discord-quote-importer/internal/adapters/exporter"
	"discord-quote-importer/internal/client"
	"discord-quote-importer/internal/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("import client failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		serverURL    = flag.String("server", "http://localhost:8080", "адрес сервера импорта")
		xlsxPath     = flag.String("o", "", "путь для сохранения отчета в xlsx (по умолчанию отчет печатается в консоль)")
		pollInterval = flag.Duration("poll", 2*time.Second, "интервал опроса статуса задачи")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: %s [flags] <export.json>", filepath.Base(os.Args[0]))
	}
	exportPath := flag.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := os.Open(exportPath)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	api := client.NewServerClient(*serverURL)

	started, err := api.StartImport(ctx, filepath.Base(exportPath), f)
	if err != nil {
		return fmt.Errorf("failed to start import: %w", err)
	}
	fmt.Printf("Task %s started\n", started.TaskID)

	status, err := waitForTask(ctx, api, started.TaskID, *pollInterval)
	if err != nil {
		return err
	}
	if status.Status == "failed" && status.ErrorMessage != "" {
		fmt.Printf("Import failed: %s\n", status.ErrorMessage)
	}

	summary, diags, err := api.CollectReport(ctx, started.TaskID)
	if err != nil {
		return err
	}
	if summary == nil {
		summary = &domain.ImportSummary{}
	}

	var exp interface {
		Export(domain.ImportSummary, []domain.Diagnostic) error
	}
	if *xlsxPath != "" {
		exp = exporter.NewXlsxExporter(*xlsxPath, slog.Default())
	} else {
		exp = exporter.NewConsoleExporter(os.Stdout)
	}
	if err := exp.Export(*summary, diags); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	if *xlsxPath != "" {
		fmt.Printf("Report saved to %s\n", *xlsxPath)
	}
	return nil
}

// waitForTask опрашивает статус задачи, печатая изменения прогресса, пока
// задача не завершится или контекст не будет отменен.
func waitForTask(ctx context.Context, api *client.ServerClient, taskID string, interval time.Duration) (*client.TaskStatusResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastProgress := ""
	for {
		status, err := api.GetTaskStatus(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to get task status: %w", err)
		}

		if status.Progress != "" && status.Progress != lastProgress {
			fmt.Println(status.Progress)
			lastProgress = status.Progress
		}

		switch status.Status {
		case "completed", "failed":
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
