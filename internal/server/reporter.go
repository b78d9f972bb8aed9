package server

import (
	"discord-quote-importer/internal/domain"
)

// TaskReporter реализует ports.Reporter поверх TaskStore: прогресс
// перезаписывает строку состояния задачи, диагностика накапливается в ее
// отчете. Ошибки хранилища здесь игнорируются: потеря строк отчета не должна
// влиять на сам импорт.
type TaskReporter struct {
	store  *TaskStore
	taskID string
}

// NewTaskReporter создает репортер, привязанный к задаче.
func NewTaskReporter(store *TaskStore, taskID string) *TaskReporter {
	return &TaskReporter{store: store, taskID: taskID}
}

// Progress перезаписывает строку состояния задачи.
func (r *TaskReporter) Progress(text string) {
	_ = r.store.UpdateTaskProgress(r.taskID, text)
}

// Info добавляет информационную строку к отчету задачи.
func (r *TaskReporter) Info(text string) {
	_ = r.store.AppendDiagnostic(r.taskID, domain.Diagnostic{Level: domain.DiagnosticInfo, Text: text})
}

// Warn добавляет предупреждение к отчету задачи.
func (r *TaskReporter) Warn(text string) {
	_ = r.store.AppendDiagnostic(r.taskID, domain.Diagnostic{Level: domain.DiagnosticWarning, Text: text})
}
